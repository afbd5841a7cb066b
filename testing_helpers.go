// go-m24sr
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-m24sr.
//
// go-m24sr is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-m24sr is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-m24sr; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package m24sr

import (
	"sync"
	"time"
)

// MockPhase selects which transport step a MockTransport error applies to
type MockPhase int

const (
	MockSend MockPhase = iota
	MockPoll
	MockReceive
)

// MockTransport records every frame sent and answers reads from a reply
// queue. A responder, typically a virtual controller, can fill the queue
// from the frames it sees.
type MockTransport struct {
	errs      map[MockPhase]error
	calls     map[MockPhase]int
	responder func(frm []byte) []byte
	replies   [][]byte
	sent      [][]byte
	timeout   time.Duration
	mu        sync.Mutex
	closed    bool
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		errs:    make(map[MockPhase]error),
		calls:   make(map[MockPhase]int),
		timeout: time.Second,
	}
}

// SetResponder installs fn to produce the reply for each sent frame. A nil
// reply queues nothing.
func (m *MockTransport) SetResponder(fn func(frm []byte) []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = fn
}

// QueueReply appends replies returned by subsequent Receive calls
func (m *MockTransport) QueueReply(replies ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range replies {
		m.replies = append(m.replies, append([]byte(nil), r...))
	}
}

// SetError makes every call of the given phase fail with err, nil clears it
func (m *MockTransport) SetError(phase MockPhase, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, phase)
		return
	}
	m.errs[phase] = err
}

// GetCallCount returns how many times the given phase was invoked
func (m *MockTransport) GetCallCount(phase MockPhase) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[phase]
}

// SentFrames returns a copy of every frame sent so far
func (m *MockTransport) SentFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastFrame returns the most recent frame sent, nil if none
func (m *MockTransport) LastFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return m.sent[len(m.sent)-1]
}

// PendingReplies returns the number of queued replies not yet read
func (m *MockTransport) PendingReplies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replies)
}

// Reset clears recorded frames, queued replies, errors and counters
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = make(map[MockPhase]error)
	m.calls = make(map[MockPhase]int)
	m.replies = nil
	m.sent = nil
}

// Send records frm and runs the responder
func (m *MockTransport) Send(frm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[MockSend]++
	if m.closed {
		return ErrTransportClosed
	}
	if err := m.errs[MockSend]; err != nil {
		return err
	}

	cp := append([]byte(nil), frm...)
	m.sent = append(m.sent, cp)
	if m.responder != nil {
		if reply := m.responder(cp); reply != nil {
			m.replies = append(m.replies, reply)
		}
	}
	return nil
}

// Receive fills buf with the next queued reply. The tail of buf past a short
// reply reads as 0xFF, like an idle bus.
func (m *MockTransport) Receive(buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[MockReceive]++
	if m.closed {
		return ErrTransportClosed
	}
	if err := m.errs[MockReceive]; err != nil {
		return err
	}
	if len(m.replies) == 0 {
		return NewTimeoutError("Receive", "mock")
	}

	reply := m.replies[0]
	m.replies = m.replies[1:]
	n := copy(buf, reply)
	for i := n; i < len(buf); i++ {
		buf[i] = 0xFF
	}
	return nil
}

// Poll succeeds unless an error was configured for MockPoll
func (m *MockTransport) Poll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[MockPoll]++
	if m.closed {
		return ErrTransportClosed
	}
	return m.errs[MockPoll]
}

// SetTimeout records the timeout
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Timeout returns the last timeout set
func (m *MockTransport) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

// Close marks the transport as closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected returns true until Close is called
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// MockPin is a ReadinessPin and RFDisableLine that records what the driver did
type MockPin struct {
	mu         sync.Mutex
	Connected  bool
	IRQEnabled bool
	Level      bool
	IRQChanges int
	Writes     int
}

// NewMockPin creates a connected mock pin
func NewMockPin() *MockPin {
	return &MockPin{Connected: true}
}

// IsConnected reports whether the pin is wired
func (p *MockPin) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Connected
}

// EnableIRQ arms the readiness interrupt
func (p *MockPin) EnableIRQ() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.IRQEnabled = true
	p.IRQChanges++
	return nil
}

// DisableIRQ disarms the readiness interrupt
func (p *MockPin) DisableIRQ() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.IRQEnabled = false
	p.IRQChanges++
	return nil
}

// Set drives the line
func (p *MockPin) Set(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Level = high
	p.Writes++
	return nil
}

// EventRecorder collects every notification delivered to its Listener
type EventRecorder struct {
	events []Event
	mu     sync.Mutex
}

// Listener returns a Listener that appends to the recorder
func (r *EventRecorder) Listener() Listener {
	return EventListener(func(_ *Driver, ev Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if ev.Data != nil {
			ev.Data = append([]byte(nil), ev.Data...)
		}
		r.events = append(r.events, ev)
	})
}

// Events returns a copy of the recorded events
func (r *EventRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kind of each recorded event in order
func (r *EventRecorder) Kinds() []OperationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]OperationKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

// Last returns the most recent event, the zero Event if none
func (r *EventRecorder) Last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}
	}
	return r.events[len(r.events)-1]
}
