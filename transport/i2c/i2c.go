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

// Package i2c provides the periph.io I2C transport for the M24SR
package i2c

import (
	"errors"
	"fmt"
	"sync"
	"time"

	m24sr "github.com/ZaparooProject/go-m24sr"
	"github.com/ZaparooProject/go-m24sr/internal/frame"
	"github.com/ZaparooProject/go-m24sr/internal/transport"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// Address is the 7-bit M24SR address, 0xAC on the wire
	Address = 0x56

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz

	defaultTimeout = time.Second

	// Largest frame the driver builds
	maxFrameSize = frame.ScratchSize
)

// QuickWriter is implemented by buses that can address a device without
// transferring a byte. Linux i2c-dev nodes do it with a zero-length write.
type QuickWriter interface {
	QuickWrite(addr uint16) error
}

// Transport implements the m24sr.Transport interface for I2C communication
type Transport struct {
	closer       func() error
	quickWrite   func() error
	dev          *i2c.Dev
	busName      string
	timeout      time.Duration
	pollInterval time.Duration
	mu           sync.Mutex
	closed       bool
}

// New opens the named I2C bus and creates a transport for the controller
// at the default address
func New(busName string) (*Transport, error) {
	// Initialize host
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	t := NewWithBus(bus, busName, Address)
	t.closer = bus.Close

	// periph skips empty transactions, address the node directly
	if t.quickWrite == nil {
		if quick, closeQuick, err := openQuickWriter(busName, Address); err == nil {
			t.quickWrite = quick
			t.closer = func() error {
				_ = closeQuick()
				return bus.Close()
			}
		}
	}
	return t, nil
}

// NewWithBus creates a transport on an already opened bus. The caller keeps
// ownership of bus. Poll uses a quick write when bus implements QuickWriter
// and a one byte read otherwise.
func NewWithBus(bus i2c.Bus, busName string, addr uint16) *Transport {
	// Ignore error, continue with default speed
	_ = bus.SetSpeed(maxClockFreq)

	t := &Transport{
		dev:          &i2c.Dev{Addr: addr, Bus: bus},
		busName:      busName,
		timeout:      defaultTimeout,
		pollInterval: transport.DefaultPollInterval,
	}
	if q, ok := bus.(QuickWriter); ok {
		t.quickWrite = func() error { return q.QuickWrite(addr) }
	}
	return t
}

// Send writes a complete frame in one bus transaction
func (t *Transport) Send(frm []byte) error {
	if err := t.check("send"); err != nil {
		return err
	}
	if len(frm) > maxFrameSize {
		return m24sr.NewTransportError("send", t.busName,
			fmt.Errorf("%w: %d byte frame, limit %d", m24sr.ErrDataTooLarge, len(frm), maxFrameSize),
			m24sr.ErrorTypePermanent)
	}
	if err := t.dev.Tx(frm, nil); err != nil {
		return m24sr.NewTransportError("send", t.busName,
			fmt.Errorf("%w: %w", m24sr.ErrTransportWrite, err), m24sr.ErrorTypeTransient)
	}
	return nil
}

// Receive reads exactly len(buf) bytes in one bus transaction
func (t *Transport) Receive(buf []byte) error {
	if err := t.check("receive"); err != nil {
		return err
	}
	if err := t.dev.Tx(nil, buf); err != nil {
		return m24sr.NewTransportError("receive", t.busName,
			fmt.Errorf("%w: %w", m24sr.ErrTransportRead, err), m24sr.ErrorTypeTransient)
	}
	return nil
}

// Poll addresses the controller until it acknowledges. The M24SR
// does not acknowledge while it is processing a command.
func (t *Transport) Poll() error {
	if err := t.check("poll"); err != nil {
		return err
	}

	t.mu.Lock()
	timeout, interval := t.timeout, t.pollInterval
	t.mu.Unlock()

	_, err := transport.TimeoutRetry(timeout, interval, func() (struct{}, bool, error) {
		if err := t.ping(); err != nil {
			return struct{}{}, true, nil
		}
		return struct{}{}, false, nil
	})
	if err != nil {
		if errors.Is(err, m24sr.ErrTransportTimeout) {
			return m24sr.NewNoACKError("poll", t.busName)
		}
		return err
	}
	return nil
}

// SetTimeout sets how long Poll waits for an acknowledge
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// SetPollInterval sets the pause between two address checks
func (t *Transport) SetPollInterval(interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pollInterval = interval
}

// Close closes the bus when the transport opened it
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.closer != nil {
		if err := t.closer(); err != nil {
			return fmt.Errorf("failed to close I2C bus %s: %w", t.busName, err)
		}
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dev != nil && !t.closed
}

// Type returns the transport type
func (*Transport) Type() m24sr.TransportType {
	return m24sr.TransportI2C
}

// String returns the bus name and device address
func (t *Transport) String() string {
	return fmt.Sprintf("%s@0x%02X", t.busName, t.dev.Addr)
}

// ping runs one transaction that the controller only acknowledges when
// it is ready. An empty Tx is not used as periph returns before the wire.
func (t *Transport) ping() error {
	if t.quickWrite != nil {
		return t.quickWrite()
	}
	var b [1]byte
	return t.dev.Tx(nil, b[:])
}

func (t *Transport) check(op string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return m24sr.NewTransportError(op, t.busName, m24sr.ErrTransportClosed, m24sr.ErrorTypePermanent)
	}
	return nil
}

// Ensure Transport implements m24sr.Transport
var _ m24sr.Transport = (*Transport)(nil)
