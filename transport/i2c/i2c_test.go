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

package i2c

import (
	"errors"
	"sync"
	"testing"
	"time"

	m24sr "github.com/ZaparooProject/go-m24sr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// busyBus refuses the first busy transactions, as the M24SR does while it
// processes a command
type busyBus struct {
	err   error
	txs   [][]byte
	mu    sync.Mutex
	busy  int
	calls int
}

func (*busyBus) String() string { return "busy" }

func (*busyBus) SetSpeed(physic.Frequency) error { return nil }

func (b *busyBus) Tx(_ uint16, w, _ []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.txs = append(b.txs, append([]byte(nil), w...))
	if b.err != nil {
		return b.err
	}
	if b.busy > 0 {
		b.busy--
		return errors.New("nack")
	}
	return nil
}

// sysfsLikeBus behaves like the periph sysfs bus: an empty Tx returns
// before reaching the wire, and the device refuses every real transaction
// until it is done processing
type sysfsLikeBus struct {
	readyAt time.Time
	mu      sync.Mutex
	wire    int
}

func (*sysfsLikeBus) String() string { return "sysfs" }

func (*sysfsLikeBus) SetSpeed(physic.Frequency) error { return nil }

func (b *sysfsLikeBus) Tx(_ uint16, w, r []byte) error {
	if len(w) == 0 && len(r) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wire++
	if time.Now().Before(b.readyAt) {
		return errors.New("nack")
	}
	for i := range r {
		r[i] = 0x02
	}
	return nil
}

// quickBus acknowledges quick writes once busy reaches zero
type quickBus struct {
	busyBus
	quick int
}

func (b *quickBus) QuickWrite(addr uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr != Address {
		return errors.New("wrong address")
	}
	b.quick++
	if b.busy > 0 {
		b.busy--
		return errors.New("nack")
	}
	return nil
}

func TestTransport_SendReceive(t *testing.T) {
	t.Parallel()

	frm := []byte{0x02, 0x00, 0xB0, 0x00, 0x00, 0x10, 0xF8, 0x4E}
	reply := []byte{0x02, 0x90, 0x00, 0xF1, 0x09}

	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: Address, W: frm},
			{Addr: Address, R: reply[:1]},
			{Addr: Address, R: reply},
		},
	}
	tr := NewWithBus(bus, "playback", Address)

	require.NoError(t, tr.Send(frm))
	require.NoError(t, tr.Poll())

	buf := make([]byte, len(reply))
	require.NoError(t, tr.Receive(buf))
	assert.Equal(t, reply, buf)
	require.NoError(t, bus.Close())
}

func TestTransport_PollWaitsForAck(t *testing.T) {
	t.Parallel()

	bus := &busyBus{busy: 3}
	tr := NewWithBus(bus, "busy", Address)
	tr.SetPollInterval(time.Microsecond)

	require.NoError(t, tr.Poll())
	assert.Equal(t, 4, bus.calls)
	for _, w := range bus.txs {
		assert.Empty(t, w, "poll must only address the device")
	}
}

func TestTransport_PollReachesWire(t *testing.T) {
	t.Parallel()

	busy := 50 * time.Millisecond
	bus := &sysfsLikeBus{readyAt: time.Now().Add(busy)}
	tr := NewWithBus(bus, "sysfs", Address)
	tr.SetPollInterval(time.Millisecond)

	start := time.Now()
	require.NoError(t, tr.Poll())
	assert.GreaterOrEqual(t, time.Since(start), busy)

	bus.mu.Lock()
	assert.Greater(t, bus.wire, 1, "poll must retry on the wire")
	bus.mu.Unlock()

	buf := make([]byte, 5)
	require.NoError(t, tr.Receive(buf))
}

func TestTransport_PollQuickWrite(t *testing.T) {
	t.Parallel()

	bus := &quickBus{busyBus: busyBus{busy: 2}}
	tr := NewWithBus(bus, "quick", Address)
	tr.SetPollInterval(time.Microsecond)

	require.NoError(t, tr.Poll())
	assert.Equal(t, 3, bus.quick)
	assert.Zero(t, bus.calls, "quick write replaces the one byte read")
}

func TestTransport_SendTooLarge(t *testing.T) {
	t.Parallel()

	bus := &busyBus{}
	tr := NewWithBus(bus, "busy", Address)

	require.NoError(t, tr.Send(make([]byte, maxFrameSize)))
	err := tr.Send(make([]byte, maxFrameSize+1))
	require.ErrorIs(t, err, m24sr.ErrDataTooLarge)
	assert.False(t, m24sr.IsRetryable(err))
	assert.Equal(t, 1, bus.calls, "oversized frame never reaches the bus")
}

func TestTransport_PollTimeout(t *testing.T) {
	t.Parallel()

	bus := &busyBus{busy: 1 << 30}
	tr := NewWithBus(bus, "busy", Address)
	tr.SetPollInterval(time.Millisecond)
	require.NoError(t, tr.SetTimeout(5*time.Millisecond))

	err := tr.Poll()
	require.Error(t, err)
	require.ErrorIs(t, err, m24sr.ErrNoACK)
	assert.True(t, m24sr.IsRetryable(err))
}

func TestTransport_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		run     func(*Transport) error
		wantErr error
		name    string
	}{
		{
			name:    "Send",
			run:     func(tr *Transport) error { return tr.Send([]byte{0x26}) },
			wantErr: m24sr.ErrTransportWrite,
		},
		{
			name:    "Receive",
			run:     func(tr *Transport) error { return tr.Receive(make([]byte, 5)) },
			wantErr: m24sr.ErrTransportRead,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := NewWithBus(&busyBus{err: errors.New("bus fault")}, "broken", Address)
			err := tt.run(tr)
			require.ErrorIs(t, err, tt.wantErr)

			var te *m24sr.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "broken", te.Port)
		})
	}
}

func TestTransport_Close(t *testing.T) {
	t.Parallel()

	closed := 0
	tr := NewWithBus(&busyBus{}, "busy", Address)
	tr.closer = func() error {
		closed++
		return nil
	}

	assert.True(t, tr.IsConnected())
	assert.Equal(t, m24sr.TransportI2C, tr.Type())
	assert.Equal(t, "busy@0x56", tr.String())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.Equal(t, 1, closed)
	assert.False(t, tr.IsConnected())
	require.ErrorIs(t, tr.Send([]byte{0x26}), m24sr.ErrTransportClosed)
}
