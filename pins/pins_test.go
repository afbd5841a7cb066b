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

package pins

import (
	"testing"
	"time"

	m24sr "github.com/ZaparooProject/go-m24sr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

var (
	_ m24sr.ReadinessPin  = (*GPO)(nil)
	_ m24sr.RFDisableLine = (*RFDisable)(nil)
)

func TestNewGPO(t *testing.T) {
	t.Parallel()

	p := &gpiotest.Pin{N: "GPO", EdgesChan: make(chan gpio.Level, 1)}
	g, err := NewGPO(p)
	require.NoError(t, err)

	assert.True(t, g.IsConnected())
	assert.Equal(t, gpio.PullUp, p.Pull())
	assert.Equal(t, "GPO", g.Name())
	assert.False(t, g.IRQEnabled())
}

func TestNewGPO_NilPin(t *testing.T) {
	t.Parallel()

	_, err := NewGPO(nil)
	require.ErrorIs(t, err, ErrPinNotFound)

	var g *GPO
	assert.False(t, g.IsConnected())
}

func TestGPO_WaitForEdge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		irq    bool
		edge   bool
		expect bool
	}{
		{name: "Edge_With_IRQ", irq: true, edge: true, expect: true},
		{name: "Edge_With_IRQ_Disabled", irq: false, edge: true, expect: false},
		{name: "No_Edge", irq: true, edge: false, expect: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &gpiotest.Pin{N: "GPO", EdgesChan: make(chan gpio.Level, 1)}
			g, err := NewGPO(p)
			require.NoError(t, err)

			if tt.irq {
				require.NoError(t, g.EnableIRQ())
			} else {
				require.NoError(t, g.DisableIRQ())
			}
			if tt.edge {
				p.EdgesChan <- gpio.Low
			}

			assert.Equal(t, tt.expect, g.WaitForEdge(10*time.Millisecond))
		})
	}
}

func TestRFDisable_Set(t *testing.T) {
	t.Parallel()

	p := &gpiotest.Pin{N: "RF"}
	rf := NewRFDisable(p)
	assert.True(t, rf.IsConnected())

	require.NoError(t, rf.Set(true))
	assert.Equal(t, gpio.High, p.Read())

	require.NoError(t, rf.Set(false))
	assert.Equal(t, gpio.Low, p.Read())
	assert.Equal(t, "RF", rf.Name())
}

func TestRFConfig_DrivesLine(t *testing.T) {
	t.Parallel()

	p := &gpiotest.Pin{N: "RF", L: gpio.High}
	d, err := m24sr.New(m24sr.NewMockTransport(), m24sr.WithRFDisablePin(NewRFDisable(p)))
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, p.Read(), "RF must be enabled after construction")

	require.NoError(t, d.RFConfig(false))
	assert.Equal(t, gpio.High, p.Read())

	require.NoError(t, d.RFConfig(true))
	assert.Equal(t, gpio.Low, p.Read())
}
