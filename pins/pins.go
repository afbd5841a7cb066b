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

// Package pins connects the M24SR GPO output and RF disable input to host
// GPIO lines through periph.io
package pins

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when the GPIO registry has no such pin
var ErrPinNotFound = errors.New("gpio pin not found")

func lookup(name string) (gpio.PinIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	return p, nil
}

// GPO is the controller's open drain GPO output wired to a host input. The
// controller pulls it low when a reply is ready in I2C answer ready mode.
type GPO struct {
	pin gpio.PinIO
	irq atomic.Bool
}

// OpenGPO looks up the named host pin and configures it for the GPO line
func OpenGPO(name string) (*GPO, error) {
	p, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return NewGPO(p)
}

// NewGPO configures p as pulled up input with falling edge detection
func NewGPO(p gpio.PinIO) (*GPO, error) {
	if p == nil {
		return nil, fmt.Errorf("gpo: %w", ErrPinNotFound)
	}
	if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("failed to configure GPO pin %s: %w", p.Name(), err)
	}
	return &GPO{pin: p}, nil
}

// IsConnected reports whether a host pin backs the line
func (g *GPO) IsConnected() bool {
	return g != nil && g.pin != nil
}

// EnableIRQ lets WaitForEdge report edges
func (g *GPO) EnableIRQ() error {
	g.irq.Store(true)
	return nil
}

// DisableIRQ makes WaitForEdge swallow edges, used while the GPO is being reconfigured
func (g *GPO) DisableIRQ() error {
	g.irq.Store(false)
	return nil
}

// IRQEnabled reports the interrupt gate
func (g *GPO) IRQEnabled() bool {
	return g.irq.Load()
}

// WaitForEdge blocks until a falling edge or timeout. Edges seen while the
// interrupt is disabled are consumed and reported as false.
func (g *GPO) WaitForEdge(timeout time.Duration) bool {
	if !g.pin.WaitForEdge(timeout) {
		return false
	}
	return g.irq.Load()
}

// Read returns the current line level
func (g *GPO) Read() gpio.Level {
	return g.pin.Read()
}

// Name returns the host pin name
func (g *GPO) Name() string {
	return g.pin.Name()
}

// RFDisable is the controller's RF disable input driven by a host output.
// High disables the RF interface.
type RFDisable struct {
	pin gpio.PinIO
}

// OpenRFDisable looks up the named host pin for the RF disable line
func OpenRFDisable(name string) (*RFDisable, error) {
	p, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return NewRFDisable(p), nil
}

// NewRFDisable wraps p. The level is left untouched until the driver sets it.
func NewRFDisable(p gpio.PinIO) *RFDisable {
	return &RFDisable{pin: p}
}

// IsConnected reports whether a host pin backs the line
func (r *RFDisable) IsConnected() bool {
	return r != nil && r.pin != nil
}

// Set drives the line
func (r *RFDisable) Set(high bool) error {
	if err := r.pin.Out(gpio.Level(high)); err != nil {
		return fmt.Errorf("failed to drive RF disable pin %s: %w", r.pin.Name(), err)
	}
	return nil
}

// Name returns the host pin name
func (r *RFDisable) Name() string {
	return r.pin.Name()
}
