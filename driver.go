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
	"fmt"
	"time"

	"github.com/ZaparooProject/go-m24sr/internal/frame"
)

// Mode selects how the driver waits for the controller between a request
// and its reply
type Mode int

const (
	// ModeSync polls the controller for readiness after every request and
	// completes the operation before returning.
	ModeSync Mode = iota
	// ModeAsync returns as soon as the request is sent. The caller resumes
	// the operation with ManageEvent once the GPO line signals readiness.
	ModeAsync
)

func (m Mode) String() string {
	switch m {
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	default:
		return "unknown"
	}
}

// DriverConfig holds the driver configuration
type DriverConfig struct {
	// Listener receives one notification per operation
	Listener Listener
	// GPOPin is the controller's GPO output used as readiness interrupt, nil if not wired
	GPOPin ReadinessPin
	// RFDisable is the RF disable input line, nil if not wired
	RFDisable RFDisableLine
	// I2CPassword is presented by the GPO management sequences
	I2CPassword [PasswordLength]byte
	// Timeout is the transport timeout
	Timeout time.Duration
	// Mode is the initial communication mode
	Mode Mode
	// DeviceID is carried for frames that would include a DID byte
	DeviceID byte
}

// DefaultDriverConfig returns default driver configuration
func DefaultDriverConfig() *DriverConfig {
	return &DriverConfig{
		Listener:    NopListener{},
		I2CPassword: defaultPassword,
		Timeout:     1 * time.Second,
		Mode:        ModeSync,
	}
}

// Driver talks to one M24SR controller over a Transport
//
// Thread Safety: Driver is NOT thread-safe. Requests, ManageEvent and the
// listener callbacks must all run on a single goroutine. The events package
// provides an actor that serializes them for you.
type Driver struct {
	transport Transport
	config    *DriverConfig
	builder   *frame.Builder
	pending   *operation
	chain     *chain
	state     OperationState
	blocking  int
	buf       [frame.ScratchSize]byte
}

// New creates a driver for the controller behind transport
func New(transport Transport, opts ...Option) (*Driver, error) {
	if transport == nil {
		return nil, fmt.Errorf("new driver: %w", ErrInvalidParameter)
	}

	d := &Driver{
		transport: transport,
		config:    DefaultDriverConfig(),
		builder:   frame.NewBuilder(),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.config.Listener == nil {
		d.config.Listener = NopListener{}
	}

	// RF stays enabled until RFConfig says otherwise
	if d.rfConnected() {
		if err := d.config.RFDisable.Set(false); err != nil {
			return nil, fmt.Errorf("failed to drive RF disable line: %w", err)
		}
	}
	if d.gpoConnected() {
		if err := d.config.GPOPin.DisableIRQ(); err != nil {
			return nil, fmt.Errorf("failed to disable GPO interrupt: %w", err)
		}
	}

	return d, nil
}

// Init brings the controller into a known state: it opens an I2C session,
// puts the GPO outputs of every wired line into high impedance and releases
// the session. It always runs in blocking mode.
func (d *Driver) Init() error {
	return d.runBlocking(func() error {
		if d.gpoConnected() {
			if err := d.config.GPOPin.DisableIRQ(); err != nil {
				return fmt.Errorf("failed to disable GPO interrupt: %w", err)
			}
		}

		if err := d.OpenSession(); err != nil {
			return fmt.Errorf("failed to open session: %w", err)
		}

		if d.gpoConnected() {
			if err := d.ManageI2CGPO(GPOHighImpedance); err != nil {
				return fmt.Errorf("failed to configure I2C GPO: %w", err)
			}
		}
		if d.rfConnected() {
			if err := d.ManageRFGPO(GPOHighImpedance); err != nil {
				return fmt.Errorf("failed to configure RF GPO: %w", err)
			}
		}

		if err := d.Deselect(); err != nil {
			return fmt.Errorf("failed to release session: %w", err)
		}

		if d.gpoConnected() {
			if err := d.config.GPOPin.EnableIRQ(); err != nil {
				return fmt.Errorf("failed to enable GPO interrupt: %w", err)
			}
		}
		return nil
	})
}

// Transport returns the underlying transport
func (d *Driver) Transport() Transport {
	return d.transport
}

// Mode returns the current communication mode
func (d *Driver) Mode() Mode {
	return d.config.Mode
}

// SetMode switches between sync and async communication
func (d *Driver) SetMode(mode Mode) {
	d.config.Mode = mode
}

// SetListener replaces the listener, nil restores the no-op listener
func (d *Driver) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	d.config.Listener = l
}

// SetTimeout sets the transport timeout
func (d *Driver) SetTimeout(timeout time.Duration) error {
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// State reports where the driver is in the request/reply cycle
func (d *Driver) State() OperationState {
	return d.state
}

// Outstanding returns the kind of the operation awaiting its reply, OpNone if idle
func (d *Driver) Outstanding() OperationKind {
	if d.pending == nil {
		return OpNone
	}
	return d.pending.kind
}

// Close closes the driver connection
func (d *Driver) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

func (d *Driver) gpoConnected() bool {
	return d.config.GPOPin != nil && d.config.GPOPin.IsConnected()
}

func (d *Driver) rfConnected() bool {
	return d.config.RFDisable != nil && d.config.RFDisable.IsConnected()
}
