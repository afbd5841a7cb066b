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
)

// Option is a functional option for configuring a Driver
type Option func(*Driver) error

// WithMode sets the initial communication mode
func WithMode(mode Mode) Option {
	return func(d *Driver) error {
		if mode != ModeSync && mode != ModeAsync {
			return parameterError("with mode", "unknown mode %d", int(mode))
		}
		d.config.Mode = mode
		return nil
	}
}

// WithListener sets the listener that receives operation results
func WithListener(l Listener) Option {
	return func(d *Driver) error {
		d.SetListener(l)
		return nil
	}
}

// WithGPOPin wires the controller's GPO output as readiness interrupt
func WithGPOPin(pin ReadinessPin) Option {
	return func(d *Driver) error {
		d.config.GPOPin = pin
		return nil
	}
}

// WithRFDisablePin wires the RF disable input
func WithRFDisablePin(line RFDisableLine) Option {
	return func(d *Driver) error {
		d.config.RFDisable = line
		return nil
	}
}

// WithDeviceID sets the device identifier
func WithDeviceID(did byte) Option {
	return func(d *Driver) error {
		d.config.DeviceID = did
		return nil
	}
}

// WithI2CPassword sets the I2C password presented by the GPO sequences
func WithI2CPassword(password []byte) Option {
	return func(d *Driver) error {
		if len(password) != PasswordLength {
			return parameterError("with I2C password", "password must be %d bytes, got %d",
				PasswordLength, len(password))
		}
		copy(d.config.I2CPassword[:], password)
		return nil
	}
}

// WithTimeout sets the transport timeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *Driver) error {
		if timeout <= 0 {
			return fmt.Errorf("with timeout: %w", ErrInvalidParameter)
		}
		return d.SetTimeout(timeout)
	}
}
