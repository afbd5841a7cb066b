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
	"time"
)

// Transport is the byte-level link to the controller. All methods address
// the same fixed bus device.
type Transport interface {
	// Send writes one frame to the device
	Send(frame []byte) error

	// Receive reads exactly len(buf) bytes from the device
	Receive(buf []byte) error

	// Poll retries an address-only transaction until the device
	// acknowledges or the transport timeout expires
	Poll() error

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the timeout for Poll and bus transactions
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// ReadinessPin is the controller's GPO line as seen by the host. The driver
// never reads its level; it only gates the edge interrupt around
// configuration windows.
type ReadinessPin interface {
	IsConnected() bool
	EnableIRQ() error
	DisableIRQ() error
}

// RFDisableLine is the logic-level input of the controller that turns the RF
// interface off when driven high.
type RFDisableLine interface {
	IsConnected() bool
	Set(high bool) error
}
