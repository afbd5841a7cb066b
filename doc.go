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

/*
Package m24sr provides a pure Go driver for ST M24SR dynamic NFC tags
controlled from the I2C side.

The M24SR is an NFC Forum Type 4 tag with a second, wired interface. The I2C
host talks to it with ISO 7816-4 APDUs wrapped in ISO 14443-4 style blocks,
each protected by a CRC-16. This package builds those frames, tracks the
single outstanding request and decodes the reply into events delivered to a
Listener.

Features:
  - Session management: open, close and deselect
  - File selection: NDEF application, CC file, system file and NDEF file
  - Binary reads and writes, with wait time extension handling
  - Password verification and change, read and write access rights
  - GPO configuration for both the I2C and the RF domain
  - Synchronous (polled) and asynchronous (GPO interrupt) modes
  - Linux I2C transport and GPIO lines through periph.io

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-m24sr"
	    "github.com/ZaparooProject/go-m24sr/transport/i2c"
	)

	transport, err := i2c.New("/dev/i2c-1")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	d, err := m24sr.New(transport, m24sr.WithTimeout(time.Second))
	if err != nil {
	    log.Fatal(err)
	}
	if err := d.Init(); err != nil {
	    log.Fatal(err)
	}

	// Read the first bytes of the NDEF file
	buf := make([]byte, 16)
	if err := d.OpenSession(); err != nil {
	    log.Fatal(err)
	}
	_ = d.SelectApplication()
	_ = d.SelectNDEFFile(m24sr.DefaultNDEFFileID)
	if err := d.ReadBinary(0, buf); err != nil {
	    log.Fatal(err)
	}
	_ = d.Deselect()

Modes:

In ModeSync every request polls the controller until it acknowledges and
returns once the reply has been decoded. In ModeAsync a request returns as
soon as the frame was written; call ManageEvent when the GPO line signals
that the answer is ready. Configuring the I2C GPO as GPOI2CAnswerReady
switches the driver to ModeAsync, any other configuration back to ModeSync.
The events package ties the GPO edge to ManageEvent on a single goroutine.

Notifications:

Every operation ends with exactly one Listener callback, on success and on
every failure path. Embed NopListener to implement only what you need, or use
EventListener to receive a single Event value.

Error Handling:

Errors can be inspected with errors.Is against the package sentinels, and the
controller status word of a failed command is available through StatusOf:

	if m24sr.StatusOf(err).IsPasswordIncorrect() {
	    // retry with another password
	}

Thread Safety:

Driver is not thread-safe. Requests, ManageEvent and listener callbacks must
run on the same goroutine.
*/
package m24sr
