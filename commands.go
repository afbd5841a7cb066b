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

// APDU classes
const (
	claDefault = 0x00
	claST      = 0xA2 // vendor class, no error outside the NDEF file bounds
)

// APDU instructions
const (
	insSelectFile   = 0xA4
	insUpdateBinary = 0xD6
	insReadBinary   = 0xB0
	insVerify       = 0x20
	insChange       = 0x24
	insDisable      = 0x26
	insEnable       = 0x28
	insInterrupt    = 0xD6
)

// Single byte I2C session commands, sent without framing or CRC
const (
	cmdOpenSession  = 0x26
	cmdCloseSession = 0x52
)

// Selection parameters (P1P2)
const (
	p1p2SelectApplication = 0x0400
	p1p2SelectFile        = 0x000C
	p1p2SendInterrupt     = 0x001E
	p1p2GPOState          = 0x001F
)

// File identifiers
const (
	// CCFileID is the capability container file
	CCFileID uint16 = 0xE103
	// SystemFileID is the M24SR system file
	SystemFileID uint16 = 0xE101
	// DefaultNDEFFileID is the factory NDEF file identifier
	DefaultNDEFFileID uint16 = 0x0001
)

// System file offsets used by the driver
const (
	systemFileGPOOffset   uint16 = 0x0004
	systemFileICRefOffset uint16 = 0x0011
)

var (
	deselectRequest   = []byte{0xC2, 0xE0, 0xB4}
	ndefApplicationID = []byte{0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}
	defaultPassword   = [PasswordLength]byte{}
)

// PasswordLength is the size of every M24SR password
const PasswordLength = 16

// DefaultPassword returns the factory password, used to open the I2C super user
// access through verify.
func DefaultPassword() [PasswordLength]byte {
	return defaultPassword
}
