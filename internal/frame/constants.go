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

// Package frame implements the block framing used on the M24SR I2C interface:
// the CRC-16 residue, field-masked I-block construction and block classification.
package frame

// Frame size limits
const (
	// MaxOperationSize is the largest frame exchanged with the controller.
	MaxOperationSize = 246
	// MaxPayload is the largest data field that fits in one frame next to
	// the PCB, status and CRC bytes.
	MaxPayload = 241
	// ScratchSize is the size of the per-driver frame buffer.
	ScratchSize = 0xFF
)

// Response lengths
const (
	StatusLength         = 2
	CRCLength            = 2
	StatusResponseLength = 5 // PCB + SW1 + SW2 + CRC
	DeselectLength       = 3
	WTXRequestLength     = 4 // S(WTX) PCB + WTXM + CRC
	PasswordLength       = 0x10
)

// Block masks applied to the PCB byte
const (
	maskBlock  = 0xC0
	maskIBlock = 0x00
	maskRBlock = 0x80
	maskSBlock = 0xC0

	iBlockTag = 0x02
	// didNeeded is tested against the running block number, not the field mask.
	didNeeded = 0x08

	// WTXResponsePCB is the PCB of the S(WTX) answer sent back to the controller.
	WTXResponsePCB = 0xF2
)

// Offsets inside a received frame
const (
	OffsetPCB   = 0
	OffsetClass = 1
	OffsetINS   = 2
	OffsetP1    = 3
)
