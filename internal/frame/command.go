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

package frame

// FieldMask selects which fields of a Command are emitted by Build.
type FieldMask uint16

// Field presence bits
const (
	FieldPCB  FieldMask = 0x0001 // protocol control byte
	FieldCLA  FieldMask = 0x0002 // class byte
	FieldINS  FieldMask = 0x0004 // instruction byte
	FieldP1   FieldMask = 0x0008 // parameter 1
	FieldP2   FieldMask = 0x0010 // parameter 2
	FieldLc   FieldMask = 0x0020 // data field length
	FieldData FieldMask = 0x0040 // data field
	FieldLe   FieldMask = 0x0080 // expected response length
	FieldCRC  FieldMask = 0x0100 // trailing CRC-16
)

// Masks for each command family. These never change at runtime.
const (
	MaskSelectApplication FieldMask = 0x01FF
	MaskSelectCCFile      FieldMask = 0x017F
	MaskSelectNDEFFile    FieldMask = 0x017F
	MaskReadBinary        FieldMask = 0x019F
	MaskUpdateBinary      FieldMask = 0x017F
	MaskVerifyNoPassword  FieldMask = 0x013F
	MaskVerifyPassword    FieldMask = 0x017F
	MaskChangeRefData     FieldMask = 0x017F
	MaskEnableVerifReq    FieldMask = 0x011F
	MaskDisableVerifReq   FieldMask = 0x011F
	MaskSendInterrupt     FieldMask = 0x013F
	MaskGPOState          FieldMask = 0x017F
)

// Has reports whether every bit of f is set in m.
func (m FieldMask) Has(f FieldMask) bool {
	return m&f == f
}

// Command is the in-memory form of one command APDU. Data is borrowed from
// the caller and never retained by Build. When Data is nil and the mask asks
// for a data field, Lc zero bytes are written instead.
type Command struct {
	Data  []byte
	Class byte
	INS   byte
	P1    byte
	P2    byte
	Lc    byte
	Le    byte
}

// SetParams splits a 16-bit parameter into P1 (high byte) and P2 (low byte).
func (c *Command) SetParams(p1p2 uint16) {
	c.P1 = byte(p1p2 >> 8)
	c.P2 = byte(p1p2)
}
