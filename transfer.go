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
	"github.com/ZaparooProject/go-m24sr/internal/frame"
)

// ReadBinary reads len(dst) bytes of the selected file starting at offset.
// An empty dst is rejected with ErrInvalidParameter. Reads longer than frame.MaxPayload are clamped and the listener sees the
// clamped slice. dst is only written when the reply validates.
func (d *Driver) ReadBinary(offset uint16, dst []byte) error {
	return d.readBinary(claDefault, offset, dst)
}

// STReadBinary is ReadBinary with the ST class byte, which reads past the
// NDEF length without an error status
func (d *Driver) STReadBinary(offset uint16, dst []byte) error {
	return d.readBinary(claST, offset, dst)
}

func (d *Driver) readBinary(cla byte, offset uint16, dst []byte) error {
	dst = clampPayload(dst)
	op := &operation{kind: OpReadBinary, offset: offset, data: dst}
	// Le 0x00 would ask for 256 bytes
	if len(dst) == 0 {
		return d.reject(op, parameterError(op.kind.String(), "read length must be at least 1"))
	}

	cmd := frame.Command{
		Class: cla,
		INS:   insReadBinary,
		Le:    byte(len(dst)),
	}
	cmd.SetParams(offset)
	return d.send(op, frame.MaskReadBinary, &cmd)
}

// UpdateBinary writes data into the selected file at offset. Writes longer
// than frame.MaxPayload are clamped. The controller may ask for more time
// while writing; the driver grants it and keeps waiting for the status.
func (d *Driver) UpdateBinary(offset uint16, data []byte) error {
	data = clampPayload(data)
	op := &operation{kind: OpUpdateBinary, offset: offset, data: data}

	cmd := frame.Command{
		Class: claDefault,
		INS:   insUpdateBinary,
		Lc:    byte(len(data)),
		Data:  data,
	}
	cmd.SetParams(offset)
	return d.send(op, frame.MaskUpdateBinary, &cmd)
}

func clampPayload(b []byte) []byte {
	if len(b) > frame.MaxPayload {
		debugf("clamping %d byte transfer to %d", len(b), frame.MaxPayload)
		return b[:frame.MaxPayload]
	}
	return b
}
