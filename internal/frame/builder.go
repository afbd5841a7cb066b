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

// Builder assembles I-block frames. It owns the block number, which is
// toggled once for every frame built with the PCB field.
type Builder struct {
	blockNumber byte
}

// NewBuilder returns a Builder in its power-on state.
func NewBuilder() *Builder {
	return &Builder{blockNumber: 0x01}
}

// BlockNumber returns the block number used by the last PCB emitted.
func (b *Builder) BlockNumber() byte {
	return b.blockNumber
}

// Build appends the frame described by mask and cmd to dst and returns the
// extended slice. Fields are emitted in PCB, DID, CLA, INS, P1, P2, Lc, data,
// Le, CRC order. dst must have room for the whole frame; with dst sized to
// ScratchSize and cmd.Lc <= MaxPayload no allocation happens.
func (b *Builder) Build(dst []byte, mask FieldMask, cmd *Command, did byte) []byte {
	start := len(dst)

	if mask.Has(FieldPCB) {
		b.blockNumber ^= 0x01
		dst = append(dst, iBlockTag|b.blockNumber)
	}

	// The DID presence test reads the block number rather than the mask;
	// the controller firmware expects exactly this behavior.
	if b.blockNumber&didNeeded != 0 {
		dst = append(dst, did)
	}

	if mask.Has(FieldCLA) {
		dst = append(dst, cmd.Class)
	}
	if mask.Has(FieldINS) {
		dst = append(dst, cmd.INS)
	}
	if mask.Has(FieldP1) {
		dst = append(dst, cmd.P1)
	}
	if mask.Has(FieldP2) {
		dst = append(dst, cmd.P2)
	}
	if mask.Has(FieldLc) {
		dst = append(dst, cmd.Lc)
	}

	if mask.Has(FieldData) {
		if cmd.Data != nil {
			dst = append(dst, cmd.Data[:cmd.Lc]...)
		} else {
			for i := byte(0); i < cmd.Lc; i++ {
				dst = append(dst, 0x00)
			}
		}
	}

	if mask.Has(FieldLe) {
		dst = append(dst, cmd.Le)
	}

	if mask.Has(FieldCRC) {
		crc := ComputeCRC(dst[start:])
		dst = append(dst, byte(crc&0x00FF), byte(crc>>8))
	}

	return dst
}

// AppendWTXResponse appends the S(WTX) answer granting the wait time
// extension wtxm requested by the controller.
func AppendWTXResponse(dst []byte, wtxm byte) []byte {
	start := len(dst)
	dst = append(dst, WTXResponsePCB, wtxm)
	crc := ComputeCRC(dst[start:])
	return append(dst, byte(crc&0x00FF), byte(crc>>8))
}
