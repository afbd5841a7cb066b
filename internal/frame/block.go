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

// BlockType is the kind of block encoded in a frame's PCB.
type BlockType int

// Block kinds
const (
	BlockInvalid BlockType = iota
	BlockInformation
	BlockReceipt
	BlockSupervisory
)

// String returns the block kind name
func (t BlockType) String() string {
	switch t {
	case BlockInformation:
		return "I-block"
	case BlockReceipt:
		return "R-block"
	case BlockSupervisory:
		return "S-block"
	case BlockInvalid:
		return "invalid"
	default:
		return "invalid"
	}
}

// Classify returns the block kind of frm from its leading PCB byte.
func Classify(frm []byte) BlockType {
	if len(frm) == 0 {
		return BlockInvalid
	}
	switch frm[OffsetPCB] & maskBlock {
	case maskIBlock:
		return BlockInformation
	case maskRBlock:
		return BlockReceipt
	case maskSBlock:
		return BlockSupervisory
	default:
		return BlockInvalid
	}
}

// IsSBlock reports whether frm is a supervisory block.
func IsSBlock(frm []byte) bool {
	return Classify(frm) == BlockSupervisory
}
