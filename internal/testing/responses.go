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

// Package testing provides a virtual M24SR controller and reply builders
// for exercising the driver without hardware.
package testing

import (
	"github.com/ZaparooProject/go-m24sr/internal/frame"
)

// Status words answered by the virtual controller
const (
	SWSuccess            uint16 = 0x9000
	SWEndOfFile          uint16 = 0x6282
	SWPasswordRequired   uint16 = 0x6300
	SWPasswordIncorrect  uint16 = 0x63C0
	SWWrongLength        uint16 = 0x6700
	SWSecurityStatus     uint16 = 0x6982
	SWWrongParameters    uint16 = 0x6A86
	SWFileNotFound       uint16 = 0x6A82
	SWInstructionUnknown uint16 = 0x6D00
)

// Fixed frames of the protocol
var (
	DeselectFrame = []byte{0xC2, 0xE0, 0xB4}
	NDEFAppID     = []byte{0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}
)

// BuildStatusResponse creates the five byte status reply for pcb
func BuildStatusResponse(pcb byte, sw uint16) []byte {
	return BuildDataResponse(pcb, nil, sw)
}

// BuildDataResponse creates an information block reply carrying data
func BuildDataResponse(pcb byte, data []byte, sw uint16) []byte {
	resp := make([]byte, 0, len(data)+frame.StatusResponseLength)
	resp = append(resp, pcb)
	resp = append(resp, data...)
	resp = append(resp, byte(sw>>8), byte(sw))
	return frame.AppendCRC(resp)
}

// BuildWTXRequest creates the supervisory frame asking for more time
func BuildWTXRequest(wtxm byte) []byte {
	return frame.AppendCRC([]byte{frame.WTXResponsePCB, wtxm})
}

// BuildDeselectResponse creates the controller's answer to a deselect
func BuildDeselectResponse() []byte {
	return append([]byte(nil), DeselectFrame...)
}

// CorruptCRC returns a copy of resp with its trailer flipped
func CorruptCRC(resp []byte) []byte {
	out := append([]byte(nil), resp...)
	if len(out) > 0 {
		out[len(out)-1] ^= 0xFF
	}
	return out
}
