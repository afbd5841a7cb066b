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

// crcSeed is the ITU-V.41 initial register value used by ISO/IEC 13239.
const crcSeed = 0x6363

// UpdateCRC folds one byte into the running CRC register.
func UpdateCRC(b byte, crc uint16) uint16 {
	b ^= byte(crc & 0x00FF)
	b ^= b << 4
	return (crc >> 8) ^ (uint16(b) << 8) ^ (uint16(b) << 3) ^ (uint16(b) >> 4)
}

// ComputeCRC returns the CRC-16 of data starting from the 0x6363 seed.
// The caller guarantees data is not empty.
func ComputeCRC(data []byte) uint16 {
	crc := uint16(crcSeed)
	for _, b := range data {
		crc = UpdateCRC(b, crc)
	}
	return crc
}

// AppendCRC appends the CRC of data to data, least-significant byte first.
func AppendCRC(data []byte) []byte {
	crc := ComputeCRC(data)
	return append(data, byte(crc&0x00FF), byte(crc>>8))
}

// CheckResidue validates the CRC residue of the first length bytes of buf and
// extracts the status word carried by the frame.
//
// When the residue over length bytes is zero the status word is read from the
// two bytes preceding the CRC. Otherwise the residue is re-checked over the
// first StatusResponseLength bytes only, which is the layout of a bare status
// frame, and the status word is read from bytes 1 and 2. ok is false when both
// checks fail.
func CheckResidue(buf []byte, length int) (sw uint16, ok bool) {
	if length > len(buf) {
		length = len(buf)
	}
	if length >= StatusLength+CRCLength && ComputeCRC(buf[:length]) == 0 {
		return uint16(buf[length-4])<<8 | uint16(buf[length-3]), true
	}

	if len(buf) < StatusResponseLength || ComputeCRC(buf[:StatusResponseLength]) != 0 {
		return 0, false
	}
	return uint16(buf[1])<<8 | uint16(buf[2]), true
}
