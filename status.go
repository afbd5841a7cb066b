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

import "fmt"

// StatusWord is the SW1-SW2 pair returned by the controller
type StatusWord uint16

// Known M24SR status words
const (
	SWNone                   StatusWord = 0x0000
	SWSuccess                StatusWord = 0x9000
	SWFileOverflowLe         StatusWord = 0x6280
	SWEndOfFile              StatusWord = 0x6282
	SWPasswordRequired       StatusWord = 0x6300
	SWPasswordIncorrect      StatusWord = 0x63C0
	SWPasswordIncorrect1     StatusWord = 0x63C1
	SWPasswordIncorrect2     StatusWord = 0x63C2
	SWRFSessionKilled        StatusWord = 0x6500
	SWUpdateFailed           StatusWord = 0x6581
	SWWrongLength            StatusWord = 0x6700
	SWCommandIncompatible    StatusWord = 0x6981
	SWSecurityNotSatisfied   StatusWord = 0x6982
	SWReferenceDataNotUsable StatusWord = 0x6984
	SWIncorrectParameter     StatusWord = 0x6A80
	SWFileNotFound           StatusWord = 0x6A82
	SWFileOverflowLc         StatusWord = 0x6A84
	SWIncorrectP1P2          StatusWord = 0x6A86
	SWINSNotSupported        StatusWord = 0x6D00
	SWClassNotSupported      StatusWord = 0x6E00
)

var statusDescriptions = map[StatusWord]string{
	SWNone:                   "no status",
	SWSuccess:                "command completed",
	SWFileOverflowLe:         "file overflow (Le error)",
	SWEndOfFile:              "end of file reached before Le bytes",
	SWPasswordRequired:       "password required",
	SWRFSessionKilled:        "RF session killed",
	SWUpdateFailed:           "unsuccessful updating",
	SWWrongLength:            "wrong length",
	SWCommandIncompatible:    "command incompatible with file structure",
	SWSecurityNotSatisfied:   "security status not satisfied",
	SWReferenceDataNotUsable: "reference data not usable",
	SWIncorrectParameter:     "incorrect parameters Lc or Le",
	SWFileNotFound:           "file or application not found",
	SWFileOverflowLc:         "file overflow (Lc error)",
	SWIncorrectP1P2:          "incorrect parameter P1 or P2",
	SWINSNotSupported:        "INS field not supported",
	SWClassNotSupported:      "class not supported",
}

// NewStatusWord creates a StatusWord from its two bytes
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

// SW1 returns the high byte
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the low byte
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

// IsSuccess reports whether sw is 0x9000
func (sw StatusWord) IsSuccess() bool {
	return sw == SWSuccess
}

// IsPasswordIncorrect reports whether sw is 63Cx, where x is the number of
// verification attempts left.
func (sw StatusWord) IsPasswordIncorrect() bool {
	return sw.SW1() == 0x63 && sw.SW2()&0xF0 == 0xC0
}

// RetriesLeft returns the remaining password attempts of a 63Cx status
func (sw StatusWord) RetriesLeft() int {
	if !sw.IsPasswordIncorrect() {
		return -1
	}
	return int(sw.SW2() & 0x0F)
}

// Verbose returns a human-readable description of sw
func (sw StatusWord) Verbose() string {
	if sw.IsPasswordIncorrect() {
		return fmt.Sprintf("password incorrect, %d attempt(s) left", sw.RetriesLeft())
	}
	if desc, ok := statusDescriptions[sw]; ok {
		return desc
	}
	return "unknown status"
}

// String returns the status word in hex
func (sw StatusWord) String() string {
	return fmt.Sprintf("%04X", uint16(sw))
}
