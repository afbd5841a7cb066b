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

package testing

import (
	"bytes"
	"encoding/binary"

	"github.com/ZaparooProject/go-m24sr/internal/frame"
)

// File identifiers of the virtual controller
const (
	SystemFileID uint16 = 0xE101
	CCFileID     uint16 = 0xE103
	NDEFFileID   uint16 = 0x0001
)

// Password references
const (
	ReadPassword  uint16 = 0x0001
	WritePassword uint16 = 0x0002
	I2CPassword   uint16 = 0x0003
)

const (
	sysGPOOffset   = 0x0004
	sysICRefOffset = 0x0011
	// ICRefM24SR64 is the IC reference reported by an M24SR64
	ICRefM24SR64 = 0x84
)

// VirtualM24SR simulates the controller side of the I2C protocol. Feed it
// every frame the driver sends with Handle and queue whatever it returns.
type VirtualM24SR struct {
	Files       map[uint16][]byte
	Passwords   map[uint16][]byte
	required    map[uint16]bool
	permanent   map[uint16]bool
	verified    map[uint16]bool
	pending     []byte
	Frames      [][]byte
	Interrupts  int
	GPOLevel    *bool
	pendingOff  uint16
	selected    uint16
	WTXCount    int
	wtxLeft     int
	WTXM        byte
	appSelected bool
	SessionOpen bool
}

// NewVirtualM24SR creates a controller with a CC file, a system file and an
// empty NDEF file, all passwords set to zeros
func NewVirtualM24SR() *VirtualM24SR {
	sys := make([]byte, 0x12)
	binary.BigEndian.PutUint16(sys[0:], uint16(len(sys)))
	sys[sysGPOOffset] = 0x11
	sys[sysICRefOffset] = ICRefM24SR64

	cc := []byte{
		0x00, 0x0F, 0x20, 0x00, 0xF6, 0x00, 0xF6,
		0x04, 0x06, 0x00, 0x01, 0x20, 0x00, 0x00, 0x00,
	}

	zeros := make([]byte, 16)
	return &VirtualM24SR{
		Files: map[uint16][]byte{
			SystemFileID: sys,
			CCFileID:     cc,
			NDEFFileID:   make([]byte, 0x40),
		},
		Passwords: map[uint16][]byte{
			ReadPassword:  append([]byte(nil), zeros...),
			WritePassword: append([]byte(nil), zeros...),
			I2CPassword:   append([]byte(nil), zeros...),
		},
		required:  make(map[uint16]bool),
		permanent: make(map[uint16]bool),
		verified:  make(map[uint16]bool),
		WTXM:      0x01,
	}
}

// GPOByte returns the GPO configuration byte of the system file
func (v *VirtualM24SR) GPOByte() byte {
	return v.Files[SystemFileID][sysGPOOffset]
}

// RequirePassword makes pwd mandatory before access
func (v *VirtualM24SR) RequirePassword(pwd uint16) {
	v.required[pwd] = true
}

// Required reports whether pwd is currently mandatory
func (v *VirtualM24SR) Required(pwd uint16) bool {
	return v.required[pwd]
}

// Permanent reports whether the access right behind pwd is locked
func (v *VirtualM24SR) Permanent(pwd uint16) bool {
	return v.permanent[pwd]
}

// Handle processes one frame and returns the reply, or nil for session commands
func (v *VirtualM24SR) Handle(frm []byte) []byte {
	v.Frames = append(v.Frames, append([]byte(nil), frm...))

	switch {
	case len(frm) == 1:
		return v.handleSession(frm[0])
	case bytes.Equal(frm, DeselectFrame):
		v.appSelected = false
		v.selected = 0
		v.verified = make(map[uint16]bool)
		v.SessionOpen = false
		return BuildDeselectResponse()
	case len(frm) < 4 || frame.ComputeCRC(frm) != 0:
		return nil
	case frm[0] == frame.WTXResponsePCB:
		return v.handleWTXResponse()
	}

	pcb, cla, ins := frm[0], frm[1], frm[2]
	p1p2 := binary.BigEndian.Uint16(frm[3:5])
	body := frm[5 : len(frm)-frame.CRCLength]

	switch {
	case ins == 0xA4:
		return BuildStatusResponse(pcb, v.selectFile(p1p2, body))
	case ins == 0xB0:
		return v.readBinary(pcb, cla, p1p2, body)
	case ins == 0xD6 && cla == 0xA2:
		return BuildStatusResponse(pcb, v.gpoCommand(p1p2, body))
	case ins == 0xD6:
		return v.updateBinary(pcb, p1p2, body)
	case ins == 0x20:
		return BuildStatusResponse(pcb, v.verify(p1p2, body))
	case ins == 0x24:
		return BuildStatusResponse(pcb, v.change(p1p2, body))
	case ins == 0x28 || ins == 0x26:
		return BuildStatusResponse(pcb, v.accessRight(cla, ins == 0x28, p1p2))
	default:
		return BuildStatusResponse(pcb, SWInstructionUnknown)
	}
}

func (v *VirtualM24SR) handleSession(code byte) []byte {
	switch code {
	case 0x26:
		v.SessionOpen = true
	case 0x52:
		v.SessionOpen = false
	}
	return nil
}

func (v *VirtualM24SR) selectFile(p1p2 uint16, body []byte) uint16 {
	if len(body) == 0 || int(body[0]) > len(body)-1 {
		return SWWrongLength
	}
	data := body[1 : 1+int(body[0])]

	switch p1p2 {
	case 0x0400:
		if !bytes.Equal(data, NDEFAppID) {
			return SWFileNotFound
		}
		v.appSelected = true
		return SWSuccess
	case 0x000C:
		if !v.appSelected || len(data) != 2 {
			return SWFileNotFound
		}
		id := binary.BigEndian.Uint16(data)
		if _, ok := v.Files[id]; !ok {
			return SWFileNotFound
		}
		v.selected = id
		return SWSuccess
	default:
		return SWWrongParameters
	}
}

func (v *VirtualM24SR) readBinary(pcb, cla byte, offset uint16, body []byte) []byte {
	if len(body) != 1 {
		return BuildStatusResponse(pcb, SWWrongLength)
	}
	file, ok := v.Files[v.selected]
	if v.selected == 0 || !ok {
		return BuildStatusResponse(pcb, SWFileNotFound)
	}
	if v.selected == NDEFFileID && v.required[ReadPassword] && !v.verified[ReadPassword] {
		return BuildStatusResponse(pcb, SWSecurityStatus)
	}

	length := int(body[0])
	end := int(offset) + length
	if end > len(file) {
		if cla != 0xA2 {
			return BuildStatusResponse(pcb, SWWrongParameters)
		}
		out := make([]byte, length)
		if int(offset) < len(file) {
			copy(out, file[offset:])
		}
		return BuildDataResponse(pcb, out, SWSuccess)
	}
	return BuildDataResponse(pcb, file[offset:end], SWSuccess)
}

func (v *VirtualM24SR) updateBinary(pcb byte, offset uint16, body []byte) []byte {
	if len(body) == 0 || int(body[0]) != len(body)-1 {
		return BuildStatusResponse(pcb, SWWrongLength)
	}
	if _, ok := v.Files[v.selected]; v.selected == 0 || !ok {
		return BuildStatusResponse(pcb, SWFileNotFound)
	}
	if !v.writeAllowed() {
		return BuildStatusResponse(pcb, SWSecurityStatus)
	}

	data := body[1:]
	if int(offset)+len(data) > len(v.Files[v.selected]) {
		return BuildStatusResponse(pcb, SWWrongParameters)
	}

	if v.WTXCount > 0 {
		v.pending = append([]byte{pcb}, data...)
		v.pendingOff = offset
		v.wtxLeft = v.WTXCount
		v.wtxLeft--
		return BuildWTXRequest(v.WTXM)
	}
	copy(v.Files[v.selected][offset:], data)
	return BuildStatusResponse(pcb, SWSuccess)
}

func (v *VirtualM24SR) handleWTXResponse() []byte {
	if v.pending == nil {
		return nil
	}
	if v.wtxLeft > 0 {
		v.wtxLeft--
		return BuildWTXRequest(v.WTXM)
	}
	pcb, data := v.pending[0], v.pending[1:]
	copy(v.Files[v.selected][v.pendingOff:], data)
	v.pending = nil
	return BuildStatusResponse(pcb, SWSuccess)
}

func (v *VirtualM24SR) writeAllowed() bool {
	switch v.selected {
	case SystemFileID:
		return v.verified[I2CPassword]
	case NDEFFileID:
		return !v.permanent[WritePassword] && (!v.required[WritePassword] || v.verified[WritePassword])
	default:
		return false
	}
}

func (v *VirtualM24SR) verify(pwd uint16, body []byte) uint16 {
	stored, ok := v.Passwords[pwd]
	if !ok {
		return SWWrongParameters
	}
	if len(body) == 0 || body[0] == 0 {
		if v.verified[pwd] || !v.required[pwd] {
			return SWSuccess
		}
		return SWPasswordRequired
	}
	if int(body[0]) != len(body)-1 || body[0] != 16 {
		return SWWrongLength
	}
	if !bytes.Equal(body[1:], stored) {
		return SWPasswordIncorrect | 0x02
	}
	v.verified[pwd] = true
	return SWSuccess
}

func (v *VirtualM24SR) change(pwd uint16, body []byte) uint16 {
	if _, ok := v.Passwords[pwd]; !ok {
		return SWWrongParameters
	}
	if len(body) != 17 || body[0] != 16 {
		return SWWrongLength
	}
	if !v.verified[pwd] {
		return SWSecurityStatus
	}
	v.Passwords[pwd] = append([]byte(nil), body[1:]...)
	return SWSuccess
}

func (v *VirtualM24SR) accessRight(cla byte, enable bool, pwd uint16) uint16 {
	if pwd != ReadPassword && pwd != WritePassword {
		return SWWrongParameters
	}
	if cla == 0xA2 {
		if !v.verified[I2CPassword] {
			return SWSecurityStatus
		}
		v.permanent[pwd] = enable
		return SWSuccess
	}
	if v.permanent[pwd] {
		return SWSecurityStatus
	}
	v.required[pwd] = enable
	return SWSuccess
}

func (v *VirtualM24SR) gpoCommand(p1p2 uint16, body []byte) uint16 {
	switch p1p2 {
	case 0x001E:
		if v.GPOByte()&0x0F != 0x04 {
			return SWSecurityStatus
		}
		v.Interrupts++
		return SWSuccess
	case 0x001F:
		if v.GPOByte()&0x0F != 0x05 || len(body) != 2 {
			return SWSecurityStatus
		}
		level := body[1] == 0x01
		v.GPOLevel = &level
		return SWSuccess
	default:
		return SWWrongParameters
	}
}
