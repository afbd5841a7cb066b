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
	"fmt"

	"github.com/ZaparooProject/go-m24sr/internal/frame"
)

// PasswordType identifies one of the controller's 128-bit passwords
type PasswordType uint16

const (
	// PasswordRead protects reads of the NDEF file
	PasswordRead PasswordType = 0x0001
	// PasswordWrite protects writes to the NDEF file
	PasswordWrite PasswordType = 0x0002
	// PasswordI2C grants the I2C super-user rights needed for the system file
	PasswordI2C PasswordType = 0x0003
)

func (p PasswordType) String() string {
	switch p {
	case PasswordRead:
		return "read"
	case PasswordWrite:
		return "write"
	case PasswordI2C:
		return "i2c"
	default:
		return fmt.Sprintf("PasswordType(0x%04X)", uint16(p))
	}
}

func (p PasswordType) valid() bool {
	return p >= PasswordRead && p <= PasswordI2C
}

// lockable reports whether the access right behind p can be toggled
func (p PasswordType) lockable() bool {
	return p == PasswordRead || p == PasswordWrite
}

// Verify presents password for pwd. A nil password sends the presence check
// variant, which only reports whether a verification is needed.
func (d *Driver) Verify(pwd PasswordType, password []byte) error {
	op := &operation{kind: OpVerify, password: pwd, data: password}
	if !pwd.valid() {
		return d.reject(op, parameterError(op.kind.String(), "invalid password type %s", pwd))
	}
	if password != nil && len(password) != PasswordLength {
		return d.reject(op, parameterError(op.kind.String(), "password must be %d bytes, got %d",
			PasswordLength, len(password)))
	}

	cmd := frame.Command{Class: claDefault, INS: insVerify}
	cmd.SetParams(uint16(pwd))
	mask := frame.MaskVerifyNoPassword
	if password != nil {
		cmd.Lc = PasswordLength
		cmd.Data = password
		mask = frame.MaskVerifyPassword
	}
	return d.send(op, mask, &cmd)
}

// ChangeReferenceData replaces the password identified by pwd
func (d *Driver) ChangeReferenceData(pwd PasswordType, password []byte) error {
	op := &operation{kind: OpChangeReferenceData, password: pwd, data: password}
	if !pwd.valid() {
		return d.reject(op, parameterError(op.kind.String(), "invalid password type %s", pwd))
	}
	if len(password) != PasswordLength {
		return d.reject(op, parameterError(op.kind.String(), "password must be %d bytes, got %d",
			PasswordLength, len(password)))
	}

	cmd := frame.Command{
		Class: claDefault,
		INS:   insChange,
		Lc:    PasswordLength,
		Data:  password,
	}
	cmd.SetParams(uint16(pwd))
	return d.send(op, frame.MaskChangeRefData, &cmd)
}

// EnableVerificationRequirement makes pwd mandatory for reading or writing
func (d *Driver) EnableVerificationRequirement(pwd PasswordType) error {
	return d.accessRight(OpEnableVerificationRequirement, claDefault, insEnable, frame.MaskEnableVerifReq, pwd)
}

// DisableVerificationRequirement lifts the password requirement for pwd
func (d *Driver) DisableVerificationRequirement(pwd PasswordType) error {
	return d.accessRight(OpDisableVerificationRequirement, claDefault, insDisable, frame.MaskDisableVerifReq, pwd)
}

// EnablePermanentState locks the access right behind pwd for good
func (d *Driver) EnablePermanentState(pwd PasswordType) error {
	return d.accessRight(OpEnablePermanentState, claST, insEnable, frame.MaskEnableVerifReq, pwd)
}

// DisablePermanentState unlocks a permanently locked access right
func (d *Driver) DisablePermanentState(pwd PasswordType) error {
	return d.accessRight(OpDisablePermanentState, claST, insDisable, frame.MaskDisableVerifReq, pwd)
}

func (d *Driver) accessRight(kind OperationKind, cla, ins byte, mask frame.FieldMask, pwd PasswordType) error {
	op := &operation{kind: kind, password: pwd}
	if !pwd.lockable() {
		return d.reject(op, parameterError(kind.String(), "password type %s cannot gate an access right", pwd))
	}

	cmd := frame.Command{Class: cla, INS: ins}
	cmd.SetParams(uint16(pwd))
	return d.send(op, mask, &cmd)
}
