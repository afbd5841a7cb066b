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

// OperationKind identifies a driver operation and the notification it ends with
type OperationKind int

const (
	// OpNone means no operation is outstanding
	OpNone OperationKind = iota
	// OpSession opens the I2C session or kills the current one
	OpSession
	// OpDeselect ends the I2C session with an S(DESELECT) block
	OpDeselect
	// OpSelectApplication selects the NDEF tag application
	OpSelectApplication
	// OpSelectCCFile selects the capability container file
	OpSelectCCFile
	// OpSelectSystemFile selects the ST system file
	OpSelectSystemFile
	// OpSelectNDEFFile selects an NDEF file by ID
	OpSelectNDEFFile
	// OpReadBinary reads from the selected file, with either class byte
	OpReadBinary
	// OpUpdateBinary writes to the selected file
	OpUpdateBinary
	// OpVerify presents a password or checks whether one is needed
	OpVerify
	// OpChangeReferenceData replaces a read or write password
	OpChangeReferenceData
	// OpEnableVerificationRequirement protects the NDEF file with a password
	OpEnableVerificationRequirement
	// OpDisableVerificationRequirement lifts a password protection
	OpDisableVerificationRequirement
	// OpEnablePermanentState locks an access right permanently
	OpEnablePermanentState
	// OpDisablePermanentState unlocks a permanently locked access right
	OpDisablePermanentState
	// OpManageI2CGPO configures the GPO seen from the I2C side
	OpManageI2CGPO
	// OpManageRFGPO configures the GPO seen from the RF side
	OpManageRFGPO
	// OpReadID reads the IC reference byte
	OpReadID
)

var operationNames = [...]string{
	OpNone:                           "none",
	OpSession:                        "session",
	OpDeselect:                       "deselect",
	OpSelectApplication:              "select application",
	OpSelectCCFile:                   "select CC file",
	OpSelectSystemFile:               "select system file",
	OpSelectNDEFFile:                 "select NDEF file",
	OpReadBinary:                     "read binary",
	OpUpdateBinary:                   "update binary",
	OpVerify:                         "verify",
	OpChangeReferenceData:            "change reference data",
	OpEnableVerificationRequirement:  "enable verification requirement",
	OpDisableVerificationRequirement: "disable verification requirement",
	OpEnablePermanentState:           "enable permanent state",
	OpDisablePermanentState:          "disable permanent state",
	OpManageI2CGPO:                   "manage I2C GPO",
	OpManageRFGPO:                    "manage RF GPO",
	OpReadID:                         "read ID",
}

func (k OperationKind) String() string {
	if k < 0 || int(k) >= len(operationNames) {
		return "unknown"
	}
	return operationNames[k]
}

// Event is the decoded result of one operation. Only the fields relevant to
// Kind are set: Offset and Data for binary transfers, Password and Data for
// password commands, GPO for GPO management and ID for ReadID.
type Event struct {
	Err      error
	Data     []byte
	Kind     OperationKind
	Offset   uint16
	Password PasswordType
	GPO      GPOConfig
	ID       byte
}

// Listener receives exactly one notification per operation, on success and
// on every error path. err is nil on success.
type Listener interface {
	// OnSessionOpen is called after both the open and the close session command
	OnSessionOpen(d *Driver, err error)
	OnDeselect(d *Driver, err error)
	OnSelectedApplication(d *Driver, err error)
	OnSelectedCCFile(d *Driver, err error)
	OnSelectedSystemFile(d *Driver, err error)
	OnSelectedNDEFFile(d *Driver, err error)
	OnReadByte(d *Driver, err error, offset uint16, data []byte)
	OnUpdatedBinary(d *Driver, err error, offset uint16, data []byte)
	OnVerified(d *Driver, err error, pwd PasswordType, password []byte)
	OnChangeReferenceData(d *Driver, err error, pwd PasswordType, password []byte)
	OnEnableVerificationRequirement(d *Driver, err error, pwd PasswordType)
	OnDisableVerificationRequirement(d *Driver, err error, pwd PasswordType)
	OnEnablePermanentState(d *Driver, err error, pwd PasswordType)
	OnDisablePermanentState(d *Driver, err error, pwd PasswordType)
	OnManageI2CGPO(d *Driver, err error, cfg GPOConfig)
	OnManageRFGPO(d *Driver, err error, cfg GPOConfig)
	OnReadID(d *Driver, err error, id byte)
}

// NopListener ignores every notification. Embed it to implement only the
// callbacks you need.
type NopListener struct{}

func (NopListener) OnSessionOpen(*Driver, error) {}
func (NopListener) OnDeselect(*Driver, error) {}
func (NopListener) OnSelectedApplication(*Driver, error) {}
func (NopListener) OnSelectedCCFile(*Driver, error) {}
func (NopListener) OnSelectedSystemFile(*Driver, error) {}
func (NopListener) OnSelectedNDEFFile(*Driver, error) {}
func (NopListener) OnReadByte(*Driver, error, uint16, []byte) {}
func (NopListener) OnUpdatedBinary(*Driver, error, uint16, []byte) {}
func (NopListener) OnVerified(*Driver, error, PasswordType, []byte) {}
func (NopListener) OnChangeReferenceData(*Driver, error, PasswordType, []byte) {}
func (NopListener) OnEnableVerificationRequirement(*Driver, error, PasswordType) {}
func (NopListener) OnDisableVerificationRequirement(*Driver, error, PasswordType) {}
func (NopListener) OnEnablePermanentState(*Driver, error, PasswordType) {}
func (NopListener) OnDisablePermanentState(*Driver, error, PasswordType) {}
func (NopListener) OnManageI2CGPO(*Driver, error, GPOConfig) {}
func (NopListener) OnManageRFGPO(*Driver, error, GPOConfig) {}
func (NopListener) OnReadID(*Driver, error, byte) {}

// EventListener adapts a single function taking an Event to the Listener interface
type EventListener func(d *Driver, ev Event)

func (f EventListener) OnSessionOpen(d *Driver, err error) {
	f(d, Event{Kind: OpSession, Err: err})
}

func (f EventListener) OnDeselect(d *Driver, err error) {
	f(d, Event{Kind: OpDeselect, Err: err})
}

func (f EventListener) OnSelectedApplication(d *Driver, err error) {
	f(d, Event{Kind: OpSelectApplication, Err: err})
}

func (f EventListener) OnSelectedCCFile(d *Driver, err error) {
	f(d, Event{Kind: OpSelectCCFile, Err: err})
}

func (f EventListener) OnSelectedSystemFile(d *Driver, err error) {
	f(d, Event{Kind: OpSelectSystemFile, Err: err})
}

func (f EventListener) OnSelectedNDEFFile(d *Driver, err error) {
	f(d, Event{Kind: OpSelectNDEFFile, Err: err})
}

func (f EventListener) OnReadByte(d *Driver, err error, offset uint16, data []byte) {
	f(d, Event{Kind: OpReadBinary, Err: err, Offset: offset, Data: data})
}

func (f EventListener) OnUpdatedBinary(d *Driver, err error, offset uint16, data []byte) {
	f(d, Event{Kind: OpUpdateBinary, Err: err, Offset: offset, Data: data})
}

func (f EventListener) OnVerified(d *Driver, err error, pwd PasswordType, password []byte) {
	f(d, Event{Kind: OpVerify, Err: err, Password: pwd, Data: password})
}

func (f EventListener) OnChangeReferenceData(d *Driver, err error, pwd PasswordType, password []byte) {
	f(d, Event{Kind: OpChangeReferenceData, Err: err, Password: pwd, Data: password})
}

func (f EventListener) OnEnableVerificationRequirement(d *Driver, err error, pwd PasswordType) {
	f(d, Event{Kind: OpEnableVerificationRequirement, Err: err, Password: pwd})
}

func (f EventListener) OnDisableVerificationRequirement(d *Driver, err error, pwd PasswordType) {
	f(d, Event{Kind: OpDisableVerificationRequirement, Err: err, Password: pwd})
}

func (f EventListener) OnEnablePermanentState(d *Driver, err error, pwd PasswordType) {
	f(d, Event{Kind: OpEnablePermanentState, Err: err, Password: pwd})
}

func (f EventListener) OnDisablePermanentState(d *Driver, err error, pwd PasswordType) {
	f(d, Event{Kind: OpDisablePermanentState, Err: err, Password: pwd})
}

func (f EventListener) OnManageI2CGPO(d *Driver, err error, cfg GPOConfig) {
	f(d, Event{Kind: OpManageI2CGPO, Err: err, GPO: cfg})
}

func (f EventListener) OnManageRFGPO(d *Driver, err error, cfg GPOConfig) {
	f(d, Event{Kind: OpManageRFGPO, Err: err, GPO: cfg})
}

func (f EventListener) OnReadID(d *Driver, err error, id byte) {
	f(d, Event{Kind: OpReadID, Err: err, ID: id})
}

// dispatch delivers ev to the matching Listener method
func dispatch(l Listener, d *Driver, ev Event) {
	switch ev.Kind {
	case OpSession:
		l.OnSessionOpen(d, ev.Err)
	case OpDeselect:
		l.OnDeselect(d, ev.Err)
	case OpSelectApplication:
		l.OnSelectedApplication(d, ev.Err)
	case OpSelectCCFile:
		l.OnSelectedCCFile(d, ev.Err)
	case OpSelectSystemFile:
		l.OnSelectedSystemFile(d, ev.Err)
	case OpSelectNDEFFile:
		l.OnSelectedNDEFFile(d, ev.Err)
	case OpReadBinary:
		l.OnReadByte(d, ev.Err, ev.Offset, ev.Data)
	case OpUpdateBinary:
		l.OnUpdatedBinary(d, ev.Err, ev.Offset, ev.Data)
	case OpVerify:
		l.OnVerified(d, ev.Err, ev.Password, ev.Data)
	case OpChangeReferenceData:
		l.OnChangeReferenceData(d, ev.Err, ev.Password, ev.Data)
	case OpEnableVerificationRequirement:
		l.OnEnableVerificationRequirement(d, ev.Err, ev.Password)
	case OpDisableVerificationRequirement:
		l.OnDisableVerificationRequirement(d, ev.Err, ev.Password)
	case OpEnablePermanentState:
		l.OnEnablePermanentState(d, ev.Err, ev.Password)
	case OpDisablePermanentState:
		l.OnDisablePermanentState(d, ev.Err, ev.Password)
	case OpManageI2CGPO:
		l.OnManageI2CGPO(d, ev.Err, ev.GPO)
	case OpManageRFGPO:
		l.OnManageRFGPO(d, ev.Err, ev.GPO)
	case OpReadID:
		l.OnReadID(d, ev.Err, ev.ID)
	case OpNone:
	default:
		debugf("dropping event for unknown operation %d", int(ev.Kind))
	}
}
