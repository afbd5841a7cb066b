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
	"encoding/binary"
	"fmt"

	"github.com/ZaparooProject/go-m24sr/internal/frame"
)

// OpenSession asks the controller for the I2C session. The command carries
// no CRC and is always completed by polling, whatever the mode.
func (d *Driver) OpenSession() error {
	return d.session(cmdOpenSession)
}

// CloseSession kills the current session, including one held by the RF side.
// Listeners are notified through OnSessionOpen.
func (d *Driver) CloseSession() error {
	return d.session(cmdCloseSession)
}

func (d *Driver) session(code byte) error {
	op := &operation{kind: OpSession}
	if err := d.begin(op); err != nil {
		return err
	}

	d.buf[0] = code
	debugf("%s TX: %02X", op.kind, code)
	if err := d.transport.Send(d.buf[:1]); err != nil {
		return d.reject(op, fmt.Errorf("%s: %w", op.kind, err))
	}

	// GPO does not signal after a session command, only polling works
	d.state = StateAwaitingTransmitAck
	var err error
	if perr := d.transport.Poll(); perr != nil {
		err = fmt.Errorf("%s: %w", op.kind, perr)
	}
	return d.finish(op.event(err))
}

// Deselect sends the supervisory deselect frame, which releases the session
func (d *Driver) Deselect() error {
	op := &operation{kind: OpDeselect}
	if err := d.begin(op); err != nil {
		return err
	}
	frm := append(d.buf[:0], deselectRequest...)
	return d.transmit(op, frm)
}

// SelectApplication selects the NDEF tag application
func (d *Driver) SelectApplication() error {
	cmd := frame.Command{
		Class: claDefault,
		INS:   insSelectFile,
		Lc:    byte(len(ndefApplicationID)),
		Data:  ndefApplicationID,
	}
	cmd.SetParams(p1p2SelectApplication)
	return d.send(&operation{kind: OpSelectApplication}, frame.MaskSelectApplication, &cmd)
}

// SelectCCFile selects the capability container file
func (d *Driver) SelectCCFile() error {
	return d.selectFile(OpSelectCCFile, frame.MaskSelectCCFile, CCFileID)
}

// SelectSystemFile selects the M24SR system file
func (d *Driver) SelectSystemFile() error {
	return d.selectFile(OpSelectSystemFile, frame.MaskSelectCCFile, SystemFileID)
}

// SelectNDEFFile selects the NDEF file with the given identifier
func (d *Driver) SelectNDEFFile(fileID uint16) error {
	return d.selectFile(OpSelectNDEFFile, frame.MaskSelectNDEFFile, fileID)
}

func (d *Driver) selectFile(kind OperationKind, mask frame.FieldMask, fileID uint16) error {
	var id [2]byte
	binary.BigEndian.PutUint16(id[:], fileID)

	cmd := frame.Command{
		Class: claDefault,
		INS:   insSelectFile,
		Lc:    byte(len(id)),
		Data:  id[:],
	}
	cmd.SetParams(p1p2SelectFile)
	return d.send(&operation{kind: kind}, mask, &cmd)
}
