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

// OperationState is the position of the driver in the request/reply cycle
type OperationState int

const (
	// StateIdle means no request is outstanding
	StateIdle OperationState = iota
	// StateAwaitingTransmitAck means a request was sent and the controller
	// has not signalled readiness yet
	StateAwaitingTransmitAck
	// StateAwaitingReply means the driver is reading the reply
	StateAwaitingReply
)

func (s OperationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingTransmitAck:
		return "awaiting transmit ack"
	case StateAwaitingReply:
		return "awaiting reply"
	default:
		return "unknown"
	}
}

// operation is the record of the single outstanding request
type operation struct {
	data     []byte
	offset   uint16
	kind     OperationKind
	password PasswordType
}

func (op *operation) event(err error) Event {
	return Event{
		Kind:     op.kind,
		Err:      err,
		Offset:   op.offset,
		Data:     op.data,
		Password: op.password,
	}
}

// notify routes ev to the active chain, or to the listener when no chain runs
func (d *Driver) notify(ev Event) {
	if d.chain != nil {
		d.advance(ev)
		return
	}
	dispatch(d.config.Listener, d, ev)
}

func (d *Driver) isBlocking() bool {
	return d.blocking > 0 || d.config.Mode == ModeSync
}

// runBlocking runs fn with every request completing before it returns,
// whatever the configured mode
func (d *Driver) runBlocking(fn func() error) error {
	d.blocking++
	defer func() { d.blocking-- }()
	return fn()
}

// reject reports a request refused before anything was sent. Only the
// steps a sequence issues itself are reported to that sequence, any other
// refusal goes straight to the listener.
func (d *Driver) reject(op *operation, err error) error {
	debugf("%s rejected: %v", op.kind, err)
	if d.chain != nil && !d.chain.issuing {
		dispatch(d.config.Listener, d, op.event(err))
		return err
	}
	d.notify(op.event(err))
	return err
}

// begin checks that no other request is outstanding
func (d *Driver) begin(op *operation) error {
	if d.pending != nil {
		return d.reject(op, fmt.Errorf("%s: %w (%s outstanding)", op.kind, ErrOperationPending, d.pending.kind))
	}
	return nil
}

// send builds cmd into the scratch buffer and transmits it
func (d *Driver) send(op *operation, mask frame.FieldMask, cmd *frame.Command) error {
	if err := d.begin(op); err != nil {
		return err
	}
	frm := d.builder.Build(d.buf[:0], mask, cmd, d.config.DeviceID)
	return d.transmit(op, frm)
}

// transmit writes frm and records op as outstanding. In blocking mode the
// controller is polled and the reply decoded before it returns.
func (d *Driver) transmit(op *operation, frm []byte) error {
	debugf("%s TX: % X", op.kind, frm)
	if err := d.transport.Send(frm); err != nil {
		return d.reject(op, fmt.Errorf("%s: %w", op.kind, err))
	}

	d.pending = op
	d.state = StateAwaitingTransmitAck
	if !d.isBlocking() {
		return nil
	}

	if err := d.transport.Poll(); err != nil {
		d.pending = nil
		d.state = StateIdle
		err = fmt.Errorf("%s: %w", op.kind, err)
		d.notify(op.event(err))
		return err
	}
	return d.complete()
}

// ManageEvent resumes the outstanding operation once the controller has
// signalled readiness. It does nothing when no operation is outstanding.
func (d *Driver) ManageEvent() error {
	if d.pending == nil {
		return nil
	}
	return d.complete()
}

// complete reads and decodes the reply of the outstanding operation
func (d *Driver) complete() error {
	op := d.pending
	d.pending = nil
	d.state = StateAwaitingReply

	switch op.kind {
	case OpDeselect:
		return d.finish(op.event(d.receiveDeselect()))
	case OpReadBinary:
		return d.finish(op.event(d.receiveRead(op)))
	case OpUpdateBinary:
		return d.receiveUpdate(op)
	default:
		return d.finish(op.event(d.receiveStatus(op.kind)))
	}
}

// finish returns the driver to idle before notifying, so a listener may
// issue its next request from the callback
func (d *Driver) finish(ev Event) error {
	d.state = StateIdle
	d.notify(ev)
	return ev.Err
}

func (d *Driver) receiveDeselect() error {
	resp := d.buf[:frame.DeselectLength]
	if err := d.transport.Receive(resp); err != nil {
		return fmt.Errorf("%s: %w", OpDeselect, err)
	}
	debugf("%s RX: % X", OpDeselect, resp)
	return nil
}

func (d *Driver) receiveStatus(kind OperationKind) error {
	resp := d.buf[:frame.StatusResponseLength]
	if err := d.transport.Receive(resp); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	debugf("%s RX: % X", kind, resp)
	return checkStatus(kind.String(), resp)
}

// receiveRead reads data plus framing and copies the payload into op.data
// only when the reply validates
func (d *Driver) receiveRead(op *operation) error {
	n := len(op.data) + frame.StatusResponseLength
	resp := d.buf[:n]
	if err := d.transport.Receive(resp); err != nil {
		return fmt.Errorf("%s: %w", op.kind, err)
	}
	debugf("%s RX: % X", op.kind, resp)
	if err := checkStatus(op.kind.String(), resp); err != nil {
		return err
	}
	copy(op.data, resp[1:1+len(op.data)])
	return nil
}

// receiveUpdate handles the update reply. A timing extension request is
// answered with the same multiplier and the update stays outstanding.
func (d *Driver) receiveUpdate(op *operation) error {
	var resp [frame.StatusResponseLength]byte
	if err := d.transport.Receive(resp[:]); err != nil {
		return d.finish(op.event(fmt.Errorf("%s: %w", op.kind, err)))
	}
	debugf("%s RX: % X", op.kind, resp[:])

	if !frame.IsSBlock(resp[:]) {
		return d.finish(op.event(checkStatus(op.kind.String(), resp[:])))
	}

	if _, ok := frame.CheckResidue(resp[:], frame.WTXRequestLength); !ok {
		debugln("timing extension request failed CRC check, answering anyway")
	}
	d.state = StateIdle
	return d.sendWTXExtension(op, resp[1])
}

// sendWTXExtension answers a timing extension request and keeps op outstanding
func (d *Driver) sendWTXExtension(op *operation, wtxm byte) error {
	frm := frame.AppendWTXResponse(d.buf[:0], wtxm)
	return d.transmit(op, frm)
}

// checkStatus validates the CRC trailer of a reply and maps its status word
func checkStatus(op string, resp []byte) error {
	sw, ok := frame.CheckResidue(resp, len(resp))
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrCRC)
	}
	return statusError(op, StatusWord(sw))
}
