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

// GPOConfig is the function assigned to a GPO output in the system file
type GPOConfig byte

const (
	// GPOHighImpedance leaves the output floating
	GPOHighImpedance GPOConfig = iota
	// GPOSessionOpened drives the output while a session is open
	GPOSessionOpened
	// GPOWIP signals a write in progress
	GPOWIP
	// GPOI2CAnswerReady signals that a reply is ready to be read
	GPOI2CAnswerReady
	// GPOInterrupt lets SendInterrupt pulse the output
	GPOInterrupt
	// GPOStateControl lets StateControl drive the output level
	GPOStateControl
)

func (c GPOConfig) String() string {
	switch c {
	case GPOHighImpedance:
		return "high impedance"
	case GPOSessionOpened:
		return "session opened"
	case GPOWIP:
		return "write in progress"
	case GPOI2CAnswerReady:
		return "I2C answer ready"
	case GPOInterrupt:
		return "interrupt"
	case GPOStateControl:
		return "state control"
	default:
		return fmt.Sprintf("GPOConfig(%d)", byte(c))
	}
}

func (c GPOConfig) valid() bool {
	return c <= GPOStateControl
}

type chainKind int

const (
	chainManageGPO chainKind = iota + 1
	chainReadID
)

// chain runs a multi-step sequence. While it is active every operation
// result is fed to advance instead of the listener.
type chain struct {
	err     error
	kind    chainKind
	i2c     bool
	config  GPOConfig
	value   [1]byte
	done    bool
	issuing bool
}

// apply merges the configuration into the system file GPO byte. The I2C
// domain owns the low nibble, the RF domain the high one.
func (c *chain) apply(b byte) byte {
	if c.i2c {
		return (b & 0xF0) | byte(c.config)
	}
	return (b & 0x0F) | byte(c.config)<<4
}

func (c *chain) event() Event {
	switch {
	case c.kind == chainReadID:
		return Event{Kind: OpReadID, Err: c.err, ID: c.value[0]}
	case c.i2c:
		return Event{Kind: OpManageI2CGPO, Err: c.err, GPO: c.config}
	default:
		return Event{Kind: OpManageRFGPO, Err: c.err, GPO: c.config}
	}
}

// ManageI2CGPO assigns cfg to the GPO output seen from the I2C side. It
// selects the application and the system file, reads the GPO byte, presents
// the I2C password and writes the merged byte back. Selecting
// GPOI2CAnswerReady switches the driver to ModeAsync, any other value to
// ModeSync.
func (d *Driver) ManageI2CGPO(cfg GPOConfig) error {
	if !d.gpoConnected() {
		return ErrPinNotConnected
	}
	return d.manageGPO(true, cfg)
}

// ManageRFGPO assigns cfg to the GPO output seen from the RF side
func (d *Driver) ManageRFGPO(cfg GPOConfig) error {
	if !d.rfConnected() {
		return ErrPinNotConnected
	}
	return d.manageGPO(false, cfg)
}

func (d *Driver) manageGPO(i2c bool, cfg GPOConfig) error {
	c := &chain{kind: chainManageGPO, i2c: i2c, config: cfg}
	if !cfg.valid() {
		c.err = parameterError(c.event().Kind.String(), "unknown GPO configuration %d", byte(cfg))
		dispatch(d.config.Listener, d, c.event())
		return c.err
	}
	return d.startChain(c)
}

// ReadID reads the IC reference byte from the system file. In async mode
// the returned byte is zero and the value arrives through OnReadID.
func (d *Driver) ReadID() (byte, error) {
	c := &chain{kind: chainReadID}
	err := d.startChain(c)
	return c.value[0], err
}

func (d *Driver) startChain(c *chain) error {
	if d.chain != nil || d.pending != nil {
		c.err = fmt.Errorf("%s: %w", c.event().Kind, ErrOperationPending)
		dispatch(d.config.Listener, d, c.event())
		return c.err
	}

	d.chain = c
	c.issuing = true
	err := d.SelectApplication()
	c.issuing = false
	if c.done {
		return c.err
	}
	return err
}

// advance issues the next step of the active chain
func (d *Driver) advance(ev Event) {
	c := d.chain
	if ev.Err != nil {
		d.endChain(ev.Err)
		return
	}
	c.issuing = true
	defer func() { c.issuing = false }()

	switch ev.Kind {
	case OpSelectApplication:
		_ = d.SelectSystemFile()
	case OpSelectSystemFile:
		offset := systemFileGPOOffset
		if c.kind == chainReadID {
			offset = systemFileICRefOffset
		}
		_ = d.ReadBinary(offset, c.value[:])
	case OpReadBinary:
		if c.kind == chainReadID {
			d.endChain(nil)
			return
		}
		_ = d.Verify(PasswordI2C, d.config.I2CPassword[:])
	case OpVerify:
		c.value[0] = c.apply(c.value[0])
		_ = d.UpdateBinary(systemFileGPOOffset, c.value[:])
	case OpUpdateBinary:
		if c.i2c {
			if c.config == GPOI2CAnswerReady {
				d.config.Mode = ModeAsync
			} else {
				d.config.Mode = ModeSync
			}
		}
		d.endChain(nil)
	default:
		d.endChain(fmt.Errorf("unexpected %s result in sequence", ev.Kind))
	}
}

func (d *Driver) endChain(err error) {
	c := d.chain
	d.chain = nil
	c.err = err
	c.done = true
	dispatch(d.config.Listener, d, c.event())
}

// SendInterrupt configures the I2C GPO as interrupt output and pulses it.
// It always completes before returning and does not notify the listener.
func (d *Driver) SendInterrupt() error {
	return d.runBlocking(func() error {
		if err := d.ManageI2CGPO(GPOInterrupt); err != nil {
			return err
		}

		cmd := frame.Command{Class: claST, INS: insInterrupt}
		cmd.SetParams(p1p2SendInterrupt)
		return d.exchange("send interrupt", frame.MaskSendInterrupt, &cmd)
	})
}

// StateControl configures the I2C GPO for state control and drives it low
// when reset is true, or releases it to high impedance otherwise. Like
// SendInterrupt it always blocks and does not notify the listener.
func (d *Driver) StateControl(reset bool) error {
	return d.runBlocking(func() error {
		if err := d.ManageI2CGPO(GPOStateControl); err != nil {
			return err
		}

		var level [1]byte
		if reset {
			level[0] = 1
		}
		cmd := frame.Command{Class: claST, INS: insInterrupt, Lc: 1, Data: level[:]}
		cmd.SetParams(p1p2GPOState)
		return d.exchange("state control", frame.MaskGPOState, &cmd)
	})
}

// exchange runs send, poll, receive and status check with no listener involved
func (d *Driver) exchange(op string, mask frame.FieldMask, cmd *frame.Command) error {
	if d.pending != nil {
		return fmt.Errorf("%s: %w", op, ErrOperationPending)
	}

	frm := d.builder.Build(d.buf[:0], mask, cmd, d.config.DeviceID)
	debugf("%s TX: % X", op, frm)
	if err := d.transport.Send(frm); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	d.state = StateAwaitingTransmitAck
	defer func() { d.state = StateIdle }()
	if err := d.transport.Poll(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	d.state = StateAwaitingReply
	resp := d.buf[:frame.StatusResponseLength]
	if err := d.transport.Receive(resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	debugf("%s RX: % X", op, resp)
	return checkStatus(op, resp)
}

// RFConfig enables or disables the RF interface through the RF disable line
func (d *Driver) RFConfig(enable bool) error {
	if !d.rfConnected() {
		return ErrPinNotConnected
	}
	// the line is active high
	if err := d.config.RFDisable.Set(!enable); err != nil {
		return fmt.Errorf("rf config: %w", err)
	}
	return nil
}
