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

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	m24sr "github.com/ZaparooProject/go-m24sr"
	"github.com/ZaparooProject/go-m24sr/detection"
	// Import the detector to register it
	_ "github.com/ZaparooProject/go-m24sr/detection/i2c"
	"github.com/ZaparooProject/go-m24sr/pins"
	"github.com/ZaparooProject/go-m24sr/transport/i2c"
)

type config struct {
	devicePath *string
	gpoPin     *string
	rfPin      *string
	detectMode *string
	writeHex   *string
	password   *string
	timeout    *time.Duration
	offset     *uint
	length     *uint
	async      *bool
	readID     *bool
	disableRF  *bool
	interrupt  *bool
	debug      *bool
}

func parseFlags() *config {
	cfg := &config{
		devicePath: flag.String("device", "",
			"I2C bus (e.g., /dev/i2c-1). Leave empty for auto-detection."),
		gpoPin:     flag.String("gpo", "", "Host GPIO wired to the GPO output (e.g., GPIO17)"),
		rfPin:      flag.String("rf", "", "Host GPIO wired to the RF disable input"),
		detectMode: flag.String("detect", "safe", "Auto-detection mode: passive, safe or active"),
		writeHex:   flag.String("write", "", "Hex bytes to write to the NDEF file (if not specified, will only read)"),
		password:   flag.String("password", "", "Hex write password presented before -write (16 bytes)"),
		timeout:    flag.Duration("timeout", 5*time.Second, "Overall timeout (default: 5s)"),
		offset:     flag.Uint("offset", 0, "NDEF file offset"),
		length:     flag.Uint("length", 32, "Number of bytes to read"),
		async:      flag.Bool("async", false, "Wait for the GPO answer ready signal instead of polling (needs -gpo)"),
		readID:     flag.Bool("id", false, "Print the IC reference"),
		disableRF:  flag.Bool("disable-rf", false, "Keep the RF side off while the tool runs (needs -rf)"),
		interrupt:  flag.Bool("interrupt", false, "Pulse the GPO output once (needs -gpo)"),
		debug:      flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()

	if *cfg.debug {
		m24sr.SetDebugEnabled(true)
	}
	return cfg
}

func parseDetectionMode(s string) (detection.Mode, error) {
	switch strings.ToLower(s) {
	case "passive":
		return detection.Passive, nil
	case "safe":
		return detection.Safe, nil
	case "active":
		return detection.Active, nil
	default:
		return detection.Passive, fmt.Errorf("unknown detection mode: %s", s)
	}
}

// newTransport creates a new transport from a bus path.
func newTransport(path string) (m24sr.Transport, error) {
	if path == "" {
		return nil, errors.New("empty device path")
	}
	transport, err := i2c.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create I2C transport: %w", err)
	}
	return transport, nil
}

// newTransportFromDevice creates a new transport from a detected device.
func newTransportFromDevice(device detection.DeviceInfo) (m24sr.Transport, error) {
	if !strings.EqualFold(device.Transport, "i2c") {
		return nil, fmt.Errorf("unsupported transport type: %s", device.Transport)
	}
	return newTransport(device.Path)
}

type lines struct {
	gpo *pins.GPO
	rf  *pins.RFDisable
}

func openLines(cfg *config) (*lines, error) {
	l := &lines{}
	if *cfg.gpoPin != "" {
		gpo, err := pins.OpenGPO(*cfg.gpoPin)
		if err != nil {
			return nil, err
		}
		l.gpo = gpo
	}
	if *cfg.rfPin != "" {
		rf, err := pins.OpenRFDisable(*cfg.rfPin)
		if err != nil {
			return nil, err
		}
		l.rf = rf
	}
	return l, nil
}

func buildConnectOptions(cfg *config, l *lines) ([]m24sr.ConnectOption, error) {
	var driverOpts []m24sr.Option
	if l.gpo != nil {
		driverOpts = append(driverOpts, m24sr.WithGPOPin(l.gpo))
	}
	if l.rf != nil {
		driverOpts = append(driverOpts, m24sr.WithRFDisablePin(l.rf))
	}

	connectOpts := []m24sr.ConnectOption{m24sr.WithDriverOptions(driverOpts...)}
	if *cfg.devicePath == "" {
		mode, err := parseDetectionMode(*cfg.detectMode)
		if err != nil {
			return nil, err
		}
		connectOpts = append(connectOpts,
			m24sr.WithAutoDetection(),
			m24sr.WithDetectionMode(mode),
			m24sr.WithTransportFromDeviceFactory(newTransportFromDevice))
		_, _ = fmt.Println("Auto-detecting M24SR devices...")
	} else {
		connectOpts = append(connectOpts, m24sr.WithTransportFactory(newTransport))
		_, _ = fmt.Printf("Opening bus: %s\n", *cfg.devicePath)
	}
	return connectOpts, nil
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	data, err := hex.DecodeString(strings.ReplaceAll(*cfg.writeHex, " ", ""))
	if err != nil {
		return fmt.Errorf("invalid -write value: %w", err)
	}
	password, err := hex.DecodeString(*cfg.password)
	if err != nil {
		return fmt.Errorf("invalid -password value: %w", err)
	}
	if len(password) > 0 && len(password) != m24sr.PasswordLength {
		return fmt.Errorf("-password must be %d bytes", m24sr.PasswordLength)
	}
	if (*cfg.async || *cfg.interrupt) && *cfg.gpoPin == "" {
		return errors.New("-async and -interrupt need -gpo")
	}

	l, err := openLines(cfg)
	if err != nil {
		return err
	}
	connectOpts, err := buildConnectOptions(cfg, l)
	if err != nil {
		return err
	}

	d, err := m24sr.Connect(*cfg.devicePath, connectOpts...)
	if err != nil {
		return fmt.Errorf("failed to connect to M24SR device: %w", err)
	}
	defer func() { _ = d.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *cfg.timeout)
	defer cancel()

	t := newTool(d, l.gpo)
	if err := t.start(ctx); err != nil {
		return err
	}
	defer func() { _ = t.stop() }()

	if *cfg.disableRF {
		if err := t.call(ctx, func(d *m24sr.Driver) error { return d.RFConfig(false) }); err != nil {
			return fmt.Errorf("failed to disable RF: %w", err)
		}
		defer func() {
			rctx, rcancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer rcancel()
			_ = t.call(rctx, func(d *m24sr.Driver) error { return d.RFConfig(true) })
		}()
	}

	return t.session(ctx, *cfg.async, func() error {
		if *cfg.readID {
			id, err := t.readID(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Printf("IC reference: 0x%02X\n", id)
		}

		if *cfg.interrupt {
			if err := t.call(ctx, (*m24sr.Driver).SendInterrupt); err != nil {
				return fmt.Errorf("interrupt failed: %w", err)
			}
			// the GPO sequence before the pulse still notifies
			t.drain()
			_, _ = fmt.Println("GPO pulsed")
		}

		if err := t.selectNDEF(ctx); err != nil {
			return err
		}

		offset := uint16(*cfg.offset)
		if len(password) > 0 {
			err := t.run(ctx, func(d *m24sr.Driver) error { return d.Verify(m24sr.PasswordWrite, password) })
			if err != nil {
				return fmt.Errorf("password rejected: %w", err)
			}
		}
		if len(data) > 0 {
			if err := t.run(ctx, func(d *m24sr.Driver) error { return d.UpdateBinary(offset, data) }); err != nil {
				return fmt.Errorf("write failed: %w", err)
			}
			_, _ = fmt.Printf("Wrote %d byte(s) at offset 0x%04X\n", len(data), offset)
		}

		buf := make([]byte, *cfg.length)
		if err := t.run(ctx, func(d *m24sr.Driver) error { return d.ReadBinary(offset, buf) }); err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		_, _ = fmt.Print(hex.Dump(buf))
		return nil
	})
}
