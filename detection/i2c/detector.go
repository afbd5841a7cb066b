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

// Package i2c detects M24SR controllers on I2C buses
package i2c

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ZaparooProject/go-m24sr/detection"
)

const (
	// DefaultM24SRAddress is the 7-bit M24SR address (0xAC >> 1)
	DefaultM24SRAddress = 0x56

	probeTimeout = 100 * time.Millisecond
)

var (
	openSession     = []byte{0x26}
	deselectRequest = []byte{0xC2, 0xE0, 0xB4}
)

// detector implements the Detector interface for I2C devices
type detector struct{}

// New creates a new I2C detector
func New() detection.Detector {
	return &detector{}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "i2c"
}

// Detect searches for M24SR controllers on I2C buses
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	switch runtime.GOOS {
	case "linux":
		return detectLinux(ctx, opts)
	default:
		return nil, detection.ErrUnsupportedPlatform
	}
}

// conn is an I2C bus handle already bound to the controller address
type conn interface {
	// quickWrite addresses the device with no payload, nil means it acknowledged
	quickWrite() error
	write(b []byte) error
	read(b []byte) error
}

// waitAck repeats quick writes until the controller acknowledges
func waitAck(ctx context.Context, c conn, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if c.quickWrite() == nil {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Millisecond):
		}
	}
}

// probe rates the device behind c according to mode
func probe(ctx context.Context, c conn, mode detection.Mode) (detection.Confidence, map[string]string, bool) {
	metadata := make(map[string]string)
	if mode == detection.Passive {
		return detection.Low, metadata, true
	}

	if c.quickWrite() != nil {
		return detection.Low, metadata, false
	}
	metadata["ack"] = "true"
	if mode == detection.Safe {
		return detection.Medium, metadata, true
	}

	// Active: take the session and hand it back with a deselect, which the
	// controller echoes
	if err := c.write(openSession); err != nil || !waitAck(ctx, c, probeTimeout) {
		return detection.Medium, metadata, true
	}
	if err := c.write(deselectRequest); err != nil || !waitAck(ctx, c, probeTimeout) {
		return detection.Medium, metadata, true
	}
	resp := make([]byte, len(deselectRequest))
	if err := c.read(resp); err != nil {
		return detection.Medium, metadata, true
	}
	metadata["deselect_response"] = fmt.Sprintf("% X", resp)
	if !bytes.Equal(resp, deselectRequest) {
		return detection.Medium, metadata, true
	}
	return detection.High, metadata, true
}

// deviceInfo builds the DeviceInfo for a controller at addr on busPath
func deviceInfo(busPath string, addr uint8, confidence detection.Confidence, metadata map[string]string) detection.DeviceInfo {
	devicePath := fmt.Sprintf("%s:0x%02X", busPath, addr)
	info := detection.DeviceInfo{
		Transport:  "i2c",
		Path:       devicePath,
		Name:       fmt.Sprintf("M24SR on %s address 0x%02X", busPath, addr),
		Confidence: confidence,
		Metadata: map[string]string{
			"bus":     busPath,
			"address": fmt.Sprintf("0x%02X", addr),
		},
	}
	for k, v := range metadata {
		info.Metadata[k] = v
	}
	return info
}
