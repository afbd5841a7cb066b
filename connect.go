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
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-m24sr/detection"
)

// TransportFactory is a function type for creating transports
type TransportFactory func(path string) (Transport, error)

// TransportFromDeviceFactory is a function type for creating transports from detected devices
type TransportFromDeviceFactory func(device detection.DeviceInfo) (Transport, error)

// ConnectOption represents a functional option for Connect
type ConnectOption func(*connectConfig) error

// connectConfig holds configuration options for Connect
type connectConfig struct {
	transportFactory       TransportFactory
	transportDeviceFactory TransportFromDeviceFactory
	driverOptions          []Option
	detection              detection.Options
	timeout                time.Duration
	autoDetect             bool
	skipInit               bool
}

// WithAutoDetection enables automatic device detection instead of using a specific path
func WithAutoDetection() ConnectOption {
	return func(c *connectConfig) error {
		c.autoDetect = true
		return nil
	}
}

// WithDetectionMode sets how intrusive auto-detection may be
func WithDetectionMode(mode detection.Mode) ConnectOption {
	return func(c *connectConfig) error {
		c.detection.Mode = mode
		return nil
	}
}

// WithIgnorePaths excludes device paths from auto-detection
func WithIgnorePaths(paths ...string) ConnectOption {
	return func(c *connectConfig) error {
		c.detection.IgnorePaths = append(c.detection.IgnorePaths, paths...)
		return nil
	}
}

// WithDriverOptions adds driver-level options
func WithDriverOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.driverOptions = append(c.driverOptions, opts...)
		return nil
	}
}

// WithConnectTimeout sets the transport timeout of the connected driver
func WithConnectTimeout(timeout time.Duration) ConnectOption {
	return func(c *connectConfig) error {
		if timeout < 0 {
			return fmt.Errorf("connect timeout: %w", ErrInvalidParameter)
		}
		c.timeout = timeout
		return nil
	}
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithTransportFromDeviceFactory sets the transport from device factory function
func WithTransportFromDeviceFactory(factory TransportFromDeviceFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportDeviceFactory = factory
		return nil
	}
}

// WithoutInit returns the driver without running Init
func WithoutInit() ConnectOption {
	return func(c *connectConfig) error {
		c.skipInit = true
		return nil
	}
}

// Connect creates a driver for the controller at path, or for the best
// auto-detected controller, and initializes it.
//
// Example usage:
//
//	// Connect to a specific bus
//	d, err := m24sr.Connect("/dev/i2c-1", m24sr.WithTransportFactory(factory))
//
//	// Auto-detect a controller
//	d, err := m24sr.Connect("", m24sr.WithAutoDetection(),
//		m24sr.WithTransportFromDeviceFactory(deviceFactory))
func Connect(path string, opts ...ConnectOption) (*Driver, error) {
	config, err := applyConnectOptions(opts)
	if err != nil {
		return nil, err
	}

	transport, err := createTransport(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	d, err := setupDriver(transport, config)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	return d, nil
}

func applyConnectOptions(opts []ConnectOption) (*connectConfig, error) {
	config := &connectConfig{detection: detection.DefaultOptions()}
	config.detection.Mode = detection.Safe

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply connect option: %w", err)
		}
	}
	return config, nil
}

func createTransport(path string, config *connectConfig) (Transport, error) {
	if config.autoDetect || path == "" {
		return createAutoDetectedTransport(&config.detection, config.transportDeviceFactory)
	}
	return createManualTransport(path, config.transportFactory)
}

func setupDriver(transport Transport, config *connectConfig) (*Driver, error) {
	d, err := New(transport, config.driverOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if config.timeout > 0 {
		if err := d.SetTimeout(config.timeout); err != nil {
			return nil, err
		}
	}

	if config.skipInit {
		return d, nil
	}
	if err := d.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize driver: %w", err)
	}
	return d, nil
}

func createManualTransport(path string, factory TransportFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport factory not provided")
	}

	transport, err := factory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
	}
	return transport, nil
}

func createAutoDetectedTransport(opts *detection.Options, factory TransportFromDeviceFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport device factory not provided")
	}

	devices, err := detection.DetectAll(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect devices: %w", err)
	}

	device := devices[0]
	debugf("connecting to detected %s", device)
	return factory(device)
}
