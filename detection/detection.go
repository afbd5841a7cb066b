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

// Package detection discovers M24SR controllers attached to the host.
// Transport specific detectors register themselves on import.
package detection

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNoDevicesFound is returned when no controller was found
	ErrNoDevicesFound = errors.New("no M24SR devices found")
	// ErrUnsupportedPlatform is returned when a detector cannot run on this OS
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
	// ErrDetectionTimeout is returned when detection ran out of time
	ErrDetectionTimeout = errors.New("detection timed out")
)

// Mode controls how intrusive detection is allowed to be
type Mode int

const (
	// Passive lists candidate locations without touching the bus
	Passive Mode = iota
	// Safe addresses the controller without sending any command
	Safe
	// Active opens and releases an I2C session to confirm the controller.
	// It kills any session held by another host.
	Active
)

func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Safe:
		return "safe"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Confidence rates how sure a detector is about a device
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// DeviceInfo describes a detected controller
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

// String returns a human readable summary
func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s %s (%s confidence)", d.Transport, d.Path, d.Confidence)
}

// Options configures detection
type Options struct {
	// IgnorePaths lists device paths to skip, compared after cleaning and case folding
	IgnorePaths []string
	Timeout     time.Duration
	Mode        Mode
}

// DefaultOptions returns default detection options
func DefaultOptions() Options {
	return Options{
		Mode:    Passive,
		Timeout: 5 * time.Second,
	}
}

// Detector finds controllers on one kind of transport
type Detector interface {
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
	Transport() string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Detector)
)

// RegisterDetector makes d available to DetectAll. A later registration
// for the same transport replaces the earlier one.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Detectors returns the registered detectors sorted by transport name
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Detector, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Transport() < out[j].Transport() })
	return out
}

// DetectAll runs every registered detector and returns the devices found,
// best confidence first
func DetectAll(opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return DetectAllContext(ctx, opts)
}

// DetectAllContext is DetectAll bounded by ctx
func DetectAllContext(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	var devices []DeviceInfo

	for _, d := range Detectors() {
		found, err := d.Detect(ctx, opts)
		if err != nil {
			if errors.Is(err, ErrDetectionTimeout) {
				return sortByConfidence(devices), err
			}
			// A failing or unsupported detector does not hide the others
			continue
		}
		for _, dev := range found {
			if !IsPathIgnored(dev.Path, opts.IgnorePaths) {
				devices = append(devices, dev)
			}
		}
	}

	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	return sortByConfidence(devices), nil
}

func sortByConfidence(devices []DeviceInfo) []DeviceInfo {
	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})
	return devices
}

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)

	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}
		if devicePath == ignorePath || normalizedDevice == normalizedPath(ignorePath) {
			return true
		}
	}
	return false
}

// normalizedPath cleans relative components and folds case
func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
