//go:build linux

package i2c

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/go-m24sr/detection"
	"golang.org/x/sys/unix"
)

const (
	// I2CSlave is the ioctl command to set slave address
	I2CSlave = 0x0703

	// I2CFuncs is the ioctl command to get adapter functionality
	I2CFuncs = 0x0705

	// I2CFuncI2C indicates plain I2C support
	I2CFuncI2C = 0x00000001
)

// fdConn talks to one address through an i2c-dev file descriptor
type fdConn struct {
	fd int
}

func (c fdConn) quickWrite() error {
	_, err := unix.Write(c.fd, nil)
	return err
}

func (c fdConn) write(b []byte) error {
	n, err := unix.Write(c.fd, b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return unix.EIO
	}
	return nil
}

func (c fdConn) read(b []byte) error {
	n, err := unix.Read(c.fd, b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return unix.EIO
	}
	return nil
}

// detectLinux searches for M24SR controllers on Linux I2C buses
func detectLinux(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	buses, err := findI2CBuses()
	if err != nil {
		return nil, err
	}
	if len(buses) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	devices := make([]detection.DeviceInfo, 0, len(buses))
	for _, bus := range buses {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		path := fmt.Sprintf("%s:0x%02X", bus, DefaultM24SRAddress)
		if detection.IsPathIgnored(path, opts.IgnorePaths) {
			continue
		}

		info, ok := probeBus(ctx, bus, opts.Mode)
		if ok {
			devices = append(devices, info)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func probeBus(ctx context.Context, busPath string, mode detection.Mode) (detection.DeviceInfo, bool) {
	if mode == detection.Passive {
		confidence, metadata, _ := probe(ctx, nil, mode)
		return deviceInfo(busPath, DefaultM24SRAddress, confidence, metadata), true
	}

	fd, err := unix.Open(busPath, unix.O_RDWR, 0)
	if err != nil {
		return detection.DeviceInfo{}, false
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.IoctlSetInt(fd, I2CSlave, DefaultM24SRAddress); err != nil {
		return detection.DeviceInfo{}, false
	}

	confidence, metadata, ok := probe(ctx, fdConn{fd: fd}, mode)
	if !ok {
		return detection.DeviceInfo{}, false
	}
	return deviceInfo(busPath, DefaultM24SRAddress, confidence, metadata), true
}

// findI2CBuses lists the i2c-dev nodes that support plain I2C transfers
func findI2CBuses() ([]string, error) {
	matches, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C devices: %w", err)
	}

	buses := make([]string, 0, len(matches))
	for _, path := range matches {
		var busNum int
		if _, err := fmt.Sscanf(filepath.Base(path), "i2c-%d", &busNum); err != nil {
			continue
		}

		fd, err := unix.Open(path, unix.O_RDWR, 0)
		if err != nil {
			continue
		}
		// the kernel writes an unsigned long
		funcs, err := unix.IoctlGetInt(fd, I2CFuncs)
		_ = unix.Close(fd)
		if err != nil || uint64(funcs)&I2CFuncI2C == 0 {
			continue
		}

		buses = append(buses, path)
	}

	return buses, nil
}
