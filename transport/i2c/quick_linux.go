//go:build linux

package i2c

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl that binds a file descriptor to an address
const i2cSlave = 0x0703

// devPath maps the bus names periph accepts ("1", "I2C1", "/dev/i2c-1") to
// the i2c-dev node
func devPath(busName string) (string, error) {
	name := strings.TrimPrefix(busName, "I2C")
	switch {
	case strings.HasPrefix(busName, "/dev/"):
		return busName, nil
	case name != "" && strings.Trim(name, "0123456789") == "":
		return "/dev/i2c-" + name, nil
	default:
		return "", fmt.Errorf("no i2c-dev node for bus %q", busName)
	}
}

// openQuickWriter opens a second descriptor on the bus node, bound to
// addr, so that Poll can send the address without any data byte
func openQuickWriter(busName string, addr uint16) (quick, closeFn func() error, err error) {
	path, err := devPath(busName)
	if err != nil {
		return nil, nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		_ = unix.Close(fd)
		return nil, nil, fmt.Errorf("failed to bind %s to 0x%02X: %w", path, addr, err)
	}

	quick = func() error {
		_, err := unix.Write(fd, nil)
		return err
	}
	closeFn = func() error {
		return unix.Close(fd)
	}
	return quick, closeFn, nil
}
