//go:build !linux

package i2c

import "errors"

// openQuickWriter is a stub for platforms without i2c-dev
func openQuickWriter(_ string, _ uint16) (quick, closeFn func() error, err error) {
	return nil, nil, errors.New("quick write not supported on this platform")
}
