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
)

// Transport errors
var (
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrNoACK            = errors.New("device did not acknowledge")
	ErrTransportClosed  = errors.New("transport closed")
)

// Protocol errors
var (
	ErrCRC              = errors.New("CRC residue check failed")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrPinNotConnected  = errors.New("pin not connected")
	ErrDataTooLarge     = errors.New("data too large")
	ErrOperationPending = errors.New("operation already outstanding")
)

// ErrorType classifies errors for callers that want to decide on a retry
type ErrorType int

const (
	// ErrorTypePermanent errors will not go away by retrying
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may succeed on a later attempt
	ErrorTypeTransient
	// ErrorTypeTimeout errors are bus timeouts
	ErrorTypeTimeout
)

// String returns the error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypePermanent:
		return "permanent"
	default:
		return "permanent"
	}
}

// TransportError wraps a failure of the underlying bus
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError, deriving Retryable from errType
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a retryable bus timeout error
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewNoACKError creates an error for a device that never acknowledged its address
func NewNoACKError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrNoACK, ErrorTypeTimeout)
}

// StatusError is returned when a reply passed the CRC check but carried a
// status word other than 0x9000.
type StatusError struct {
	Op     string
	Status StatusWord
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %04X (%s)", e.Op, uint16(e.Status), e.Status.Verbose())
}

// IsRetryable reports whether err is worth retrying at the caller's level.
// Only direct sentinels and TransportError values are inspected.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrNoACK),
		errors.Is(err, ErrCRC):
		return true
	default:
		return false
	}
}

// GetErrorType returns the ErrorType of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout), errors.Is(err, ErrNoACK):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead), errors.Is(err, ErrTransportWrite), errors.Is(err, ErrCRC):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// StatusOf returns the controller status word carried by err. A nil error
// maps to SWSuccess and errors without a status word map to SWNone.
func StatusOf(err error) StatusWord {
	if err == nil {
		return SWSuccess
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return SWNone
}

func statusError(op string, sw StatusWord) error {
	if sw == SWSuccess {
		return nil
	}
	return &StatusError{Op: op, Status: sw}
}

func parameterError(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrInvalidParameter, fmt.Sprintf(format, args...))
}
