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

package transport

import (
	"errors"
	"testing"
	"time"

	m24sr "github.com/ZaparooProject/go-m24sr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutRetry(t *testing.T) {
	t.Parallel()

	errBus := errors.New("bus fault")

	tests := []struct {
		wantErr    error
		name       string
		readyAfter int
		fail       bool
		wantCalls  int
	}{
		{name: "Ready_Immediately", readyAfter: 0, wantCalls: 1},
		{name: "Ready_After_Retries", readyAfter: 3, wantCalls: 4},
		{name: "Permanent_Error", fail: true, wantErr: errBus, wantCalls: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			got, err := TimeoutRetry(time.Second, time.Microsecond, func() (int, bool, error) {
				calls++
				if tt.fail {
					return 0, false, errBus
				}
				if calls <= tt.readyAfter {
					return 0, true, nil
				}
				return calls, false, nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, got)
		})
	}
}

func TestTimeoutRetry_Expires(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := TimeoutRetry(5*time.Millisecond, time.Millisecond, func() (struct{}, bool, error) {
		calls++
		return struct{}{}, true, nil
	})

	require.Error(t, err)
	require.ErrorIs(t, err, m24sr.ErrTransportTimeout)
	assert.Equal(t, m24sr.ErrorTypeTimeout, m24sr.GetErrorType(err))
	assert.GreaterOrEqual(t, calls, 2)
}
