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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		call     func(*Driver) error
		name     string
		want     []byte
		receives int
	}{
		{name: "Open", call: (*Driver).OpenSession, want: []byte{0x26}, receives: 0},
		{name: "Close", call: (*Driver).CloseSession, want: []byte{0x52}, receives: 0},
		{name: "Deselect", call: (*Driver).Deselect, want: []byte{0xC2, 0xE0, 0xB4}, receives: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, mock, _, rec := newTestDriver(t)
			require.NoError(t, tt.call(d))

			assert.Equal(t, [][]byte{tt.want}, mock.SentFrames())
			assert.Equal(t, 1, mock.GetCallCount(MockPoll))
			assert.Equal(t, tt.receives, mock.GetCallCount(MockReceive))
			require.Len(t, rec.Events(), 1)
			require.NoError(t, rec.Last().Err)
			assert.Equal(t, StateIdle, d.State())
		})
	}
}

func TestSession_OpenTracksVirtualState(t *testing.T) {
	t.Parallel()

	d, _, tag, rec := newTestDriver(t)
	require.NoError(t, d.OpenSession())
	assert.True(t, tag.SessionOpen)
	require.NoError(t, d.Deselect())
	assert.False(t, tag.SessionOpen)
	assert.Equal(t, []OperationKind{OpSession, OpDeselect}, rec.Kinds())
}

func TestSession_PollsInAsyncMode(t *testing.T) {
	t.Parallel()

	d, mock, _, rec := newTestDriver(t, WithMode(ModeAsync))
	require.NoError(t, d.OpenSession())

	assert.Equal(t, 1, mock.GetCallCount(MockPoll))
	assert.Equal(t, []OperationKind{OpSession}, rec.Kinds())
	assert.Equal(t, OpNone, d.Outstanding())
}

func TestSession_Errors(t *testing.T) {
	t.Parallel()

	t.Run("Poll_Fails", func(t *testing.T) {
		t.Parallel()

		d, mock, rec := newScriptedDriver(t)
		mock.SetError(MockPoll, NewNoACKError("poll", "mock"))

		err := d.OpenSession()
		require.ErrorIs(t, err, ErrNoACK)
		require.Len(t, rec.Events(), 1)
		assert.Equal(t, OpSession, rec.Last().Kind)
		require.ErrorIs(t, rec.Last().Err, ErrNoACK)
	})

	t.Run("Send_Fails", func(t *testing.T) {
		t.Parallel()

		d, mock, rec := newScriptedDriver(t)
		mock.SetError(MockSend, ErrTransportWrite)

		err := d.CloseSession()
		require.ErrorIs(t, err, ErrTransportWrite)
		assert.Zero(t, mock.GetCallCount(MockPoll))
		assert.Len(t, rec.Events(), 1)
	})

	t.Run("Deselect_Without_Reply", func(t *testing.T) {
		t.Parallel()

		d, _, rec := newScriptedDriver(t)
		err := d.Deselect()
		require.ErrorIs(t, err, ErrTransportTimeout)
		assert.Equal(t, []OperationKind{OpDeselect}, rec.Kinds())
		assert.Equal(t, OpNone, d.Outstanding())
	})
}

func TestSelect_Frames(t *testing.T) {
	t.Parallel()

	d, mock, _, rec := newTestDriver(t)
	require.NoError(t, d.SelectApplication())
	require.NoError(t, d.SelectNDEFFile(DefaultNDEFFileID))

	// first block number is 1 so the second I-block carries PCB 0x03
	assert.Equal(t, []byte{0x03, 0x00, 0xA4, 0x00, 0x0C, 0x02, 0x00, 0x01}, mock.LastFrame()[:8])
	assert.Equal(t, []OperationKind{OpSelectApplication, OpSelectNDEFFile}, rec.Kinds())
}

func TestSelect_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		call func(*Driver) error
		name string
		want StatusWord
	}{
		{
			name: "File_Before_Application",
			call: func(d *Driver) error { return d.SelectCCFile() },
			want: SWFileNotFound,
		},
		{
			name: "Unknown_NDEF_File",
			call: func(d *Driver) error {
				require.NoError(t, d.SelectApplication())
				return d.SelectNDEFFile(0x0002)
			},
			want: SWFileNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, _, _, rec := newTestDriver(t)
			err := tt.call(d)
			assert.Equal(t, tt.want, StatusOf(err))
			assert.Equal(t, tt.want, StatusOf(rec.Last().Err))
		})
	}
}
