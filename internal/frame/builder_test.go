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

package frame

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var selectApplicationID = []byte{0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}

func TestBuild(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cmd  Command
		name string
		want []byte
		mask FieldMask
	}{
		{
			name: "select application",
			mask: MaskSelectApplication,
			cmd: Command{
				Class: 0x00, INS: 0xA4, P1: 0x04, P2: 0x00,
				Lc: 7, Data: selectApplicationID, Le: 0x00,
			},
			want: []byte{
				0x02, 0x00, 0xA4, 0x04, 0x00, 0x07,
				0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01, 0x00,
				0x35, 0xC0,
			},
		},
		{
			name: "read binary",
			mask: MaskReadBinary,
			cmd:  Command{Class: 0x00, INS: 0xB0, P1: 0x00, P2: 0x00, Le: 0x10},
			want: []byte{0x02, 0x00, 0xB0, 0x00, 0x00, 0x10, 0xF8, 0x4E},
		},
		{
			name: "verify without password",
			mask: MaskVerifyNoPassword,
			cmd:  Command{Class: 0x00, INS: 0x20, P1: 0x00, P2: 0x03, Lc: 0},
			want: []byte{0x02, 0x00, 0x20, 0x00, 0x03, 0x00, 0xDE, 0x9A},
		},
		{
			name: "enable verification requirement",
			mask: MaskEnableVerifReq,
			cmd:  Command{Class: 0x00, INS: 0x28, P1: 0x00, P2: 0x01},
			want: []byte{0x02, 0x00, 0x28, 0x00, 0x01, 0xAE, 0xC2},
		},
		{
			name: "no crc",
			mask: FieldPCB | FieldINS,
			cmd:  Command{INS: 0xB0},
			want: []byte{0x02, 0xB0},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := NewBuilder()
			got := b.Build(make([]byte, 0, ScratchSize), tt.mask, &tt.cmd, 0x00)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Build() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_ZeroFilledData(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	cmd := Command{Class: 0x00, INS: 0xD6, Lc: 4}
	got := b.Build(nil, MaskUpdateBinary, &cmd, 0)

	require.Len(t, got, 1+4+1+4+2)
	assert.Equal(t, []byte{0, 0, 0, 0}, got[6:10])
	assert.Equal(t, uint16(0), ComputeCRC(got))
}

func TestBuild_BlockNumberToggles(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	cmd := Command{Class: 0x00, INS: 0xB0, Le: 1}

	first := b.Build(nil, MaskReadBinary, &cmd, 0)
	second := b.Build(nil, MaskReadBinary, &cmd, 0)
	third := b.Build(nil, MaskReadBinary, &cmd, 0)

	assert.Equal(t, byte(0x02), first[0])
	assert.Equal(t, byte(0x03), second[0])
	assert.Equal(t, byte(0x02), third[0])
	assert.NotEqual(t, first[0]&0x01, second[0]&0x01)
}

func TestBuild_NoPCBKeepsBlockNumber(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	before := b.BlockNumber()
	cmd := Command{INS: 0xB0}
	_ = b.Build(nil, FieldINS|FieldCRC, &cmd, 0)
	assert.Equal(t, before, b.BlockNumber())
}

func TestBuild_DIDNeverEmitted(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	cmd := Command{INS: 0xB0}
	for i := 0; i < 4; i++ {
		got := b.Build(nil, FieldPCB|FieldINS, &cmd, 0x5A)
		assert.Len(t, got, 2, "DID presence follows the block number, not the mask")
		assert.Equal(t, byte(0xB0), got[1])
	}
}

func TestBuild_ClassifiesAsInformation(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	masks := []FieldMask{
		MaskSelectApplication, MaskSelectCCFile, MaskReadBinary, MaskUpdateBinary,
		MaskVerifyNoPassword, MaskVerifyPassword, MaskChangeRefData, MaskEnableVerifReq,
		MaskDisableVerifReq, MaskSendInterrupt, MaskGPOState,
	}
	for _, mask := range masks {
		cmd := Command{Class: 0xA2, INS: 0xD6, Lc: 1, Data: []byte{0x01}}
		got := b.Build(nil, mask, &cmd, 0)
		assert.Equal(t, BlockInformation, Classify(got), "mask %04X", uint16(mask))
	}
}

func TestAppendWTXResponse(t *testing.T) {
	t.Parallel()
	got := AppendWTXResponse(nil, 0x01)
	if diff := cmp.Diff([]byte{0xF2, 0x01, 0x91, 0x40}, got); diff != "" {
		t.Errorf("AppendWTXResponse() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, BlockSupervisory, Classify(got))
}
