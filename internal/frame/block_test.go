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

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		frm  []byte
		want BlockType
	}{
		{name: "I-block block 0", frm: []byte{0x02, 0x90, 0x00}, want: BlockInformation},
		{name: "I-block block 1", frm: []byte{0x03, 0x90, 0x00}, want: BlockInformation},
		{name: "R-block ack", frm: []byte{0xA2}, want: BlockReceipt},
		{name: "S-block wtx", frm: []byte{0xF2, 0x01}, want: BlockSupervisory},
		{name: "S-block deselect", frm: []byte{0xC2, 0xE0, 0xB4}, want: BlockSupervisory},
		{name: "reserved coding", frm: []byte{0x42}, want: BlockInvalid},
		{name: "empty", frm: nil, want: BlockInvalid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.frm))
			assert.Equal(t, tt.want == BlockSupervisory, IsSBlock(tt.frm))
		})
	}
}

func TestBlockType_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "I-block", BlockInformation.String())
	assert.Equal(t, "R-block", BlockReceipt.String())
	assert.Equal(t, "S-block", BlockSupervisory.String())
	assert.Equal(t, "invalid", BlockInvalid.String())
}
