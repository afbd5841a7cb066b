//go:build linux

package i2c

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bus     string
		want    string
		wantErr bool
	}{
		{name: "Number", bus: "1", want: "/dev/i2c-1"},
		{name: "Periph_Name", bus: "I2C2", want: "/dev/i2c-2"},
		{name: "Device_Node", bus: "/dev/i2c-10", want: "/dev/i2c-10"},
		{name: "Empty", bus: "", wantErr: true},
		{name: "Unknown_Name", bus: "I2C", wantErr: true},
		{name: "Alias", bus: "sensors", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := devPath(tt.bus)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenQuickWriter_MissingNode(t *testing.T) {
	t.Parallel()

	_, _, err := openQuickWriter("/dev/i2c-does-not-exist", Address)
	require.Error(t, err)
}
