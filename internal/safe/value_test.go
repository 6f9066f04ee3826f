package safe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint32(t *testing.T) {
	tests := []struct {
		name    string
		in      int
		want    uint32
		clamped bool
	}{
		{name: "zero", in: 0, want: 0, clamped: false},
		{name: "positive", in: 42, want: 42, clamped: false},
		{name: "max", in: math.MaxUint32, want: math.MaxUint32, clamped: false},
		{name: "negative clamps to zero", in: -1, want: 0, clamped: true},
		{name: "overflow clamps to max", in: math.MaxUint32 + 1, want: math.MaxUint32, clamped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := IntToUint32(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.clamped, clamped)
		})
	}
}

func TestUint32ToInt(t *testing.T) {
	got, clamped := Uint32ToInt(12345)
	assert.Equal(t, 12345, got)
	assert.False(t, clamped)
}

func TestUint64ToUint32(t *testing.T) {
	got, clamped := Uint64ToUint32(7)
	assert.Equal(t, uint32(7), got)
	assert.False(t, clamped)

	got, clamped = Uint64ToUint32(math.MaxUint32 + 1)
	assert.Equal(t, uint32(math.MaxUint32), got)
	assert.True(t, clamped)
}
