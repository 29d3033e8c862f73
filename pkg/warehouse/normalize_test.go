package warehouse

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	ts := time.Date(1995, 3, 15, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "ASIA", "ASIA"},
		{"bytes", []byte("EUROPE"), "EUROPE"},
		{"int64", int64(42), int64(42)},
		{"int", 42, int64(42)},
		{"int32", int32(-7), int64(-7)},
		{"int16", int16(7), int64(7)},
		{"int8", int8(-1), int64(-1)},
		{"uint64 in range", uint64(99), int64(99)},
		{"uint64 overflow", uint64(math.MaxInt64) + 1, "9223372036854775808"},
		{"uint", uint(12), int64(12)},
		{"uint32", uint32(12), int64(12)},
		{"uint16", uint16(12), int64(12)},
		{"uint8", uint8(12), int64(12)},
		{"float64", 1234.5, 1234.5},
		{"float32", float32(1.5), 1.5},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"time", ts, "1995-03-15T10:30:00Z"},
		{"unexpected type", []int{1, 2}, "[1 2]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, coerce(tc.in))
		})
	}
}
