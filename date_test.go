package gridbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToSerial_KnownValues(t *testing.T) {
	cases := []struct {
		name   string
		in     time.Time
		serial float64
	}{
		{"first day", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		{"before leap bug", time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC), 59},
		{"after leap bug", time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC), 61},
		{"noon", time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 36526.5},
		{"modern date", time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC), 40616},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.serial, TimeToSerial(tc.in), 1e-9)
		})
	}
}

func TestSerialToTime_Inverse(t *testing.T) {
	times := []time.Time{
		time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1900, 2, 28, 23, 0, 0, 0, time.UTC),
		time.Date(1900, 3, 1, 1, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 7, 4, 6, 30, 15, 0, time.UTC),
	}
	for _, in := range times {
		got, err := SerialToTime(TimeToSerial(in))
		require.NoError(t, err)
		assert.True(t, in.Equal(got), "want %v, got %v", in, got)
	}
}

func TestSerialToTime_SubSecondTruncation(t *testing.T) {
	in := time.Date(2024, 7, 4, 6, 30, 15, 987654321, time.UTC)
	got, err := SerialToTime(TimeToSerial(in))
	require.NoError(t, err)
	assert.True(t, in.Truncate(time.Second).Equal(got))
}

func TestSerialToTime_Invalid(t *testing.T) {
	for _, serial := range []float64{-1, -0.001} {
		_, err := SerialToTime(serial)
		assert.Error(t, err, "serial %v", serial)
	}
}

func TestTimeToSerial_LocationIgnored(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	wall := time.Date(2011, 3, 14, 15, 9, 0, 0, loc)
	utc := time.Date(2011, 3, 14, 15, 9, 0, 0, time.UTC)
	assert.Equal(t, TimeToSerial(utc), TimeToSerial(wall))
}
