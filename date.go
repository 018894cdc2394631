package gridbook

import (
	"fmt"
	"math"
	"time"
)

// Spreadsheet engines store a date/time as a fractional day count from the
// 1900-system epoch. Serial 1 is 1900-01-01; serial 60 is the nonexistent
// 1900-02-29 kept for Lotus 1-2-3 compatibility, so conversions below 61
// are shifted by one day.

var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// TimeToSerial converts a date/time to its day-count serial. The wall-clock
// fields of t are used; the location is ignored.
func TimeToSerial(t time.Time) float64 {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(serialEpoch).Hours() / 24)
	if days < 61 {
		days--
	}
	frac := float64(t.Hour()*3600+t.Minute()*60+t.Second()) / 86400
	return float64(days) + frac
}

// SerialToTime converts a day-count serial back to a UTC date/time. The
// serial has bounded precision: sub-second detail does not survive.
func SerialToTime(serial float64) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 {
		return time.Time{}, fmt.Errorf("gridbook: invalid date serial %v", serial)
	}
	days := int(math.Floor(serial))
	fracSec := int64(math.Round((serial - math.Floor(serial)) * 86400))
	if fracSec < 0 {
		fracSec = 0
	} else if fracSec > 86399 {
		fracSec = 86399
	}
	if days < 60 {
		days++
	}
	t := serialEpoch.AddDate(0, 0, days).Add(time.Duration(fracSec) * time.Second)
	return t, nil
}
