// Package toa defines the observation records that timing models evaluate
// and the high-precision time type they are recorded in.
package toa

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SecondsPerDay is the length of a day in SI seconds.
const SecondsPerDay = 86400.0

// MJD is a Modified Julian Date kept as a split day count. A single float64
// cannot hold a date and sub-microsecond structure at the same time, so the
// integer day and the fraction of the day are carried separately. Frac is
// always in [0, 1).
type MJD struct {
	Day  int64
	Frac float64
}

// NewMJD builds an MJD from a day number and a day fraction. The fraction
// can be any finite value; it is folded into the day count.
func NewMJD(day int64, frac float64) MJD {
	m := MJD{Day: day, Frac: frac}
	return m.normalized()
}

// MJDFromFloat converts a plain day count. Precision is limited to what the
// float64 carried, about 1 microsecond for current epochs.
func MJDFromFloat(v float64) MJD {
	ip, fp := math.Modf(v)
	return NewMJD(int64(ip), fp)
}

// ParseMJD reads a decimal day count from text, keeping the integer and
// fractional digits separate so no precision is lost to the combined value.
func ParseMJD(s string) (MJD, error) {
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	day, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return MJD{}, fmt.Errorf("parsing MJD %q: %w", s, err)
	}

	frac := 0.0
	if fracPart != "" && fracPart != "." {
		frac, err = strconv.ParseFloat("0"+fracPart, 64)
		if err != nil {
			return MJD{}, fmt.Errorf("parsing MJD %q: %w", s, err)
		}
	}

	if day < 0 {
		return NewMJD(day, -frac), nil
	}

	return NewMJD(day, frac), nil
}

func (m MJD) normalized() MJD {
	for m.Frac >= 1 {
		m.Frac--
		m.Day++
	}
	for m.Frac < 0 {
		m.Frac++
		m.Day--
	}
	return m
}

// Float collapses the MJD into a single day count, losing precision.
func (m MJD) Float() float64 {
	return float64(m.Day) + m.Frac
}

// AddSeconds returns the instant s seconds later.
func (m MJD) AddSeconds(s float64) MJD {
	return NewMJD(m.Day, m.Frac+s/SecondsPerDay)
}

// SubSeconds returns m minus o in seconds. The day counts are differenced
// before scaling so that decade-long spans keep sub-nanosecond resolution.
func (m MJD) SubSeconds(o MJD) float64 {
	days := float64(m.Day - o.Day)
	return days*SecondsPerDay + (m.Frac-o.Frac)*SecondsPerDay
}

// Before reports whether m is earlier than o.
func (m MJD) Before(o MJD) bool {
	if m.Day != o.Day {
		return m.Day < o.Day
	}
	return m.Frac < o.Frac
}

// String formats the MJD as a decimal day count.
func (m MJD) String() string {
	if m.Day < 0 && m.Frac != 0 {
		return strconv.FormatFloat(m.Float(), 'f', -1, 64)
	}
	f := strconv.FormatFloat(m.Frac, 'f', -1, 64)
	if f == "0" {
		return strconv.FormatInt(m.Day, 10)
	}
	return strconv.FormatInt(m.Day, 10) + strings.TrimPrefix(f, "0")
}
