package project

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

// ErrDateFormat is returned when a date matches none of the accepted layouts.
var ErrDateFormat = errors.New("unrecognized date format")

// DateFormat selects the layout dates are written in.
type DateFormat int

const (
	// ISO writes 2024-01-31T00:00:00.
	ISO DateFormat = iota
	// DMY writes 31-01-2024 00:00:00.
	DMY
	// DMonY writes 31-Jan-2024 00:00:00.
	DMonY
)

// acceptedLayouts are tried in order when parsing.
var acceptedLayouts = [...]string{
	"2006-01-02T15:04:05",
	"02-01-2006 15:04:05",
	"02-Jan-2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateFormat parses "iso", "dmy", or "dmony".
func ParseDateFormat(s string) (DateFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "iso":
		return ISO, nil
	case "dmy":
		return DMY, nil
	case "dmony":
		return DMonY, nil
	default:
		return ISO, fmt.Errorf("unknown date format %q", s)
	}
}

// String returns the config spelling of the format.
func (f DateFormat) String() string {
	switch f {
	case DMY:
		return "dmy"
	case DMonY:
		return "dmony"
	default:
		return "iso"
	}
}

func (f DateFormat) layout() string {
	switch f {
	case DMY:
		return acceptedLayouts[1]
	case DMonY:
		return acceptedLayouts[2]
	default:
		return acceptedLayouts[0]
	}
}

// ParseDate parses s in any accepted layout and returns its calendar day at
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := parseTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.Truncate(t), nil
}

// FormatDate writes the calendar day of d in format f.
func FormatDate(d time.Time, f DateFormat) string {
	return calendar.Truncate(d).Format(f.layout())
}

// parseTimestamp is ParseDate without dropping the time of day.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
}

func formatTimestamp(t time.Time, f DateFormat) string {
	return t.UTC().Format(f.layout())
}
