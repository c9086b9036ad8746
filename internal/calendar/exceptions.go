package calendar

import (
	"strings"
	"time"
)

// rangeSep separates the endpoints of an exception range entry.
const rangeSep = " to "

type span struct {
	from, to time.Time
}

// Exceptions is a parsed set of per-resource non-working days. A nil
// *Exceptions contains nothing.
type Exceptions struct {
	days   map[string]bool
	ranges []span
}

// ParseExceptions parses entries of the form "YYYY-MM-DD" or
// "YYYY-MM-DD to YYYY-MM-DD" (inclusive). Malformed ranges are skipped and
// logged at debug level; single entries are matched verbatim.
func (c *Calendar) ParseExceptions(entries []string) *Exceptions {
	ex := &Exceptions{days: make(map[string]bool)}
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		before, after, isRange := strings.Cut(entry, rangeSep)
		if !isRange {
			ex.days[entry] = true
			continue
		}
		from, err1 := time.Parse(isoLayout, strings.TrimSpace(before))
		to, err2 := time.Parse(isoLayout, strings.TrimSpace(after))
		if err1 != nil || err2 != nil {
			c.logger.Debug("skipping malformed exception range", "entry", entry)
			continue
		}
		ex.ranges = append(ex.ranges, span{from: from, to: to})
	}
	return ex
}

// Contains reports whether d falls on an exception day or inside an
// exception range.
func (ex *Exceptions) Contains(d time.Time) bool {
	if ex == nil {
		return false
	}
	if ex.days[d.Format(isoLayout)] {
		return true
	}
	day := Truncate(d)
	for _, r := range ex.ranges {
		if !day.Before(r.from) && !day.After(r.to) {
			return true
		}
	}
	return false
}

// Len returns the number of parsed entries.
func (ex *Exceptions) Len() int {
	if ex == nil {
		return 0
	}
	return len(ex.days) + len(ex.ranges)
}
