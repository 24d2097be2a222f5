// Package daterange validates operator-supplied dates and expands them into
// the concrete list of query dates the BASIS client fetches one by one.
package daterange

import (
	"fmt"
	"time"
)

// Layout is the calendar-date form accepted from the operator.
const Layout = "2006-01-02"

// DefaultMaxDays bounds how many days a single range query may span.
const DefaultMaxDays = 31

// InvalidDateError reports unusable date input. It is never retried; the
// message is surfaced to the operator verbatim.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// Resolve parses a single calendar date into the one-element query list.
func Resolve(date string) ([]time.Time, error) {
	d, err := parse(date)
	if err != nil {
		return nil, err
	}
	return []time.Time{d}, nil
}

// ResolveRange expands an inclusive (start, end) pair day by day, in ascending
// order. start == end yields exactly one date. maxDays <= 0 falls back to
// DefaultMaxDays.
func ResolveRange(start, end string, maxDays int) ([]time.Time, error) {
	s, err := parse(start)
	if err != nil {
		return nil, err
	}
	e, err := parse(end)
	if err != nil {
		return nil, err
	}

	if e.Before(s) {
		return nil, &InvalidDateError{
			Input:  end,
			Reason: fmt.Sprintf("end date precedes start date %s", start),
		}
	}

	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	days := int(e.Sub(s).Hours()/24) + 1
	if days > maxDays {
		return nil, &InvalidDateError{
			Input:  fmt.Sprintf("%s..%s", start, end),
			Reason: fmt.Sprintf("range spans %d days, maximum is %d", days, maxDays),
		}
	}

	dates := make([]time.Time, 0, days)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

func parse(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &InvalidDateError{Input: raw, Reason: "empty"}
	}
	d, err := time.Parse(Layout, raw)
	if err != nil {
		return time.Time{}, &InvalidDateError{Input: raw, Reason: "want YYYY-MM-DD"}
	}
	return d, nil
}
