package service

import (
	"time"
)

const dateLayout = "2006-01-02"

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, invalid("%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty string.
func parseOptionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseRange parses an inclusive [from, to] pair; to before from is rejected.
func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate(from, "start date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(to, "end date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, invalid("end date is before start date")
	}
	return start, end, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
