package utils

import "time"

// DateLayout is the only calendar date format accepted on the wire.
const DateLayout = "2006-01-02"

// ParseDate parses s as a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// IsDate reports whether s is a valid calendar date in DateLayout.
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}
