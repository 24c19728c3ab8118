// Package timeutil pins all user-visible timestamps to one configured
// timezone so logs, webhook payloads, and device records agree.
package timeutil

import "time"

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "Asia/Kolkata"

// Clock produces timezone-normalized timestamps.
type Clock struct {
	loc *time.Location
}

// NewClock builds a Clock for the given IANA timezone name.
// An empty name selects DefaultTimezone.
func NewClock(tz string) (*Clock, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return &Clock{loc: loc}, nil
}

// Now returns the current time in the configured zone.
func (c *Clock) Now() time.Time {
	if c == nil || c.loc == nil {
		return time.Now()
	}
	return time.Now().In(c.loc)
}

// NowISO returns the current time as an RFC 3339 string.
func (c *Clock) NowISO() string {
	return c.Now().Format(time.RFC3339)
}

// Today returns the current date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format("2006-01-02")
}

// Location exposes the configured zone.
func (c *Clock) Location() *time.Location {
	if c == nil || c.loc == nil {
		return time.Local
	}
	return c.loc
}
