package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockTime is a time of day with minute resolution.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (24-hour).
func ParseClock(s string) (ClockTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ClockTime{}, &ConfigurationError{Field: "clock time", Value: s, Reason: "want HH:MM"}
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, &ConfigurationError{Field: "clock time", Value: s, Reason: "hour must be 0-23"}
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, &ConfigurationError{Field: "clock time", Value: s, Reason: "minute must be 0-59"}
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// MustClock is ParseClock for literals known to be valid.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SleepSchedule is the user's nightly sleep window. End may fall on the next
// day (Start 22:00, End 06:00).
type SleepSchedule struct {
	Start ClockTime `json:"start" yaml:"start"`
	End   ClockTime `json:"end" yaml:"end"`
}

// DefaultSleepSchedule is 22:00 to 06:00.
func DefaultSleepSchedule() SleepSchedule {
	return SleepSchedule{Start: ClockTime{Hour: 22}, End: ClockTime{Hour: 6}}
}

// NewSleepSchedule parses and validates a window from "HH:MM" strings.
func NewSleepSchedule(start, end string) (SleepSchedule, error) {
	s, err := ParseClock(start)
	if err != nil {
		return SleepSchedule{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return SleepSchedule{}, err
	}
	sched := SleepSchedule{Start: s, End: e}
	if err := sched.Validate(); err != nil {
		return SleepSchedule{}, err
	}
	return sched, nil
}

// Validate rejects windows whose start and end fall in the same hour.
// Circadian scoring works at hour resolution, so such a window is either
// empty or the whole day.
func (s SleepSchedule) Validate() error {
	for _, c := range []ClockTime{s.Start, s.End} {
		if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
			return &ConfigurationError{Field: "sleep schedule", Value: c.String(), Reason: "out of range"}
		}
	}
	if s.Start.Hour == s.End.Hour {
		return &ConfigurationError{Field: "sleep schedule", Value: s.Start.String() + "-" + s.End.String(), Reason: "start and end must be different hours"}
	}
	return nil
}
