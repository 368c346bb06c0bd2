package model

import (
	"fmt"
	"strings"
)

// Range selects which delivery days are requested and published.
type Range string

const (
	RangeTodayTomorrow Range = "today_tomorrow"
	RangeToday         Range = "today"
)

func (r Range) String() string {
	return string(r)
}

func (r *Range) UnmarshalText(text []byte) error {
	switch v := Range(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case RangeTodayTomorrow, RangeToday:
		*r = v
		return nil
	case "":
		*r = RangeTodayTomorrow
		return nil
	default:
		return fmt.Errorf("unknown range %q, expected %q or %q", text, RangeTodayTomorrow, RangeToday)
	}
}
