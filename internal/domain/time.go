package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeLayout is the storage format for every timestamp column. A fixed-width
// UTC layout keeps text comparison in SQL equal to chronological order.
const TimeLayout = "2006-01-02T15:04:05Z"

// DateLayout is the storage format for calendar-day columns.
const DateLayout = "2006-01-02"

// Time stores as TimeLayout text on both sqlite and Postgres.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{Time: t.UTC().Truncate(time.Second)}
}

func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(TimeLayout), nil
}

func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("domain.Time: cannot scan %T", src)
}

func (t *Time) parse(s string) error {
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05", DateLayout} {
		if p, err := time.Parse(layout, s); err == nil {
			t.Time = p.UTC()
			return nil
		}
	}
	return fmt.Errorf("domain.Time: unrecognised timestamp %q", s)
}

// Display formats t as a calendar date in loc.
func (t Time) Display(loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("02 Jan 2006")
}
