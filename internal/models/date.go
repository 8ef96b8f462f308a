package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time or zone. It is stored as YYYY-MM-DD
// so the day a completion belongs to survives drivers that normalise
// timestamps to UTC.
type Date civil.Date

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(civil.DateOf(t))
}

func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(d), nil
}

func (d Date) asCivil() civil.Date {
	return civil.Date(d)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.asCivil().String()
}

// DaysSince returns the number of whole days from other to d.
func (d Date) DaysSince(other Date) int {
	return d.asCivil().DaysSince(other.asCivil())
}

func (d Date) AddDays(n int) Date {
	return Date(d.asCivil().AddDays(n))
}

func (d Date) Before(other Date) bool {
	return d.asCivil().Before(other.asCivil())
}

func (d Date) Weekday() time.Weekday {
	return d.asCivil().In(time.UTC).Weekday()
}

func (d Date) GormDataType() string {
	return "string"
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case time.Time:
		*d = DateOf(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.scanString(s)
}
