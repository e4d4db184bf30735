// Package types implements value types shared across the savings backend.
package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// labelLayout is the layout of a month label, e.g. "2024-05".
const labelLayout = "2006-01"

// Month is an accounting period: one calendar month in UTC.
//
// The underlying time is always 00:00 UTC on the first of the month.
type Month time.Time

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the accounting period a time instant belongs to.
//
// The instant is converted to UTC first, so the result does not depend on
// the location of t.
func MonthOf(t time.Time) Month {
	year, month, _ := t.UTC().Date()
	return NewMonth(year, month)
}

// ParseMonth parses a month label in "YYYY-MM" format.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(labelLayout, s)
	if err != nil {
		return Month{}, err
	}

	return MonthOf(t), nil
}

// String returns the month label, formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

// Label returns the month label. It is the key under which monthly
// records are stored.
func (m Month) Label() string {
	return m.String()
}

// MarshalJSON encodes the month as its label.
func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(m.Label())
}

// UnmarshalJSON accepts a month label ("2024-05"), a full date ("2024-05-12")
// or an RFC3339 timestamp. Everything but year and month is ignored.
func (m *Month) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	if value == "" {
		return nil
	}

	for _, layout := range []string{labelLayout, time.DateOnly, time.RFC3339} {
		t, err := time.Parse(layout, value)
		if err == nil {
			*m = MonthOf(t)
			return nil
		}
	}

	return fmt.Errorf("could not parse %q as month, use YYYY-MM format", value)
}

// Scan writes the value from the database.
func (m *Month) Scan(value interface{}) (err error) {
	nullTime := &sql.NullTime{}
	err = nullTime.Scan(value)
	*m = Month(nullTime.Time)
	return err
}

// Value returns the value for the SQL driver to write to the database.
func (m Month) Value() (driver.Value, error) {
	year, month, _ := time.Time(m).Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// GormDataType defines the data type used by gorm the type.
func (Month) GormDataType() string {
	return "date"
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return time.Time(m).IsZero()
}

// AddDate adds a specified amount of years and months.
func (m Month) AddDate(years, months int) Month {
	return Month(time.Time(m).AddDate(years, months, 0))
}

// Before reports whether the month m is before n.
func (m Month) Before(n Month) bool {
	return time.Time(m).Before(time.Time(n))
}

// After reports whether the month m is after n.
func (m Month) After(n Month) bool {
	return time.Time(m).After(time.Time(n))
}

// Equal reports whether m and n represent the same month.
func (m Month) Equal(n Month) bool {
	return m.Label() == n.Label()
}

// Contains reports whether the time instant is in the month.
func (m Month) Contains(t time.Time) bool {
	return MonthOf(t).Equal(m)
}

// MonthsUntil returns the number of months from m to n, counting both.
// It returns 0 if n is before m.
func (m Month) MonthsUntil(n Month) int {
	if n.Before(m) {
		return 0
	}

	from, to := time.Time(m), time.Time(n)
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month()) + 1
}
