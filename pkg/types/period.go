package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Period is a calendar-month accrual/distribution bucket. It replaces the
// wall-clock string formatting the ledgers were previously keyed by, so
// idempotency checks are plain equality.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// CurrentPeriod returns the period containing the current wall-clock time.
func CurrentPeriod() Period {
	return PeriodOf(time.Now().UTC())
}

// ParsePeriod parses the canonical "YYYY-MM" key.
func ParsePeriod(value string) (Period, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (expected YYYY-MM): %w", value, err)
	}
	return PeriodOf(t), nil
}

// String renders the canonical "YYYY-MM" key.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p precedes other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Value implements driver.Valuer so periods persist as their string key.
func (p Period) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.String(), nil
}

// Scan implements sql.Scanner.
func (p *Period) Scan(src any) error {
	if src == nil {
		*p = Period{}
		return nil
	}
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*p = PeriodOf(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Period", src)
	}
	parsed, err := ParsePeriod(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText renders the canonical key for JSON/JSONB embedding.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the canonical key.
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
