// Package pgtypes provides custom types for PostgreSQL database operations.
package pgtypes

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	microsPerDay   = int64(24 * time.Hour / time.Microsecond)
	microsPerMonth = 30 * microsPerDay
)

// Interval represents a PostgreSQL INTERVAL that maps to a Go time.Duration.
type Interval struct {
	Duration time.Duration
	Valid    bool
}

// NewInterval creates a valid Interval from a time.Duration
func NewInterval(d time.Duration) Interval {
	return Interval{Duration: d, Valid: true}
}

// Scan implements sql.Scanner. Months are approximated as 30 days.
func (i *Interval) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = Interval{}
		return nil
	case pgtype.Interval:
		micros := v.Microseconds + int64(v.Days)*microsPerDay + int64(v.Months)*microsPerMonth
		*i = Interval{Duration: time.Duration(micros) * time.Microsecond, Valid: v.Valid}
		return nil
	case string:
		var parsed pgtype.Interval
		if err := parsed.Scan(v); err != nil {
			return fmt.Errorf("failed to parse interval string %q: %w", v, err)
		}
		return i.Scan(parsed)
	case []byte:
		return i.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Interval", src)
	}
}

// Value implements driver.Valuer
func (i Interval) Value() (driver.Value, error) {
	if !i.Valid {
		return nil, nil
	}
	return pgtype.Interval{Microseconds: i.Duration.Microseconds(), Valid: true}, nil
}

// String returns a human-readable representation of the interval
func (i Interval) String() string {
	if !i.Valid {
		return "NULL"
	}
	return i.Duration.String()
}
