// README: YearMonth value type for monthly settlement windows.
package types

import (
	"fmt"
	"time"
)

// YearMonth identifies one calendar month, e.g. "2024-03".
type YearMonth struct {
	Year  int
	Month time.Month
}

func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Start is the first instant of the month in UTC.
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next is the first instant of the following month; [Start, Next) bounds
// the month's dispatch window.
func (ym YearMonth) Next() time.Time {
	return ym.Start().AddDate(0, 1, 0)
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// After reports whether the month starts after the given instant.
func (ym YearMonth) After(now time.Time) bool {
	return ym.Start().After(now)
}
