package core

import (
	"fmt"
	"strconv"
	"strings"
)

func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: month}
}

// ParsePeriod parses "YYYY-MM" (a "/" separator is accepted too).
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q: expected YYYY-MM", ErrInvalidPeriod, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q: bad year", ErrInvalidPeriod, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q: bad month", ErrInvalidPeriod, s)
	}
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Next returns the following month, wrapping December into January.
func (p Period) Next() Period {
	if p.Month >= 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) After(o Period) bool {
	return o.Before(p)
}

// Date returns the given day inside the period.
func (p Period) Date(day int) Date {
	return NewDate(p.Year, p.Month, day)
}

// String renders the statement label, e.g. "05/2025".
func (p Period) String() string {
	return fmt.Sprintf("%02d/%d", p.Month, p.Year)
}

// Key renders the sortable form, e.g. "2025-05".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// MonthsBetween counts the periods in the inclusive range [from, to].
func MonthsBetween(from, to Period) int {
	if to.Before(from) {
		return 0
	}
	return (to.Year-from.Year)*12 + (to.Month - from.Month) + 1
}
