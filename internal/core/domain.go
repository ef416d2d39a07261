package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// MaxDay is the last day a generated transaction can fall on. Every month has it.
const MaxDay = 28

// MaxTransactionsPerPeriod bounds the per-period target count.
const MaxTransactionsPerPeriod = 10_000

type (
	Direction string

	Date struct {
		time.Time
	}

	// Period is one calendar month.
	Period struct {
		Year  int
		Month int // 1-12
	}

	Category struct {
		Name         string
		Min          Money
		Max          Money
		Direction    Direction
		MaxPerPeriod int // occurrence cap within one period
	}

	Transaction struct {
		Date     Date
		Category *Category // shared within a batch, never mutated
		Amount   Money     // signed: credits > 0, debits < 0
		Balance  Money     // running balance, set once by the sequencer
	}

	// Batch is the ordered, balance-annotated set of transactions for one period.
	Batch struct {
		Period       Period
		Opening      Money
		Closing      Money
		Transactions []Transaction
	}

	Account struct {
		Bank   string
		Number string
	}

	// Statement is what rendering sinks receive for one period.
	Statement struct {
		RunID   string
		Account Account
		Batch   Batch
	}
)

var (
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrInvalidPeriodRange   = errors.New("invalid period range")
	ErrInvalidCategory      = errors.New("invalid category definition")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrInsufficientCapacity = errors.New("insufficient catalog capacity")
	ErrDrawLimitExceeded    = errors.New("draw limit exceeded")
	ErrInvalidCount         = errors.New("invalid transaction count")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDirection accepts the English names and the French ones used by older catalogs.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit", "crédit":
		return Credit, nil
	case "debit", "débit":
		return Debit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

func (d Direction) Validate() error {
	if d != Credit && d != Debit {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, string(d))
	}
	return nil
}

// Sign returns +1 for credits and -1 for debits.
func (d Direction) Sign() int64 {
	if d == Debit {
		return -1
	}
	return 1
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCategory)
	}
	if c.Min.Cents < 1 {
		return fmt.Errorf("%w: %q: min %s must be at least 0.01", ErrInvalidCategory, name, c.Min)
	}
	if c.Min.Cents > c.Max.Cents {
		return fmt.Errorf("%w: %q: min %s greater than max %s", ErrInvalidCategory, name, c.Min, c.Max)
	}
	if err := c.Direction.Validate(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidCategory, name, err)
	}
	if c.MaxPerPeriod < 1 {
		return fmt.Errorf("%w: %q: occurrence cap %d must be at least 1", ErrInvalidCategory, name, c.MaxPerPeriod)
	}
	return nil
}

// Description is the label printed on statements.
func (t Transaction) Description() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// Suffix returns the last three characters of the account number.
func (a Account) Suffix() string {
	n := []rune(strings.TrimSpace(a.Number))
	if len(n) <= 3 {
		return string(n)
	}
	return string(n[len(n)-3:])
}
