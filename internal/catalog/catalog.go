// Package catalog holds the immutable table of transaction categories the
// generator draws from.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"releve/internal/core"
)

var ErrDuplicateCategory = fmt.Errorf("%w: duplicate name", core.ErrInvalidCategory)

// Catalog is read-only after New returns. It is safe to share between runs.
type Catalog struct {
	categories []core.Category
	byName     map[string]int
	capacity   int
}

// New validates and copies the given categories.
func New(categories ...core.Category) (*Catalog, error) {
	c := &Catalog{
		categories: make([]core.Category, 0, len(categories)),
		byName:     make(map[string]int, len(categories)),
	}
	var errs []error
	for i, cat := range categories {
		cat.Name = strings.TrimSpace(cat.Name)
		if err := cat.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("category %d: %w", i+1, err))
			continue
		}
		if _, ok := c.byName[cat.Name]; ok {
			errs = append(errs, fmt.Errorf("category %d: %w: %q", i+1, ErrDuplicateCategory, cat.Name))
			continue
		}
		c.byName[cat.Name] = len(c.categories)
		c.categories = append(c.categories, cat)
		c.capacity = addCapped(c.capacity, cat.MaxPerPeriod)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// addCapped adds two non-negative ints, saturating at math.MaxInt.
func addCapped(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// At returns a copy of the i-th category.
func (c *Catalog) At(i int) core.Category {
	return c.categories[i]
}

// Categories returns a copy of the table in declaration order.
func (c *Catalog) Categories() []core.Category {
	return append([]core.Category(nil), c.categories...)
}

// Lookup returns a copy of the named category.
func (c *Catalog) Lookup(name string) (core.Category, bool) {
	i, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return core.Category{}, false
	}
	return c.categories[i], true
}

// Capacity is the sum of every occurrence cap: the largest per-period count the
// catalog can satisfy. It saturates at math.MaxInt.
func (c *Catalog) Capacity() int {
	return c.capacity
}

// CheckCapacity reports ErrInsufficientCapacity when count cannot be reached.
func (c *Catalog) CheckCapacity(count int) error {
	if count > c.capacity {
		return fmt.Errorf("%w: %d transactions requested, catalog allows at most %d per period",
			core.ErrInsufficientCapacity, count, c.capacity)
	}
	return nil
}
