package catalog

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"releve/internal/core"
)

// fileCategory is one [[category]] table of a catalog file. Amounts are strings so
// "12,50" and "12.50" both work and nothing goes through float64.
type fileCategory struct {
	Name         string `toml:"name"`
	Min          string `toml:"min"`
	Max          string `toml:"max"`
	Direction    string `toml:"direction"`
	MaxPerPeriod int    `toml:"max_per_period"`
}

type fileCatalog struct {
	Categories []fileCategory `toml:"category"`
}

// Load returns the built-in catalog for an empty path, otherwise LoadFile(path).
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a TOML catalog:
//
//	[[category]]
//	name = "Paiement carte - Supermarché"
//	min = "5"
//	max = "150"
//	direction = "debit"
//	max_per_period = 4
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Decode parses a TOML catalog from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Catalog, error) {
	var fc fileCatalog
	md, err := toml.NewDecoder(r).Decode(&fc)
	if err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(fc.Categories) == 0 {
		return nil, fmt.Errorf("%w: no [[category]] entries", core.ErrInvalidCategory)
	}

	categories := make([]core.Category, 0, len(fc.Categories))
	for i, entry := range fc.Categories {
		cat, err := entry.toCategory()
		if err != nil {
			return nil, fmt.Errorf("category %d (%q): %w", i+1, entry.Name, err)
		}
		categories = append(categories, cat)
	}
	return New(categories...)
}

func (fc fileCategory) toCategory() (core.Category, error) {
	lo, err := core.ParseMoney(fc.Min)
	if err != nil {
		return core.Category{}, fmt.Errorf("%w: min %q", core.ErrInvalidCategory, fc.Min)
	}
	hi, err := core.ParseMoney(fc.Max)
	if err != nil {
		return core.Category{}, fmt.Errorf("%w: max %q", core.ErrInvalidCategory, fc.Max)
	}
	dir, err := core.ParseDirection(fc.Direction)
	if err != nil {
		return core.Category{}, fmt.Errorf("%w: %v", core.ErrInvalidCategory, err)
	}
	return core.Category{
		Name:         fc.Name,
		Min:          lo,
		Max:          hi,
		Direction:    dir,
		MaxPerPeriod: fc.MaxPerPeriod,
	}, nil
}

// Encode writes c in the format LoadFile reads.
func Encode(w io.Writer, c *Catalog) error {
	fc := fileCatalog{Categories: make([]fileCategory, 0, c.Len())}
	for _, cat := range c.categories {
		fc.Categories = append(fc.Categories, fileCategory{
			Name:         cat.Name,
			Min:          cat.Min.String(),
			Max:          cat.Max.String(),
			Direction:    string(cat.Direction),
			MaxPerPeriod: cat.MaxPerPeriod,
		})
	}
	return toml.NewEncoder(w).Encode(fc)
}
