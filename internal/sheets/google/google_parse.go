package google

import (
	"fmt"
	"strconv"
	"strings"

	"releve/internal/core"
)

// Column layout of a statement tab.
const (
	colPeriod = iota
	colDate
	colAccount
	colDescription
	colAmount
	colBalance
	colRunID
	numCols
)

// rows converts a statement into the value grid appended to the sheet. Amounts are
// numbers so the sheet can sum them; everything else is text.
func rows(st core.Statement) [][]any {
	out := make([][]any, 0, len(st.Batch.Transactions))
	for _, t := range st.Batch.Transactions {
		out = append(out, []any{
			st.Batch.Period.Key(),
			t.Date.Format("02/01/2006"),
			st.Account.Number,
			t.Description(),
			t.Amount.Euros(),
			t.Balance.Euros(),
			st.RunID,
		})
	}
	return out
}

// overviewFromRows aggregates the rows of the last run appended for account and p.
// Header rows and rows of other periods or accounts are skipped.
func overviewFromRows(values [][]any, account string, p core.Period) core.Overview {
	ov := core.Overview{Year: p.Year, Month: p.Month}

	matching := make([][]string, 0)
	lastRun := ""
	for _, raw := range values {
		cols := toStrings(raw)
		if len(cols) < numCols {
			continue
		}
		rp, err := core.ParsePeriod(cols[colPeriod])
		if err != nil || rp != p || cols[colAccount] != account {
			continue
		}
		matching = append(matching, cols)
		lastRun = cols[colRunID]
	}

	index := map[string]int{}
	for _, cols := range matching {
		if cols[colRunID] != lastRun {
			continue
		}
		amt, ok := parseEurosToCents(cols[colAmount])
		if !ok {
			continue
		}
		m := core.Cents(amt)
		if m.Cents > 0 {
			ov.Credits = ov.Credits.Add(m)
		} else {
			ov.Debits = ov.Debits.Add(m)
		}
		name := cols[colDescription]
		i, seen := index[name]
		if !seen {
			i = len(ov.ByCategory)
			index[name] = i
			ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{Name: name})
		}
		ov.ByCategory[i].Amount = ov.ByCategory[i].Amount.Add(m)
		ov.ByCategory[i].Count++
	}
	return ov
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

// yearPrefixedName returns "<year> <base>". A 4-digit year already leading base
// is replaced, so each year keeps its own tab.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 && base[4] == ' ' {
		if y, err := strconv.Atoi(base[0:4]); err == nil && y > 1900 && y < 3000 {
			base = strings.TrimSpace(base[5:])
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func parseEurosToCents(s string) (int64, bool) {
	m, err := core.ParseMoney(s)
	if err != nil {
		return 0, false
	}
	return m.Cents, true
}
