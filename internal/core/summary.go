package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
	Count  int
}

// Overview is a compact summary for a specific year+month.
type Overview struct {
	Year       int
	Month      int // 1-12
	Credits    Money
	Debits     Money // negative or zero
	ByCategory []CategoryAmount
}

// Net is credits plus debits.
func (o Overview) Net() Money {
	return o.Credits.Add(o.Debits)
}

// Overview aggregates the batch by category, preserving first-seen order.
func (b Batch) Overview() Overview {
	ov := Overview{Year: b.Period.Year, Month: b.Period.Month}
	index := map[string]int{}
	for _, t := range b.Transactions {
		if t.Amount.Cents > 0 {
			ov.Credits = ov.Credits.Add(t.Amount)
		} else {
			ov.Debits = ov.Debits.Add(t.Amount)
		}
		name := t.Description()
		i, ok := index[name]
		if !ok {
			i = len(ov.ByCategory)
			index[name] = i
			ov.ByCategory = append(ov.ByCategory, CategoryAmount{Name: name})
		}
		ov.ByCategory[i].Amount = ov.ByCategory[i].Amount.Add(t.Amount)
		ov.ByCategory[i].Count++
	}
	return ov
}

// Counts returns how many times each category name appears in the batch.
func (b Batch) Counts() map[string]int {
	out := make(map[string]int)
	for _, t := range b.Transactions {
		out[t.Description()]++
	}
	return out
}
