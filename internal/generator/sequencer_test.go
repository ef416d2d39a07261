package generator

import (
	"testing"

	"releve/internal/catalog"
	"releve/internal/core"
)

func tx(day int, cents int64, name string) core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(2024, 1, day),
		Category: &core.Category{Name: name},
		Amount:   core.Cents(cents),
	}
}

func TestSequenceOrdersAndBalances(t *testing.T) {
	in := []core.Transaction{
		tx(20, -500, "c"),
		tx(3, 1000, "a"),
		tx(20, -250, "d"),
		tx(3, -100, "b"),
	}
	b := Sequence(core.NewPeriod(2024, 1), core.Cents(10000), in)

	wantNames := []string{"a", "b", "c", "d"}
	wantBalances := []int64{11000, 10900, 10400, 10150}
	for i, got := range b.Transactions {
		if got.Description() != wantNames[i] || got.Balance.Cents != wantBalances[i] {
			t.Errorf("row %d = %s/%d, want %s/%d", i, got.Description(), got.Balance.Cents, wantNames[i], wantBalances[i])
		}
	}
	if b.Opening.Cents != 10000 || b.Closing.Cents != 10150 {
		t.Errorf("opening/closing = %s/%s", b.Opening, b.Closing)
	}
	if in[0].Description() != "c" || !in[0].Balance.IsZero() {
		t.Error("input slice was modified")
	}
}

func TestSequenceEmpty(t *testing.T) {
	b := Sequence(core.NewPeriod(2024, 1), core.Cents(4242), nil)
	if len(b.Transactions) != 0 || b.Closing != b.Opening {
		t.Fatalf("empty batch: %+v", b)
	}
}

func TestSequenceBalanceConsistency(t *testing.T) {
	txs, _, err := NewSampler(catalog.Default(), NewRand(99)).Sample(core.NewPeriod(2024, 5), 40)
	if err != nil {
		t.Fatal(err)
	}
	opening := core.Cents(-12345)
	b := Sequence(core.NewPeriod(2024, 5), opening, txs)

	sum := opening.Decimal()
	for i, row := range b.Transactions {
		if i > 0 && row.Date.Before(b.Transactions[i-1].Date.Time) {
			t.Fatalf("row %d out of order", i)
		}
		sum = sum.Add(row.Amount.Decimal())
		if !row.Balance.Decimal().Equal(sum.Round(2)) {
			t.Fatalf("row %d balance %s, want %s", i, row.Balance, sum.StringFixed(2))
		}
	}
	if b.Closing != b.Transactions[len(b.Transactions)-1].Balance {
		t.Fatal("closing is not the last balance")
	}
}
