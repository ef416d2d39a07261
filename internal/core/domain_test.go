package core

import (
	"errors"
	"testing"
	"time"
	"unicode/utf8"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDirection(t *testing.T) {
	cases := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"credit", Credit, true},
		{"Débit", Debit, true},
		{" crédit ", Credit, true},
		{"debit", Debit, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDirection(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDirection) {
			t.Fatalf("%q expected ErrInvalidDirection, got %v", tc.in, err)
		}
	}
}

func TestDirectionSign(t *testing.T) {
	if Credit.Sign() != 1 || Debit.Sign() != -1 {
		t.Fatalf("unexpected signs: credit=%d debit=%d", Credit.Sign(), Debit.Sign())
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Salaire", Min: Cents(150000), Max: Cents(300000), Direction: Credit, MaxPerPeriod: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	fixed := Category{Name: "Netflix", Min: Cents(1000), Max: Cents(1000), Direction: Debit, MaxPerPeriod: 1}
	if err := fixed.Validate(); err != nil {
		t.Fatalf("min == max should be valid, got %v", err)
	}

	bads := []Category{
		{Name: "", Min: Cents(1), Max: Cents(2), Direction: Debit, MaxPerPeriod: 1},
		{Name: "neg", Min: Cents(-1), Max: Cents(2), Direction: Debit, MaxPerPeriod: 1},
		{Name: "zero credit", Min: Cents(0), Max: Cents(2), Direction: Credit, MaxPerPeriod: 1},
		{Name: "zero debit", Min: Cents(0), Max: Cents(0), Direction: Debit, MaxPerPeriod: 1},
		{Name: "inverted", Min: Cents(500), Max: Cents(100), Direction: Debit, MaxPerPeriod: 1},
		{Name: "cap", Min: Cents(1), Max: Cents(2), Direction: Debit, MaxPerPeriod: 0},
		{Name: "dir", Min: Cents(1), Max: Cents(2), Direction: "sideways", MaxPerPeriod: 1},
	}
	for i, c := range bads {
		err := c.Validate()
		if !errors.Is(err, ErrInvalidCategory) {
			t.Fatalf("case %d expected ErrInvalidCategory, got %v", i, err)
		}
	}
}

func TestAccountSuffix(t *testing.T) {
	cases := map[string]string{
		"FR76 1234 5678 9012": "012",
		"42":                  "42",
		"  ABCDE ":            "CDE",
		"FR76 Aé€ü":           "é€ü",
		"Zoë":                 "Zoë",
	}
	for in, want := range cases {
		got := (Account{Number: in}).Suffix()
		if got != want {
			t.Errorf("Suffix(%q) = %q, want %q", in, got, want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Suffix(%q) = %q is not valid UTF-8", in, got)
		}
	}
}

func TestBatchOverview(t *testing.T) {
	salary := &Category{Name: "Salaire", Direction: Credit}
	food := &Category{Name: "Supermarché", Direction: Debit}
	b := Batch{
		Period: NewPeriod(2024, 3),
		Transactions: []Transaction{
			{Category: food, Amount: Cents(-1250)},
			{Category: salary, Amount: Cents(200000)},
			{Category: food, Amount: Cents(-750)},
		},
	}
	ov := b.Overview()
	if ov.Credits.Cents != 200000 || ov.Debits.Cents != -2000 || ov.Net().Cents != 198000 {
		t.Fatalf("unexpected totals: %+v", ov)
	}
	if len(ov.ByCategory) != 2 || ov.ByCategory[0].Name != "Supermarché" || ov.ByCategory[0].Count != 2 {
		t.Fatalf("unexpected categories: %+v", ov.ByCategory)
	}
	if counts := b.Counts(); counts["Supermarché"] != 2 || counts["Salaire"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
