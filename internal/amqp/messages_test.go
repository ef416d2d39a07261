package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"releve/internal/core"
)

func testStatement() core.Statement {
	cat := &core.Category{Name: "Salaire", Direction: core.Credit}
	shop := &core.Category{Name: "Courses", Direction: core.Debit}
	return core.Statement{
		RunID:   "run-9",
		Account: core.Account{Bank: "Banque Horizon", Number: "FR76 1234"},
		Batch: core.Batch{
			Period:  core.NewPeriod(2024, 5),
			Opening: core.Cents(1000),
			Closing: core.Cents(150500),
			Transactions: []core.Transaction{
				{Date: core.NewDate(2024, 5, 1), Category: cat, Amount: core.Cents(150000), Balance: core.Cents(151000)},
				{Date: core.NewDate(2024, 5, 3), Category: shop, Amount: core.Cents(-500), Balance: core.Cents(150500)},
			},
		},
	}
}

func TestNewStatementMessage(t *testing.T) {
	msg := NewStatementMessage(testStatement())
	if msg.RunID != "run-9" || msg.Account != "FR76 1234" || msg.Year != 2024 || msg.Month != 5 {
		t.Errorf("header = %+v", msg)
	}
	if msg.CreditsCents != 150000 || msg.DebitsCents != -500 || msg.Count != 2 {
		t.Errorf("totals = %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
	if err := msg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestStatementMessage_JSON(t *testing.T) {
	msg := NewStatementMessage(testStatement())
	msg.Timestamp = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	b, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := StatementMessageFromJSON(b)
	if err != nil {
		t.Fatalf("StatementMessageFromJSON() error = %v", err)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
	parsed.Timestamp = msg.Timestamp
	if *parsed != *msg {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
}

func TestStatementMessage_InvalidJSON(t *testing.T) {
	if _, err := StatementMessageFromJSON([]byte(`{"year": "not_a_number"}`)); err == nil {
		t.Error("StatementMessageFromJSON() should fail with invalid JSON")
	}
}

type fakePublisher struct {
	msgs []*StatementMessage
	err  error
}

func (f *fakePublisher) PublishStatement(_ context.Context, m *StatementMessage) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}
func (f *fakePublisher) Exchange() string   { return "releve" }
func (f *fakePublisher) RoutingKey() string { return "statements" }

func TestNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub)

	ref, err := n.Render(context.Background(), testStatement())
	if err != nil {
		t.Fatal(err)
	}
	if ref != "amqp:releve/statements#run-9-05/2024" {
		t.Errorf("ref = %q", ref)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].ClosingCents != 150500 {
		t.Errorf("published = %+v", pub.msgs)
	}

	pub.err = errors.New("nope")
	if _, err := n.Render(context.Background(), testStatement()); err == nil {
		t.Error("expected publish error")
	}
	if n.Name() != "amqp" {
		t.Errorf("Name() = %q", n.Name())
	}
}
