package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"releve/internal/core"
)

// StatementMessage announces that a statement was generated. It carries the header
// only; consumers read the lines from their own sink.
type StatementMessage struct {
	RunID        string    `json:"run_id"`
	Bank         string    `json:"bank"`
	Account      string    `json:"account"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	OpeningCents int64     `json:"opening_cents"`
	ClosingCents int64     `json:"closing_cents"`
	CreditsCents int64     `json:"credits_cents"`
	DebitsCents  int64     `json:"debits_cents"`
	Count        int       `json:"count"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewStatementMessage summarizes st.
func NewStatementMessage(st core.Statement) *StatementMessage {
	ov := st.Batch.Overview()
	return &StatementMessage{
		RunID:        st.RunID,
		Bank:         st.Account.Bank,
		Account:      st.Account.Number,
		Year:         st.Batch.Period.Year,
		Month:        st.Batch.Period.Month,
		OpeningCents: st.Batch.Opening.Cents,
		ClosingCents: st.Batch.Closing.Cents,
		CreditsCents: ov.Credits.Cents,
		DebitsCents:  ov.Debits.Cents,
		Count:        len(st.Batch.Transactions),
		Timestamp:    time.Now(),
	}
}

// Period returns the statement month.
func (m *StatementMessage) Period() core.Period {
	return core.NewPeriod(m.Year, m.Month)
}

// Validate checks the fields a consumer relies on.
func (m *StatementMessage) Validate() error {
	if err := m.Period().Validate(); err != nil {
		return err
	}
	if m.Account == "" {
		return fmt.Errorf("statement message without account")
	}
	if m.OpeningCents+m.CreditsCents+m.DebitsCents != m.ClosingCents {
		return fmt.Errorf("statement message %s: opening %d + credits %d + debits %d != closing %d",
			m.Period(), m.OpeningCents, m.CreditsCents, m.DebitsCents, m.ClosingCents)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *StatementMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StatementMessageFromJSON creates a message from JSON bytes
func StatementMessageFromJSON(data []byte) (*StatementMessage, error) {
	var msg StatementMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
