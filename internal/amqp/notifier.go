package amqp

import (
	"context"
	"fmt"

	"releve/internal/core"
	"releve/internal/render"
)

const Name = "amqp"

// Publisher is implemented by Client.
type Publisher interface {
	PublishStatement(ctx context.Context, msg *StatementMessage) error
	Exchange() string
	RoutingKey() string
}

// Notifier publishes one message per rendered statement.
type Notifier struct {
	pub Publisher
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub}
}

func (n *Notifier) Name() string { return Name }

// Stage runs the notification after the storing sinks, so consumers can read the
// statement it announces.
func (n *Notifier) Stage() render.Stage { return render.StageNotify }

// Render publishes the statement summary. The reference names the exchange, routing
// key, run and period.
func (n *Notifier) Render(ctx context.Context, st core.Statement) (string, error) {
	msg := NewStatementMessage(st)
	if err := n.pub.PublishStatement(ctx, msg); err != nil {
		return "", err
	}
	return fmt.Sprintf("amqp:%s/%s#%s-%s", n.pub.Exchange(), n.pub.RoutingKey(), st.RunID, st.Batch.Period), nil
}
