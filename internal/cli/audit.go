package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"releve/internal/amqp"
	"releve/internal/config"
	"releve/internal/log"
	"releve/internal/worker"
)

func newAuditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check published statement notifications against SQLite",
		Long: `Consume the statement notifications the amqp sink publishes and compare each
one with the statement the sqlite sink stored for the same run and month. Runs until
interrupted, then prints how many statements matched.`,
		Args: cobra.NoArgs,
		RunE: runAudit,
	}
}

func runAudit(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for audit")
	}
	logger := SetupLogger(cfg, cmd.ErrOrStderr())

	repo, err := InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
	if err != nil {
		return fmt.Errorf("connect AMQP: %w", err)
	}
	client.SetLogger(logger)
	defer client.Close()

	ctx, cancel := SignalContext(cmd.Context(), logger)
	defer cancel()

	w := worker.NewAuditWorker(repo, logger)
	err = client.ConsumeStatements(ctx, func(msg *amqp.StatementMessage) error {
		return w.HandleStatementMessage(ctx, msg)
	})

	counts := w.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "Relevés vérifiés : %d conformes, %d divergents, %d introuvables\n",
		counts[worker.VerdictMatch], counts[worker.VerdictMismatch], counts[worker.VerdictMissing])
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		logger.Error("Audit stopped", log.FieldError, err)
	}
	return err
}
