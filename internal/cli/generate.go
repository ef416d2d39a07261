package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"releve/internal/backend"
	"releve/internal/catalog"
	"releve/internal/config"
	"releve/internal/core"
	"releve/internal/generator"
	"releve/internal/log"
	"releve/internal/metrics"
)

var errNothingToResume = errors.New("nothing to generate")

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate statements for a range of months",
		Long: `Generate one statement per month from --from to --to inclusive. The closing
balance of each month is the opening balance of the next. Every statement is handed
to each configured sink (file, memory, sqlite, sheets, gcs, amqp).

With --resume the run starts the month after the newest statement stored in the
SQLite database, from that statement's closing balance.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	f := cmd.Flags()
	f.String("from", "", "First month, YYYY-MM (START_PERIOD)")
	f.String("to", "", "Last month, YYYY-MM (END_PERIOD)")
	f.IntP("count", "n", 0, "Transactions per month (TRANSACTIONS_PER_MONTH)")
	f.String("opening", "", "Opening balance in euros (OPENING_BALANCE)")
	f.Uint64("seed", 0, "Random seed, 0 for time based (SEED)")
	f.String("catalog", "", "TOML category catalog (CATALOG_FILE)")
	f.String("sinks", "", "Comma separated sinks (RENDER_SINKS)")
	f.StringP("out", "o", "", "Output directory for the file sink (OUTPUT_DIR)")
	f.Bool("resume", false, "Continue from the latest statement stored in SQLite")
	return cmd
}

// generateOverrides maps the flags that were set onto the loaded config.
func generateOverrides(cmd *cobra.Command) func(*config.Config) error {
	return func(cfg *config.Config) error {
		f := cmd.Flags()
		if f.Changed("from") {
			cfg.StartPeriod, _ = f.GetString("from")
		}
		if f.Changed("to") {
			cfg.EndPeriod, _ = f.GetString("to")
		}
		if f.Changed("count") {
			cfg.TransactionsPerMonth, _ = f.GetInt("count")
		}
		if f.Changed("opening") {
			cfg.OpeningBalance, _ = f.GetString("opening")
		}
		if f.Changed("seed") {
			cfg.Seed, _ = f.GetUint64("seed")
		}
		if f.Changed("catalog") {
			cfg.CatalogFile, _ = f.GetString("catalog")
		}
		if f.Changed("sinks") {
			s, _ := f.GetString("sinks")
			cfg.RenderSinks = config.SplitList(s)
		}
		if f.Changed("out") {
			cfg.OutputDir, _ = f.GetString("out")
		}
		return nil
	}
}

// resumeOverride moves the start period and opening balance to continue the newest
// stored statement of the configured account.
func resumeOverride(ctx context.Context, logger *log.Logger) func(*config.Config) error {
	return func(cfg *config.Config) error {
		repo, err := InitSQLite(logger, cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		defer repo.Close()

		closing, last, ok, err := repo.LatestClosing(ctx, cfg.AccountNumber)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("No stored statement to resume from", log.FieldAccount, cfg.AccountNumber)
			return nil
		}
		next := last.Next()
		if end, err := core.ParsePeriod(cfg.EndPeriod); err == nil && end.Before(next) {
			return fmt.Errorf("%w: latest stored statement is %s, end period is %s", errNothingToResume, last, end)
		}
		cfg.StartPeriod = next.Key()
		cfg.OpeningBalance = closing.String()
		logger.Info("Resuming from stored statement",
			log.FieldPeriod, last.String(),
			log.FieldClosing, closing.String())
		return nil
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	overrides := []func(*config.Config) error{generateOverrides(cmd)}
	if resume, _ := cmd.Flags().GetBool("resume"); resume {
		// The resume step logs before the configured logger exists.
		overrides = append(overrides, resumeOverride(ctx, log.New(log.Config{
			Component: log.ComponentCLI,
			Output:    cmd.ErrOrStderr(),
		})))
	}
	cfg, err := LoadConfig(overrides...)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg, cmd.ErrOrStderr())

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	from, to, err := cfg.Periods()
	if err != nil {
		return err
	}
	opening, err := cfg.Opening()
	if err != nil {
		return err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	sinks, err := backend.NewFactory(logger).CreateSinks(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Cleanup(); err != nil {
			logger.Warn("Sink cleanup failed", log.FieldError, err)
		}
	}()

	var samplerOpts []generator.SamplerOption
	if cfg.MaxDraws > 0 {
		samplerOpts = append(samplerOpts, generator.WithMaxDraws(cfg.MaxDraws))
	}
	sampler := generator.NewSampler(cat, generator.NewRand(cfg.Seed), samplerOpts...)

	recorder := metrics.New()
	runner := generator.NewRunner(sampler, sinks.Fanout,
		generator.WithObserver(recorder),
		generator.WithLogger(logger),
		generator.WithAccount(core.Account{Bank: cfg.BankName, Number: cfg.AccountNumber}))

	runCtx, cancel := SignalContext(ctx, logger)
	defer cancel()

	result, runErr := runner.Run(runCtx, generator.RunRequest{
		From:      from,
		To:        to,
		PerPeriod: cfg.TransactionsPerMonth,
		Opening:   opening,
	})
	printPeriods(cmd, result)

	if cfg.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("Failed to write metrics", log.FieldPath, cfg.MetricsTextfile, log.FieldError, err)
		}
	}
	if runErr != nil {
		logger.Error("Generation failed", log.FieldRunID, result.RunID, log.FieldError, runErr)
		return runErr
	}
	return nil
}

func printPeriods(cmd *cobra.Command, result generator.RunResult) {
	out := cmd.OutOrStdout()
	for _, pr := range result.Periods {
		refs := strings.Join(pr.Refs, ", ")
		if refs == "" {
			refs = "aucun artefact"
		}
		fmt.Fprintf(out, "Relevé généré : %s pour %s\n", refs, pr.Period)
		fmt.Fprintf(out, "Solde final : %s €\n", pr.Closing)
	}
}
