package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"releve/internal/config"
	"releve/internal/core"
	"releve/internal/log"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List statements stored in SQLite",
		Long: `List the statements the sqlite sink stored, newest month first. With --month
the newest statement of that month is summarised by category instead.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	cmd.Flags().String("account", "", "Only this account number (default ACCOUNT_NUMBER with --month, all accounts otherwise)")
	cmd.Flags().String("month", "", "Summarise one month, YYYY-MM")
	cmd.Flags().String("db", "", "SQLite database path (SQLITE_DB_PATH)")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cmd.Flags().Changed("db") {
		cfg.SQLiteDBPath, _ = cmd.Flags().GetString("db")
	}
	logger := SetupLogger(cfg, cmd.ErrOrStderr())

	repo, err := InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	account, _ := cmd.Flags().GetString("account")
	month, _ := cmd.Flags().GetString("month")
	out := cmd.OutOrStdout()

	if month != "" {
		p, err := core.ParsePeriod(month)
		if err != nil {
			return err
		}
		if account == "" {
			account = cfg.AccountNumber
		}
		ov, err := repo.ReadMonthOverview(cmd.Context(), account, p.Year, p.Month)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "CATÉGORIE\tOPÉRATIONS\tMONTANT (€)\n")
		for _, c := range ov.ByCategory {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, c.Count, c.Amount)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nTotal crédits : %s € · Total débits : %s € · Net : %s €\n", ov.Credits, ov.Debits, ov.Net())
		return nil
	}

	rows, err := repo.ListStatements(cmd.Context(), account)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "Aucun relevé enregistré")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PÉRIODE\tCOMPTE\tOPÉRATIONS\tSOLDE INITIAL (€)\tSOLDE FINAL (€)\tRUN")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", r.Period, r.Account, r.Count, r.Opening, r.Closing, r.RunID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	logger.Debug("Listed statements", log.FieldCount, len(rows))
	return nil
}
