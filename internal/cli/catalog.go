package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"releve/internal/catalog"
	"releve/internal/config"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect transaction category catalogs",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the categories and the per-month capacity",
		Long: `Print every category with its amount range, direction and monthly cap.
Without --catalog (or CATALOG_FILE) the built-in catalog is shown.`,
		Args: cobra.NoArgs,
		RunE: runCatalogShow,
	}
	show.Flags().String("catalog", "", "TOML category catalog (CATALOG_FILE)")

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a TOML catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogValidate,
	}

	cmd.AddCommand(show, validate)
	return cmd
}

func runCatalogShow(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("catalog")
	if !cmd.Flags().Changed("catalog") {
		path = catalogFileFromEnv()
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATÉGORIE\tSENS\tMIN (€)\tMAX (€)\tMAX/MOIS")
	for _, c := range cat.Categories() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", c.Name, c.Direction, c.Min, c.Max, c.MaxPerPeriod)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d catégories, au plus %d opérations par mois\n", cat.Len(), cat.Capacity())
	return nil
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	cat, err := catalog.LoadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s : %d catégories valides, capacité %d opérations par mois\n",
		args[0], cat.Len(), cat.Capacity())
	return nil
}

func catalogFileFromEnv() string {
	return config.Load().CatalogFile
}
