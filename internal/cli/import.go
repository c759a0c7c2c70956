package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/popdyn/pkg/store"
)

// importCommand creates the import command, which loads a dataset into the
// configured store.
func (c *CLI) importCommand() *cobra.Command {
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "import [dataset]",
		Short: "Load a dataset into the configured store",
		Long: `Load a dataset's items and panel metrics into the configured store.

Items are inserted or replaced by id. The store is selected with the
store.driver and store.dsn configuration keys (or POPDYN_STORE_DRIVER and
POPDYN_STORE_DSN).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], !noMetrics)
		},
	}

	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "keep the stored panel metrics")

	return cmd
}

// runImport reads the dataset and writes it to the store.
func (c *CLI) runImport(ctx context.Context, input string, withMetrics bool) error {
	ds, err := c.loadDataset(ctx, input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}

	driver := storeDriver(c.Config.Store)
	if driver == store.DriverMemory {
		printWarning("The memory store does not persist; configure store.driver to keep the data")
	}

	repo, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	prog := newProgress(loggerFromContext(ctx))
	if err := importDataset(ctx, repo, ds.Items, ds.Metrics, withMetrics); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d items", len(ds.Items)))

	printSuccess("Imported %d items into %s store", len(ds.Items), driver)
	if withMetrics {
		printDetail("Panel metrics replaced")
	}
	return nil
}
