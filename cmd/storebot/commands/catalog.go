package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	corecmd "github.com/villagegaming/storebot/core/cmd"
	"github.com/villagegaming/storebot/core/logger"
	"github.com/villagegaming/storebot/internal/app"
	"github.com/villagegaming/storebot/internal/catalog"
	"github.com/villagegaming/storebot/internal/config"
	"github.com/villagegaming/storebot/internal/screen"
)

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Fetch the catalog once and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := corecmd.ResolveConfigPath(configPath, configEnvVar, defaultConfigPath)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			a, err := app.Bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
				_ = logger.Shutdown()
			}()

			items := a.Catalog().ListItems(cmd.Context())
			if len(items) == 0 {
				return fmt.Errorf("catalog: no items (source %s unavailable or empty)", cfg.Catalog.Source)
			}
			return printItems(cmd.OutOrStdout(), items)
		},
	}
}

func printItems(w io.Writer, items []catalog.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tDISCOUNT\tPLATFORMS")
	for _, it := range items {
		discount := "-"
		if pct, ok := it.Discount(); ok {
			discount = fmt.Sprintf("-%d%%", pct)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			it.ID, it.Title, screen.FormatPrice(it.Price), discount, strings.Join(it.Platforms, ", "))
	}
	return tw.Flush()
}
