package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mbellini/effwatch/internal/config"
	"github.com/mbellini/effwatch/internal/report"
	"github.com/mbellini/effwatch/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored aggregation snapshots",
	RunE:  runHistory,
}

var (
	historyLimit  int
	historyConfig string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum snapshots to list")
	historyCmd.Flags().StringVar(&historyConfig, "config", "config.yaml", "Config file path")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(historyConfig)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Store.DatabaseURL, cfg.Store.AuthToken)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer s.Close()

	entries, err := s.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no snapshots stored yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PERIOD\tSTART\tEND\tACTIVE\tTOTAL\tSTORED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.PeriodType,
			e.PeriodStart.Format("2006-01-02"),
			e.PeriodEnd.Format("2006-01-02"),
			report.FormatDuration(e.ActiveDuration),
			report.FormatDuration(e.TotalDuration),
			e.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}
