package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent refresh runs from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rec := openRecorder(cfg)
		defer rec.Close()

		runs, err := rec.RecentRefreshes(historyLimit)
		if err != nil {
			return fmt.Errorf("load refresh runs: %w", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "started\tsymbol\ttrigger\tcandles\tsynthetic\tduration\terror")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%v\t%s\n",
				r.StartedAt.Format(time.RFC3339), r.Symbol, r.Trigger, r.Candles, r.Synthetic,
				r.Duration.Round(time.Millisecond), r.Err)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
}
