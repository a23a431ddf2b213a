package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"Farjax/internal/api"
	"Farjax/internal/calculator"
	"Farjax/internal/model"
	"Farjax/internal/notifier"
	"Farjax/internal/scheduler"

	"github.com/spf13/cobra"
)

var (
	onceDays    int
	onceMinutes int
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run one refresh and print the estimate table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rec := openRecorder(cfg)
		defer rec.Close()

		sched := scheduler.NewScheduler(context.Background(), newCollector(cfg, rec), strategyParams(cfg), rec)
		snap, err := sched.Refresh("once")
		if err != nil {
			return err
		}

		p := api.ViewParams{DaysBack: cfg.Display.DaysBack, MinutesAhead: cfg.Display.MinutesAhead}
		if cmd.Flags().Changed("days") {
			p.DaysBack = onceDays
		}
		if cmd.Flags().Changed("minutes-ahead") {
			p.MinutesAhead = onceMinutes
		}
		printTable(api.BuildView(snap, time.Now(), p))
		fmt.Println()
		fmt.Println(notifier.FormatNextEstimate(snap))
		return nil
	},
}

func init() {
	onceCmd.Flags().IntVar(&onceDays, "days", 3, "trading days to show")
	onceCmd.Flags().IntVar(&onceMinutes, "minutes-ahead", 15, "minutes past now to show")
}

func printTable(v api.View) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "date\ttime\tclose\toverall\tlast td\taverage\tdow avg\tbucket\t")
	for _, c := range v.Candles {
		price := "-"
		if c.HasClose() {
			price = calculator.FormatDollars(c.Close.Float64)
		}
		bucket := ""
		if e := c.Estimate(model.StrategyOverall); e != nil {
			bucket = string(e.Bucket)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", c.SessionDate, c.TimeOfDay, price,
			estimateCell(&c, model.StrategyOverall),
			estimateCell(&c, model.StrategyLastTradingDay),
			estimateCell(&c, model.StrategyPeriodAverage),
			estimateCell(&c, model.StrategyDayOfWeekAverage),
			bucket)
	}
	w.Flush()
}

func estimateCell(c *model.Candle, s model.Strategy) string {
	e := c.Estimate(s)
	if e == nil {
		return "-"
	}
	return calculator.FormatDollars(e.EstimatedClose)
}
