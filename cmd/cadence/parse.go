package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadence-tools/cadence/internal/dates"
	"github.com/cadence-tools/cadence/internal/rule"
)

var parseFromFlag string

var parseCmd = &cobra.Command{
	Use:   "parse <rule text>",
	Short: "Parse a recurrence rule and preview upcoming dates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		opts := rule.Options{WeekStart: cfg.WeekStart}

		r, ok := rule.Parse(text, opts)
		if !ok {
			return fmt.Errorf("could not parse recurrence %q", text)
		}

		from := dates.Noon(time.Now())
		if parseFromFlag != "" {
			parsed, ok := dates.ParseDate(parseFromFlag, time.Local)
			if !ok {
				return fmt.Errorf("invalid --from date %q", parseFromFlag)
			}
			from = parsed
		}

		fmt.Printf("rule: %s\n", r.Describe())
		fmt.Printf("from: %s\n", dates.FormatDate(from))
		for i, next := range r.Preview(from, 5, opts) {
			fmt.Printf("  %d. %s (%s)\n", i+1, dates.FormatDate(next), next.Weekday())
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseFromFlag, "from", "", "preview from this date instead of today")
}
