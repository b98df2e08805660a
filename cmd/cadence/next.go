package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadence-tools/cadence/internal/dates"
	"github.com/cadence-tools/cadence/internal/model"
	"github.com/cadence-tools/cadence/internal/rule"
)

var nextCmd = &cobra.Command{
	Use:   "next <task id>",
	Short: "Show the next occurrence a completion would spawn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		task, err := st.GetTask(context.Background(), args[0])
		if err != nil {
			return err
		}
		meta := model.MetaFromTask(task, time.Local)
		if !meta.Recurring() {
			fmt.Println("not recurring; completing it will not spawn a successor")
			return nil
		}

		opts := rule.Options{WeekStart: cfg.WeekStart}
		r, ok := rule.Parse(meta.RepeatText, opts)
		if !ok {
			return fmt.Errorf("could not parse recurrence %q", meta.RepeatText)
		}
		next, ok := rule.Next(r, rule.NextInput{Due: meta.Due, AdvanceFrom: meta.AdvanceFrom}, time.Now(), opts)
		if !ok {
			return fmt.Errorf("no next occurrence for %q", meta.RepeatText)
		}

		fmt.Printf("rule: %s\n", r.Describe())
		if meta.Due != nil {
			fmt.Printf("due:  %s\n", dates.FormatDate(*meta.Due))
		}
		fmt.Printf("next: %s (%s)\n", dates.FormatDate(next), next.Weekday())
		return nil
	},
}
