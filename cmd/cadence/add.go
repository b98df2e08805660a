package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadence-tools/cadence/internal/dates"
	"github.com/cadence-tools/cadence/internal/model"
	"github.com/cadence-tools/cadence/internal/rule"
)

var (
	addDueFlag    string
	addStartFlag  string
	addDeferFlag  string
	addRepeatFlag string
)

var addCmd = &cobra.Command{
	Use:   "add <task text>",
	Short: "Add a task",
	Long: `Add a task. Date flags accept natural phrases ("tomorrow",
"next friday", "in 2 weeks") as well as explicit dates. --repeat takes a
recurrence rule like "every month on the 15th".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		text := strings.Join(args, " ")
		ctx := context.Background()
		now := time.Now()

		attrs := map[model.AttrKind]string{}
		for _, entry := range []struct {
			flag string
			kind model.AttrKind
		}{
			{addDueFlag, model.AttrDue},
			{addStartFlag, model.AttrStart},
			{addDeferFlag, model.AttrDefer},
		} {
			if entry.flag == "" {
				continue
			}
			when, ok := dates.ParsePhrase(entry.flag, now, cfg.WeekStart)
			if !ok {
				return fmt.Errorf("could not understand date %q", entry.flag)
			}
			attrs[entry.kind] = dates.FormatDate(when)
		}
		if addRepeatFlag != "" {
			if _, ok := rule.Parse(addRepeatFlag, rule.Options{WeekStart: cfg.WeekStart}); !ok {
				return fmt.Errorf("could not parse recurrence %q", addRepeatFlag)
			}
			attrs[model.AttrRepeat] = addRepeatFlag
		}

		existing, err := st.ListTasks(ctx)
		if err != nil {
			return err
		}
		id, err := st.CreateTask(ctx, "", len(existing), text)
		if err != nil {
			return err
		}
		for kind, value := range attrs {
			if err := st.EnsureScheduledAttribute(ctx, id, kind, value); err != nil {
				return err
			}
		}

		fmt.Printf("added %s\n", id)
		if due, ok := attrs[model.AttrDue]; ok {
			fmt.Printf("  due %s\n", due)
		}
		if rep, ok := attrs[model.AttrRepeat]; ok {
			fmt.Printf("  repeats %s\n", rep)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addDueFlag, "due", "", "due date")
	addCmd.Flags().StringVar(&addStartFlag, "start", "", "start date")
	addCmd.Flags().StringVar(&addDeferFlag, "defer", "", "defer date")
	addCmd.Flags().StringVar(&addRepeatFlag, "repeat", "", "recurrence rule")
}
