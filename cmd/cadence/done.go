package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/cadence-tools/cadence/internal/complete"
	"github.com/cadence-tools/cadence/internal/rule"
)

var doneBulkFlag bool

var doneCmd = &cobra.Command{
	Use:   "done <task id> [task id...]",
	Short: "Complete tasks, spawning next occurrences for recurring ones",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		log := newLogger()
		undo := complete.NewUndoRegistry(st, cfg.UndoWindow, log)
		wf := complete.NewWorkflow(st, &promptConfirmer{}, &printNotifier{}, undo, cfg.Workflow(), log)

		bulk := doneBulkFlag || len(args) > 1
		opts := complete.Options{UserInitiated: true, Bulk: bulk}

		ctx := context.Background()
		for _, id := range args {
			wf.NoteUserClick(id)
			outcome, err := wf.Complete(ctx, id, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			if outcome.State == complete.StateSkipped && outcome.Reason != "" {
				fmt.Printf("%s: skipped (%s)\n", id, outcome.Reason)
			}
		}
		return nil
	},
}

func init() {
	doneCmd.Flags().BoolVar(&doneBulkFlag, "bulk", false, "bulk mode: never prompt, use the configured advance default")
}

// promptConfirmer asks on the terminal with huh forms.
type promptConfirmer struct{}

func (promptConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	var yes bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(question).Affirmative("Complete").Negative("Cancel").Value(&yes),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return yes, nil
}

func (promptConfirmer) ChooseAdvanceMode(ctx context.Context, preview string) (rule.AdvanceMode, bool, error) {
	var mode string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Advance this series from which date?").
			Description(preview).
			Options(
				huh.NewOption("The scheduled due date", string(rule.AdvanceFromDue)),
				huh.NewOption("The completion date", string(rule.AdvanceFromCompletion)),
				huh.NewOption("Cancel", ""),
			).
			Value(&mode),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", false, err
	}
	if mode == "" {
		return "", false, nil
	}
	return rule.AdvanceMode(mode), true, nil
}

// printNotifier reports workflow results on stdout. Undo is advertised but
// resolved through the interactive UI, not the one-shot command.
type printNotifier struct{}

func (printNotifier) Notify(message string) {
	fmt.Println(message)
}

func (printNotifier) NotifyUndoable(message string, _ func()) {
	fmt.Println(message)
}
