package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cadence-tools/cadence/internal/complete"
	"github.com/cadence-tools/cadence/internal/update"
)

func runTUI() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	log := newLogger()

	// The program is created after the workflow, so the adapters close over
	// a late-bound send.
	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}

	undo := complete.NewUndoRegistry(st, cfg.UndoWindow, log)
	wf := complete.NewWorkflow(
		st,
		update.NewProgramConfirmer(send),
		update.NewProgramNotifier(send),
		undo,
		cfg.Workflow(),
		log,
	)
	queue := complete.NewQueue(func(ctx context.Context, taskID string, opts complete.Options) {
		if _, err := wf.Complete(ctx, taskID, opts); err != nil {
			send(update.AppErrorMsg{Err: err})
			return
		}
		send(update.RefreshMsg{})
	}, log)

	model := update.NewModel(st, queue, wf, undo, cfg)
	program = tea.NewProgram(model)

	queue.Start()
	defer queue.Stop()

	_, err = program.Run()
	return err
}
