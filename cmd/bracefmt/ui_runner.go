package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"bracefmt/internal/driver"
	"bracefmt/internal/ui"
)

type runOutcome struct {
	report *driver.Report
	err    error
}

// runPlanWithUI runs plan while a progress view renders its events.
// Leaving the view early cancels the run.
func runPlanWithUI(ctx context.Context, title string, plan *driver.Plan) (*driver.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.ProgressEvent, 256)
	outcomeCh := make(chan runOutcome, 1)
	files := plan.Files()

	go func() {
		report, err := plan.WithProgress(driver.ChannelSink{Ch: events}).Run(ctx)
		outcomeCh <- runOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()

	cancel()
	for range events {
		// drain so the run can finish after the view quit
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
