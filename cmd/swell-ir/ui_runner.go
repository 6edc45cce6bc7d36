package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"swell/internal/driver"
	"swell/internal/pipeline"
	"swell/internal/ui"
)

type validateOutcome struct {
	results []driver.ValidateResult
	err     error
}

type lowerOutcome struct {
	results []driver.LowerResult
	err     error
}

func runValidateWithUI(ctx context.Context, title string, files []string, opts driver.ValidateOptions) ([]driver.ValidateResult, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan validateOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = pipeline.ChannelSink{Ch: events}
		res, err := driver.ValidateFiles(ctx, files, optsCopy)
		outcomeCh <- validateOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

func runLowerWithUI(ctx context.Context, title string, files []string, opts driver.LowerOptions) ([]driver.LowerResult, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan lowerOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = pipeline.ChannelSink{Ch: events}
		res, err := driver.LowerFiles(ctx, files, optsCopy)
		outcomeCh <- lowerOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
