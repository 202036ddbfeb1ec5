package ui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"havoc/internal/driver"
)

// channelProgress implements driver.Progress by forwarding each unit's
// status transition onto a channel the Bubble Tea model drains, the way
// the donor CLI's ChannelSink forwards buildpipeline.Event.
type channelProgress struct {
	names []string
	ch    chan<- Event
}

func (p *channelProgress) OnUnitStart(index int) {
	p.ch <- Event{Index: index, Name: p.names[index], Status: StatusCompiling}
}

func (p *channelProgress) OnUnitDone(index int, err error) {
	if err != nil {
		p.ch <- Event{Index: index, Name: p.names[index], Status: StatusError, Detail: err.Error()}
		return
	}
	p.ch <- Event{Index: index, Name: p.names[index], Status: StatusDone}
}

// RunBatchWithProgress runs a batch build behind a Bubble Tea progress
// view, returning once both the TUI and the batch have finished.
func RunBatchWithProgress(title string, names []string, run func(progress driver.Progress) []driver.UnitResult) []driver.UnitResult {
	events := make(chan Event, 64)
	resultsCh := make(chan []driver.UnitResult, 1)

	go func() {
		results := run(&channelProgress{names: names, ch: events})
		resultsCh <- results
		close(events)
	}()

	model := NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, _ = program.Run()

	return <-resultsCh
}
