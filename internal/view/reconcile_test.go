package view

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/determined-ai/memberpanel/pkg/model"
)

func twoProcessors() model.Snapshot {
	return model.Snapshot{
		{ID: "1", Status: model.StatusAlive, Members: []model.ProcessorID{"1", "2"}},
		{ID: "2", Status: model.StatusCrashed, Members: []model.ProcessorID{"1"}},
	}
}

// fakeDocument records calls so reconciliation can be checked against the bare contract.
type fakeDocument struct {
	entries []string
	options []Option
	clears  int
}

func (d *fakeDocument) List() ListContainer   { return fakeList{d} }
func (d *fakeDocument) Select() SelectControl { return fakeSelect{d} }
func (d *fakeDocument) Clock() ClockDisplay   { return nil }

type fakeList struct{ d *fakeDocument }

func (l fakeList) Clear()             { l.d.entries = nil }
func (l fakeList) Append(text string) { l.d.entries = append(l.d.entries, text) }

type fakeSelect struct{ d *fakeDocument }

func (s fakeSelect) AddOption(o Option) { s.d.options = append(s.d.options, o) }

func (s fakeSelect) ClearOptions() {
	s.d.options = nil
	s.d.clears++
}

func TestReconcileFullRefresh(t *testing.T) {
	doc := &fakeDocument{}
	Reconcile(doc, twoProcessors(), true)

	require.Equal(t, []string{
		"Processor 1, status: ALIVE, members: 1,2",
		"Processor 2, status: CRASHED, members: 1",
	}, doc.entries)
	require.Equal(t, []Option{
		{Label: "Processor 1", Value: "1"},
		{Label: "Processor 2", Value: "2"},
	}, doc.options)
}

func TestReconcileBackgroundLeavesSelection(t *testing.T) {
	doc := &fakeDocument{}
	Reconcile(doc, twoProcessors(), true)
	require.Equal(t, 1, doc.clears)

	shrunk := twoProcessors()[:1]
	Reconcile(doc, shrunk, false)

	require.Equal(t, []string{"Processor 1, status: ALIVE, members: 1,2"}, doc.entries)
	require.Len(t, doc.options, 2)
	require.Equal(t, 1, doc.clears, "background refresh must not touch the selection control")
}

func TestReconcileReplacesStaleEntries(t *testing.T) {
	doc := &fakeDocument{entries: []string{"left over"}, options: []Option{{Label: "Processor 9", Value: "9"}}}
	Reconcile(doc, model.Snapshot{}, true)
	require.Empty(t, doc.entries)
	require.Empty(t, doc.options)
}

func TestReconcileIdempotent(t *testing.T) {
	for _, full := range []bool{true, false} {
		page := NewPage()
		page.Render(twoProcessors(), true)

		page.Render(twoProcessors(), full)
		first := page.State()
		page.Render(twoProcessors(), full)
		second := page.State()

		if diff := cmp.Diff(first.Entries, second.Entries); diff != "" {
			t.Errorf("entries changed on identical reconcile (full=%v): %s", full, diff)
		}
		if diff := cmp.Diff(first.Options, second.Options); diff != "" {
			t.Errorf("options changed on identical reconcile (full=%v): %s", full, diff)
		}
	}
}

func TestPageOptionsVersion(t *testing.T) {
	page := NewPage()
	page.Render(twoProcessors(), true)
	full := page.State()
	require.Len(t, full.Entries, 2)
	require.Len(t, full.Options, 2)

	page.Render(append(twoProcessors(), model.Processor{ID: "3", Status: model.StatusAlive}), false)
	background := page.State()
	require.Len(t, background.Entries, 3)
	require.Len(t, background.Options, 2)
	require.Equal(t, full.OptionsVersion, background.OptionsVersion)
	require.Greater(t, background.Version, full.Version)
}

func TestPageSubscribe(t *testing.T) {
	page := NewPage()
	updates, unsubscribe := page.Subscribe()

	initial := <-updates
	require.Zero(t, initial.Version)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	page.SetClock(now)
	page.Render(twoProcessors(), true)

	// Only the latest state is kept for a subscriber that has not read yet.
	latest := <-updates
	require.Equal(t, uint64(2), latest.Version)
	require.Equal(t, now, latest.Clock)
	require.Len(t, latest.Entries, 2)
	require.Contains(t, latest.Text(), "Processor 2, status: CRASHED, members: 1")

	unsubscribe()
	unsubscribe()
	_, open := <-updates
	require.False(t, open)

	page.Render(twoProcessors(), false)
}
