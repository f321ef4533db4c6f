// Package view holds the rendered panel: a list of processors, the selection control used to pick
// a crash target, and the clock display.
package view

import (
	"time"

	"github.com/determined-ai/memberpanel/pkg/model"
)

// ListContainer is the visible roster list.
type ListContainer interface {
	Clear()
	Append(text string)
}

// SelectControl is the control the operator uses to choose a processor.
type SelectControl interface {
	ClearOptions()
	AddOption(o Option)
}

// ClockDisplay shows the time of the most recent poll.
type ClockDisplay interface {
	SetTime(t time.Time)
}

// Document is the set of primitives reconciliation draws into.
type Document interface {
	List() ListContainer
	Select() SelectControl
	Clock() ClockDisplay
}

// Option is one entry of the selection control. Value carries the processor id so that choosing
// an option never depends on parsing its label.
type Option struct {
	Label string            `json:"label"`
	Value model.ProcessorID `json:"value"`
}

// LabelPrefix starts every option label.
const LabelPrefix = "Processor "

// OptionFor returns the selection option for a processor.
func OptionFor(p model.Processor) Option {
	return Option{Label: LabelPrefix + string(p.ID), Value: p.ID}
}

// EntryText returns the list text for a processor.
func EntryText(p model.Processor) string {
	return LabelPrefix + string(p.ID) + ", status: " + string(p.Status) + ", members: " + p.MembersString()
}
