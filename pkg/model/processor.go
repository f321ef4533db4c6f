package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ProcessorID identifies a processor within a snapshot. Backends may encode it as a JSON string
// or a JSON number; both decode to the same textual id.
type ProcessorID string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (id *ProcessorID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch value := v.(type) {
	case string:
		*id = ProcessorID(value)
	case json.Number:
		*id = ProcessorID(value.String())
	default:
		return errors.Errorf("invalid processor id: %s", b)
	}
	return nil
}

// ProcessorStatus is the liveness of a simulated processor as reported by the backend.
type ProcessorStatus string

// Processor statuses.
const (
	StatusAlive   ProcessorStatus = "ALIVE"
	StatusCrashed ProcessorStatus = "CRASHED"
)

// Processor is a read-only copy of one simulated processor and its view of the group.
type Processor struct {
	ID      ProcessorID     `json:"id"`
	Status  ProcessorStatus `json:"status"`
	Members []ProcessorID   `json:"members"`
}

// MembersString joins the membership view the way the panel displays it.
func (p Processor) MembersString() string {
	ids := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, string(m))
	}
	return strings.Join(ids, ",")
}

// Snapshot is the complete roster returned by a single retrieval, in backend order.
type Snapshot []Processor
