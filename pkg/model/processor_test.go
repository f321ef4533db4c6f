package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshotDecodesMixedIDs(t *testing.T) {
	raw := `[
		{"id": 1, "status": "ALIVE", "members": [1, "2"]},
		{"id": "2", "status": "CRASHED", "members": ["1"]}
	]`

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	require.Equal(t, Snapshot{
		{ID: "1", Status: StatusAlive, Members: []ProcessorID{"1", "2"}},
		{ID: "2", Status: StatusCrashed, Members: []ProcessorID{"1"}},
	}, snap)
	require.Equal(t, "1,2", snap[0].MembersString())
}

func TestProcessorIDRejectsObjects(t *testing.T) {
	var id ProcessorID
	require.Error(t, json.Unmarshal([]byte(`{"id": 1}`), &id))
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1500ms"`), &d))
	require.Equal(t, Duration(1500*time.Millisecond), d)

	require.NoError(t, json.Unmarshal([]byte(`2000000000`), &d))
	require.Equal(t, Duration(2*time.Second), d)

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &d))

	b, err := json.Marshal(Duration(time.Second))
	require.NoError(t, err)
	require.JSONEq(t, `"1s"`, string(b))
}
