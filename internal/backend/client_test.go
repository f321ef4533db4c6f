package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/determined-ai/memberpanel/pkg/model"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

type recorded struct {
	method string
	path   string
	body   map[string]interface{}
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) get() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func newSimulator(t *testing.T, status int, roster string) (*Client, *recorder) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recorded{method: r.Method, path: r.URL.Path}
		if bs, _ := io.ReadAll(r.Body); len(bs) > 0 {
			_ = json.Unmarshal(bs, &call.body)
		}
		rec.mu.Lock()
		rec.calls = append(rec.calls, call)
		rec.mu.Unlock()
		w.WriteHeader(status)
		if r.URL.Path == DefaultRosterPath {
			_, _ = w.Write([]byte(roster))
		}
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, DefaultPaths(), 0)
	require.NoError(t, err)
	return c, rec
}

func TestFetchSnapshot(t *testing.T) {
	c, calls := newSimulator(t, http.StatusOK,
		`[{"id":"1","status":"ALIVE","members":["1","2"]},{"id":"2","status":"CRASHED","members":["1"]}]`)

	snap, err := c.FetchSnapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.Snapshot{
		{ID: "1", Status: model.StatusAlive, Members: []model.ProcessorID{"1", "2"}},
		{ID: "2", Status: model.StatusCrashed, Members: []model.ProcessorID{"1"}},
	}, snap)
	require.Equal(t, []recorded{{method: http.MethodGet, path: "/all-processors"}}, calls.get())
}

func TestFetchSnapshotFailures(t *testing.T) {
	c, _ := newSimulator(t, http.StatusInternalServerError, "")
	snap, err := c.FetchSnapshot(context.Background())
	require.Nil(t, snap)
	var serr StatusError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, http.StatusInternalServerError, serr.Code)

	c, _ = newSimulator(t, http.StatusOK, `{"not": "a list"}`)
	_, err = c.FetchSnapshot(context.Background())
	require.ErrorContains(t, err, "decoding roster")
}

func TestInitAndCrash(t *testing.T) {
	c, calls := newSimulator(t, http.StatusOK, "")

	require.NoError(t, c.Init(context.Background(), simconfig.Defaults()))
	require.NoError(t, c.Crash(context.Background(), "12"))

	got := calls.get()
	require.Len(t, got, 2)
	initCall, crashCall := got[0], got[1]
	require.Equal(t, "/init", initCall.path)
	require.Equal(t, http.MethodPost, initCall.method)
	require.Equal(t, map[string]interface{}{
		"num_processors":       float64(3),
		"max_clock_sync_error": "1",
		"broadcast_delay":      "1",
		"datagram_delay":       "1",
		"check_in_period":      "5",
	}, initCall.body)

	require.Equal(t, "/crash", crashCall.path)
	require.Equal(t, map[string]interface{}{"processor_id": "12"}, crashCall.body)
}

func TestCommandStatusError(t *testing.T) {
	c, _ := newSimulator(t, http.StatusBadRequest, "")
	err := c.Crash(context.Background(), "3")
	require.EqualError(t, err, "crashing processor 3: simulator returned status 400 (Bad Request)")
}

func TestAlternateInitPath(t *testing.T) {
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
	}))
	defer srv.Close()

	routes := DefaultPaths()
	routes.Init = "/init-processors"
	c, err := New(srv.URL+"/sim", routes, 0)
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background(), simconfig.Defaults()))
	require.Equal(t, "/sim/init-processors", <-paths)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:5000", DefaultPaths(), 0)
	require.Error(t, err)
}
