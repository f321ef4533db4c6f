package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/determined-ai/memberpanel/internal/backend"
	"github.com/determined-ai/memberpanel/pkg/model"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

// Simulator is an in-memory stand-in for the process-group simulator. Every live processor is a
// member of every live processor's group.
type Simulator struct {
	*httptest.Server

	mu         sync.Mutex
	processors map[model.ProcessorID]model.ProcessorStatus
	inits      []simconfig.Config
	crashes    []model.ProcessorID
	failRoster bool
}

// NewSimulator starts a simulator listening on the default routes.
func NewSimulator() *Simulator {
	s := &Simulator{processors: map[model.ProcessorID]model.ProcessorStatus{}}
	mux := http.NewServeMux()
	mux.HandleFunc(backend.DefaultInitPath, s.handleInit)
	mux.HandleFunc(backend.DefaultCrashPath, s.handleCrash)
	mux.HandleFunc(backend.DefaultRosterPath, s.handleRoster)
	s.Server = httptest.NewServer(mux)
	return s
}

// SetRosterFailing makes roster requests fail with a 503 until reset.
func (s *Simulator) SetRosterFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRoster = fail
}

// Inits returns every configuration the simulator was started with.
func (s *Simulator) Inits() []simconfig.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]simconfig.Config(nil), s.inits...)
}

// Crashes returns every processor a crash was requested for.
func (s *Simulator) Crashes() []model.ProcessorID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ProcessorID(nil), s.crashes...)
}

func (s *Simulator) handleInit(w http.ResponseWriter, r *http.Request) {
	var cfg simconfig.Config
	if r.Method != http.MethodPost || json.NewDecoder(r.Body).Decode(&cfg) != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits = append(s.inits, cfg)
	s.processors = map[model.ProcessorID]model.ProcessorStatus{}
	for i := 1; i <= cfg.NumProcessors; i++ {
		s.processors[model.ProcessorID(strconv.Itoa(i))] = model.StatusAlive
	}
}

func (s *Simulator) handleCrash(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProcessorID model.ProcessorID `json:"processor_id"`
	}
	if r.Method != http.MethodPost || json.NewDecoder(r.Body).Decode(&req) != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processors[req.ProcessorID]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.crashes = append(s.crashes, req.ProcessorID)
	s.processors[req.ProcessorID] = model.StatusCrashed
}

func (s *Simulator) handleRoster(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRoster {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	ids := make([]model.ProcessorID, 0, len(s.processors))
	for id := range s.processors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(string(ids[i]))
		b, _ := strconv.Atoi(string(ids[j]))
		return a < b
	})

	var alive []model.ProcessorID
	for _, id := range ids {
		if s.processors[id] == model.StatusAlive {
			alive = append(alive, id)
		}
	}

	snap := model.Snapshot{}
	for _, id := range ids {
		p := model.Processor{ID: id, Status: s.processors[id], Members: []model.ProcessorID{}}
		if p.Status == model.StatusAlive {
			p.Members = alive
		}
		snap = append(snap, p)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}
