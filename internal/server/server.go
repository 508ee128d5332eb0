// Package server exposes simulation sessions over HTTP, Server-Sent Events
// and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/lifeshock/internal/logging"
	"github.com/theirongolddev/lifeshock/internal/scenario"
	"github.com/theirongolddev/lifeshock/internal/sim"
)

// Recorder persists finished runs.
type Recorder interface {
	SaveRun(r sim.Result, player string) (string, error)
}

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	Scenario     scenario.Scenario
	History      Recorder // nil disables recording
	Log          logrus.FieldLogger
	Clock        sim.Clock
}

// Event is one session update retained for replay and streamed to
// subscribers.
type Event struct {
	ID         int64           `json:"id"`
	Type       string          `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	Session    string          `json:"session"`
	Transition *sim.Transition `json:"transition,omitempty"`
	Snapshot   sim.Snapshot    `json:"snapshot"`
	Result     *sim.Result     `json:"result,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	UptimeSec       int64     `json:"uptime_sec"`
	Scenario        string    `json:"scenario"`
	Sessions        int       `json:"sessions"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	SocketCount     int       `json:"socket_count"`
	RunsRecorded    int64     `json:"runs_recorded"`
	LastError       string    `json:"last_error,omitempty"`
}

// Server owns the live sessions.
type Server struct {
	cfg Config
	log logrus.FieldLogger
	hub *Hub

	mu        sync.RWMutex
	startedAt time.Time
	sessions  map[string]*entry
	recorded  int64
	lastError string

	saves sync.WaitGroup
}

// entry is one live session and its event log.
type entry struct {
	id      string
	player  string
	created time.Time
	sess    *sim.Session
	done    chan struct{}

	mu          sync.Mutex
	nextEventID int64
	events      []Event
	nextSubID   int
	subs        map[int]chan Event
}

// New returns a server with the provided config.
func New(cfg Config) *Server {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Scenario.Catalog.Categories == nil {
		cfg.Scenario = scenario.Default()
	}
	if cfg.Log == nil {
		cfg.Log = logging.Discard()
	}
	if cfg.Clock == nil {
		cfg.Clock = sim.RealClock()
	}

	return &Server{
		cfg:       cfg,
		log:       cfg.Log,
		hub:       NewHub(cfg.Log),
		startedAt: time.Now(),
		sessions:  make(map[string]*entry),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/scenario", s.handleScenario).Methods(http.MethodGet)

	r.HandleFunc("/v1/sessions", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions", s.handleList).Methods(http.MethodGet)

	sr := r.PathPrefix("/v1/sessions/{id}").Subrouter()
	sr.HandleFunc("", s.handleGet).Methods(http.MethodGet)
	sr.HandleFunc("", s.handleDelete).Methods(http.MethodDelete)
	sr.HandleFunc("/select", s.handleSelect).Methods(http.MethodPost)
	sr.HandleFunc("/{action:start|confirm|finish|reset}", s.handleAction).Methods(http.MethodPost)
	sr.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	sr.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	sr.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	return r
}

// Run serves HTTP until ctx is canceled, then closes every session and
// waits for pending history writes.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.WithField("addr", s.cfg.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeAll()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.saves.Wait()
	return err
}

// CreateSession starts a new session in the Intro phase.
func (s *Server) CreateSession(player string) (string, sim.Snapshot) {
	id := uuid.NewString()
	e := &entry{
		id:      id,
		player:  player,
		created: time.Now(),
		done:    make(chan struct{}),
		subs:    make(map[int]chan Event),
	}
	e.sess = sim.NewSession(s.cfg.Scenario, s.cfg.Clock, func(u sim.Update) {
		s.publish(e, u)
	})
	e.sess.Observe(logging.Transitions(s.log.WithField("session", id)))

	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"session": id, "player": player}).Info("session created")
	return id, e.sess.Snapshot()
}

// CloseSession cancels the session's timers and forgets it.
func (s *Server) CloseSession(id string) bool {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.closeEntry(e)
	s.log.WithField("session", id).Info("session closed")
	return true
}

func (s *Server) closeEntry(e *entry) {
	e.sess.Close()
	close(e.done)
	s.hub.CloseSession(e.id)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.sessions))
	for id, e := range s.sessions {
		entries = append(entries, e)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, e := range entries {
		s.closeEntry(e)
	}
}

func (s *Server) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	return e, ok
}

// publish runs with the session lock held and must not block.
func (s *Server) publish(e *entry, u sim.Update) {
	e.mu.Lock()
	e.nextEventID++
	ev := Event{
		ID:         e.nextEventID,
		Type:       u.Kind,
		Timestamp:  time.Now(),
		Session:    e.id,
		Transition: u.Transition,
		Snapshot:   u.Snapshot,
		Result:     u.Result,
	}
	e.events = append(e.events, ev)
	if len(e.events) > s.cfg.EventsBuffer {
		e.events = e.events[len(e.events)-s.cfg.EventsBuffer:]
	}
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	e.mu.Unlock()

	s.hub.Send(e.id, Message{Type: ev.Type, Payload: ev, Sender: "server"})

	if u.Result != nil && s.cfg.History != nil {
		s.saves.Add(1)
		go s.record(e.player, *u.Result)
	}
}

func (s *Server) record(player string, r sim.Result) {
	defer s.saves.Done()

	id, err := s.cfg.History.SaveRun(r, player)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastError = err.Error()
		s.log.WithError(err).Warn("saving run failed")
		return
	}
	s.recorded++
	s.log.WithFields(logrus.Fields{"run_id": id, "balance": r.Balance, "survived": r.Survived}).Info("run recorded")
}

func (s *Server) status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:    s.startedAt,
		UptimeSec:    int64(time.Since(s.startedAt).Seconds()),
		Scenario:     s.cfg.Scenario.Name,
		Sessions:     len(s.sessions),
		SocketCount:  s.hub.Count(),
		RunsRecorded: s.recorded,
		LastError:    s.lastError,
	}
	for _, e := range s.sessions {
		e.mu.Lock()
		st.EventCount += len(e.events)
		st.SubscriberCount += len(e.subs)
		e.mu.Unlock()
	}
	return st
}

func (e *entry) addSubscriber(ch chan Event) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextSubID++
	id := e.nextSubID
	e.subs[id] = ch
	return id
}

func (e *entry) removeSubscriber(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, id)
}

func (e *entry) history() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := make([]Event, len(e.events))
	copy(events, e.events)
	return events
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
