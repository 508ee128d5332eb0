package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/theirongolddev/lifeshock/internal/scenario"
	"github.com/theirongolddev/lifeshock/internal/sim"
)

type createRequest struct {
	Player string `json:"player"`
}

type selectRequest struct {
	Category string `json:"category"`
	Option   string `json:"option"`
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID        string       `json:"id"`
	Player    string       `json:"player,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Snapshot  sim.Snapshot `json:"snapshot"`
	Result    *sim.Result  `json:"result,omitempty"`
}

type errorBody struct {
	Error    string        `json:"error"`
	Snapshot *sim.Snapshot `json:"snapshot,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string, snap *sim.Snapshot) {
	writeJSON(w, code, errorBody{Error: msg, Snapshot: snap})
}

// statusFor maps engine rejections to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sim.ErrClosed):
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

func (s *Server) view(e *entry) SessionView {
	v := SessionView{
		ID:        e.id,
		Player:    e.player,
		CreatedAt: e.created,
		Snapshot:  e.sess.Snapshot(),
	}
	if r, ok := e.sess.Result(); ok {
		v.Result = &r
	}
	return v
}

func (s *Server) entryFor(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	id := mux.Vars(r)["id"]
	e, ok := s.lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %q not found", id), nil)
		return nil, false
	}
	return e, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

// ScenarioView is the /v1/scenario body.
type ScenarioView struct {
	Name           string         `json:"name"`
	Currency       string         `json:"currency"`
	BaselineIncome int64          `json:"baseline_income"`
	ShockIncome    int64          `json:"shock_income"`
	RevealDelayMS  int64          `json:"reveal_delay_ms"`
	AdjustSeconds  int            `json:"adjust_seconds"`
	Categories     []CategoryView `json:"categories"`
}

// CategoryView is one catalog category.
type CategoryView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Flexible    bool         `json:"flexible"`
	Options     []OptionView `json:"options"`
}

// OptionView is one choice within a category.
type OptionView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Cost        int64  `json:"cost"`
}

func newScenarioView(sc scenario.Scenario) ScenarioView {
	v := ScenarioView{
		Name:           sc.Name,
		Currency:       sc.Rules.Currency,
		BaselineIncome: sc.Rules.BaselineIncome,
		ShockIncome:    sc.Rules.ShockIncome,
		RevealDelayMS:  sc.Rules.RevealDelay.Milliseconds(),
		AdjustSeconds:  sc.Rules.AdjustSeconds(),
		Categories:     make([]CategoryView, 0, len(sc.Catalog.Categories)),
	}
	for _, cat := range sc.Catalog.Categories {
		cv := CategoryView{
			ID:          cat.ID,
			Title:       cat.Title,
			Description: cat.Description,
			Flexible:    cat.Flexible,
			Options:     make([]OptionView, 0, len(cat.Options)),
		}
		for _, opt := range cat.Options {
			cv.Options = append(cv.Options, OptionView{
				ID:          opt.ID,
				Label:       opt.Label,
				Description: opt.Description,
				Cost:        opt.Cost,
			})
		}
		v.Categories = append(v.Categories, cv)
	}
	return v
}

func (s *Server) handleScenario(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newScenarioView(s.cfg.Scenario))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
			return
		}
	}

	id, _ := s.CreateSession(req.Player)
	e, ok := s.lookup(id)
	if !ok {
		writeError(w, http.StatusInternalServerError, "session vanished", nil)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(e))
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	views := make([]SessionView, 0, len(entries))
	for _, e := range entries {
		views = append(views, s.view(e))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entryFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(e))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.CloseSession(mux.Vars(r)["id"]) {
		writeError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entryFor(w, r)
	if !ok {
		return
	}

	var (
		snap sim.Snapshot
		err  error
	)
	switch mux.Vars(r)["action"] {
	case "start":
		snap, err = e.sess.Start()
	case "confirm":
		snap, err = e.sess.Confirm()
	case "finish":
		snap, err = e.sess.Finish()
	case "reset":
		snap, err = e.sess.Reset()
	}
	s.respond(w, snap, err)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entryFor(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	if req.Category == "" || req.Option == "" {
		writeError(w, http.StatusBadRequest, "category and option are required", nil)
		return
	}

	snap, err := e.sess.Select(req.Category, req.Option)
	s.respond(w, snap, err)
}

func (s *Server) respond(w http.ResponseWriter, snap sim.Snapshot, err error) {
	if err != nil {
		writeError(w, statusFor(err), err.Error(), &snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entryFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e.history())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entryFor(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	subID := e.addSubscriber(ch)
	defer e.removeSubscriber(subID)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Session:   e.id,
		Snapshot:  e.sess.Snapshot(),
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-e.done:
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entryFor(w, r)
	if !ok {
		return
	}
	s.hub.Serve(w, r, e.id, e.done, func(c Command) (sim.Snapshot, error) {
		return e.apply(c)
	}, e.sess.Snapshot)
}

// apply runs an inbound socket command against the session.
func (e *entry) apply(c Command) (sim.Snapshot, error) {
	switch c.Type {
	case "start":
		return e.sess.Start()
	case "select":
		return e.sess.Select(c.Category, c.Option)
	case "confirm":
		return e.sess.Confirm()
	case "finish":
		return e.sess.Finish()
	case "reset":
		return e.sess.Reset()
	case "snapshot":
		return e.sess.Snapshot(), nil
	default:
		return e.sess.Snapshot(), fmt.Errorf("unknown command %q", c.Type)
	}
}
