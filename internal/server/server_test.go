package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/theirongolddev/lifeshock/internal/sim"
)

type fakeTimer struct {
	mu      *sync.Mutex
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) sim.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{mu: &c.mu, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs the most recent timer.
func (c *fakeClock) fire(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	if len(c.timers) == 0 {
		c.mu.Unlock()
		t.Fatal("no timer scheduled")
	}
	tm := c.timers[len(c.timers)-1]
	c.mu.Unlock()
	tm.f()
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []sim.Result
}

func (r *fakeRecorder) SaveRun(res sim.Result, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, res)
	return "run-1", nil
}

func newTestServer(t *testing.T, buffer int) (*Server, *fakeClock, *fakeRecorder) {
	t.Helper()
	clock := &fakeClock{}
	rec := &fakeRecorder{}
	s := New(Config{EventsBuffer: buffer, Clock: clock, History: rec})
	t.Cleanup(s.closeAll)
	return s, clock, rec
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rr.Body.String(), err)
	}
	return v
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/v1/sessions", `{"player":"sam"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	v := decode[SessionView](t, rr)
	if v.ID == "" || v.Snapshot.Phase != sim.Intro || v.Snapshot.Income != 10000 {
		t.Fatalf("created view = %+v", v)
	}
	return v.ID
}

func TestHealthAndScenario(t *testing.T) {
	s, _, _ := newTestServer(t, 10)
	h := s.Handler()

	if rr := do(t, h, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK || rr.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rr.Code, rr.Body.String())
	}

	rr := do(t, h, http.MethodGet, "/v1/scenario", "")
	sc := decode[map[string]any](t, rr)
	if sc["name"] != "Life Shock" || sc["adjust_seconds"] != float64(30) {
		t.Fatalf("scenario = %v", sc)
	}

	// Nested catalog keys are snake_case like the top level.
	cats, ok := sc["categories"].([]any)
	if !ok || len(cats) != 3 {
		t.Fatalf("categories = %v", sc["categories"])
	}
	housing := cats[0].(map[string]any)
	for _, key := range []string{"id", "title", "flexible", "options"} {
		if _, ok := housing[key]; !ok {
			t.Fatalf("category missing %q: %v", key, housing)
		}
	}
	if _, ok := housing["ID"]; ok {
		t.Fatalf("category has capitalized keys: %v", housing)
	}
	opt := housing["options"].([]any)[0].(map[string]any)
	if opt["id"] != "fancy_condo" || opt["label"] != "Fancy Condo" || opt["cost"] != float64(3500) {
		t.Fatalf("option = %v", opt)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	s, clock, rec := newTestServer(t, 100)
	h := s.Handler()
	id := createSession(t, h)
	base := "/v1/sessions/" + id

	if rr := do(t, h, http.MethodPost, base+"/start", ""); rr.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rr.Code, rr.Body.String())
	}

	// Confirm before the budget is complete is rejected.
	if rr := do(t, h, http.MethodPost, base+"/confirm", ""); rr.Code != http.StatusConflict {
		t.Fatalf("early confirm: %d", rr.Code)
	}

	for _, sel := range []string{
		`{"category":"housing","option":"fancy_condo"}`,
		`{"category":"transport","option":"luxury_car"}`,
		`{"category":"lifestyle","option":"fancy_life"}`,
	} {
		if rr := do(t, h, http.MethodPost, base+"/select", sel); rr.Code != http.StatusOK {
			t.Fatalf("select %s: %d %s", sel, rr.Code, rr.Body.String())
		}
	}

	rr := do(t, h, http.MethodPost, base+"/confirm", "")
	snap := decode[sim.Snapshot](t, rr)
	if snap.Phase != sim.ShockReveal || snap.Balance != 2000 {
		t.Fatalf("after confirm: %+v", snap)
	}

	clock.fire(t) // reveal

	rr = do(t, h, http.MethodGet, base, "")
	v := decode[SessionView](t, rr)
	if v.Snapshot.Phase != sim.Adjusting || v.Snapshot.Balance != -3000 || v.Snapshot.SecondsLeft != 30 {
		t.Fatalf("after reveal: %+v", v.Snapshot)
	}

	rr = do(t, h, http.MethodPost, base+"/select", `{"category":"housing","option":"basic_apt"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("locked select: %d", rr.Code)
	}
	body := decode[errorBody](t, rr)
	if body.Snapshot == nil || body.Snapshot.Selections["housing"] != "fancy_condo" {
		t.Fatalf("locked select changed state: %+v", body)
	}

	if rr := do(t, h, http.MethodPost, base+"/select", `{"category":"lifestyle","option":"simple_life"}`); rr.Code != http.StatusOK {
		t.Fatalf("flexible select: %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, base+"/finish", "")
	snap = decode[sim.Snapshot](t, rr)
	if snap.Phase != sim.Results || snap.Balance != -1500 || snap.Reason != sim.ReasonFinished {
		t.Fatalf("after finish: %+v", snap)
	}

	s.saves.Wait()
	rec.mu.Lock()
	if len(rec.runs) != 1 || rec.runs[0].Balance != -1500 {
		t.Fatalf("recorded runs = %+v", rec.runs)
	}
	rec.mu.Unlock()

	events := decode[[]Event](t, do(t, h, http.MethodGet, base+"/events", ""))
	var toResults int
	for _, ev := range events {
		if ev.Transition != nil && ev.Transition.To == sim.Results {
			toResults++
			if ev.Result == nil {
				t.Error("results event carries no result")
			}
		}
	}
	if toResults != 1 {
		t.Fatalf("results transitions = %d, want 1", toResults)
	}

	st := decode[Status](t, do(t, h, http.MethodGet, "/v1/status", ""))
	if st.Sessions != 1 || st.RunsRecorded != 1 {
		t.Fatalf("status = %+v", st)
	}
}

func TestBadRequests(t *testing.T) {
	s, _, _ := newTestServer(t, 10)
	h := s.Handler()
	id := createSession(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown session", http.MethodGet, "/v1/sessions/nope", "", http.StatusNotFound},
		{"malformed body", http.MethodPost, "/v1/sessions/" + id + "/select", "{", http.StatusBadRequest},
		{"missing option", http.MethodPost, "/v1/sessions/" + id + "/select", `{"category":"housing"}`, http.StatusBadRequest},
		{"unknown category", http.MethodPost, "/v1/sessions/" + id + "/select", `{"category":"pets","option":"cat"}`, http.StatusConflict},
		{"finish in intro", http.MethodPost, "/v1/sessions/" + id + "/finish", "", http.StatusConflict},
		{"unknown action", http.MethodPost, "/v1/sessions/" + id + "/explode", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(t, h, tt.method, tt.path, tt.body); rr.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d (%s)", tt.method, tt.path, rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestDeleteCancelsTimers(t *testing.T) {
	s, clock, _ := newTestServer(t, 10)
	h := s.Handler()
	id := createSession(t, h)
	base := "/v1/sessions/" + id

	do(t, h, http.MethodPost, base+"/start", "")
	for _, sel := range []string{
		`{"category":"housing","option":"basic_apt"}`,
		`{"category":"transport","option":"used_car"}`,
		`{"category":"lifestyle","option":"simple_life"}`,
	} {
		do(t, h, http.MethodPost, base+"/select", sel)
	}
	do(t, h, http.MethodPost, base+"/confirm", "")

	if rr := do(t, h, http.MethodDelete, base, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	clock.mu.Lock()
	stopped := clock.timers[len(clock.timers)-1].stopped
	clock.mu.Unlock()
	if !stopped {
		t.Fatal("delete left the reveal timer armed")
	}
	if rr := do(t, h, http.MethodGet, base, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rr.Code)
	}
}

func TestEventRingBuffer(t *testing.T) {
	s, _, _ := newTestServer(t, 2)
	h := s.Handler()
	id := createSession(t, h)
	base := "/v1/sessions/" + id

	do(t, h, http.MethodPost, base+"/start", "")
	do(t, h, http.MethodPost, base+"/select", `{"category":"housing","option":"basic_apt"}`)
	do(t, h, http.MethodPost, base+"/select", `{"category":"transport","option":"used_car"}`)

	events := decode[[]Event](t, do(t, h, http.MethodGet, base+"/events", ""))
	if len(events) != 2 {
		t.Fatalf("events len = %d, want 2", len(events))
	}
	if events[0].ID != 2 || events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", events[0].ID, events[1].ID)
	}
}

func TestStreamSendsSnapshotAndUpdates(t *testing.T) {
	s, _, _ := newTestServer(t, 10)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	id := createSession(t, s.Handler())

	resp, err := http.Get(ts.URL + "/v1/sessions/" + id + "/stream")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	first := readSSE(t, r)
	if first != "snapshot" {
		t.Fatalf("first event = %q, want snapshot", first)
	}

	post, err := http.Post(ts.URL+"/v1/sessions/"+id+"/start", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = post.Body.Close()

	if ev := readSSE(t, r); ev != "transition" {
		t.Fatalf("second event = %q, want transition", ev)
	}
}

// readSSE returns the event name of the next SSE frame.
func readSSE(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var name string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" && name != "" {
			return name
		}
		if strings.HasPrefix(line, "event: ") {
			name = strings.TrimPrefix(line, "event: ")
		}
	}
}

func TestWebSocketCommands(t *testing.T) {
	s, _, _ := newTestServer(t, 10)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	id := createSession(t, s.Handler())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var m Message
	if err := conn.ReadJSON(&m); err != nil || m.Type != "snapshot" {
		t.Fatalf("first frame = %+v, %v", m, err)
	}

	if err := conn.WriteJSON(Command{Type: "start"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&m); err != nil || m.Type != "transition" {
		t.Fatalf("start frame = %+v, %v", m, err)
	}

	if err := conn.WriteJSON(Command{Type: "select", Category: "housing", Option: "castle"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&m); err != nil || m.Type != "error" {
		t.Fatalf("bad select frame = %+v, %v", m, err)
	}

	if err := conn.WriteJSON(Command{Type: "select", Category: "housing", Option: "basic_apt"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&m); err != nil || m.Type != "select" {
		t.Fatalf("select frame = %+v, %v", m, err)
	}
	if s.hub.Count() != 1 {
		t.Fatalf("hub count = %d, want 1", s.hub.Count())
	}
}

func TestWebSocketAfterSessionClosedIsDropped(t *testing.T) {
	s, _, _ := newTestServer(t, 10)
	id := createSession(t, s.Handler())
	e, ok := s.lookup(id)
	if !ok {
		t.Fatal("session not found")
	}

	// The handler looked the session up before it was deleted.
	s.CloseSession(id)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hub.Serve(w, r, e.id, e.done, e.apply, e.sess.Snapshot)
	}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var m Message
	err = conn.ReadJSON(&m)
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("read = %+v, %v; want close going away", m, err)
	}
	if n := s.hub.Count(); n != 0 {
		t.Fatalf("hub count = %d, want 0", n)
	}
}
