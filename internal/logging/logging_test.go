package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/lifeshock/internal/sim"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lifeshock.log")
	log, closer, err := New("debug", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.WithField("k", "v").Debug("hello")
	_ = closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", data)
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	log, _, err := New("loud", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %s, want info", log.GetLevel())
	}
}

func TestTransitionsObserver(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(&buf)

	Transitions(log)(sim.Transition{Run: 3, From: sim.ShockReveal, To: sim.Adjusting, Reason: sim.ReasonReveal})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if entry["from"] != "shock_reveal" || entry["to"] != "adjusting" || entry["reason"] != "reveal" {
		t.Fatalf("entry = %v", entry)
	}
	if entry["run"] != float64(3) {
		t.Fatalf("run = %v, want 3", entry["run"])
	}
}
