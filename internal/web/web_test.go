package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, status.Config{
		Interface:   "can0",
		Broker:      "tcp://127.0.0.1:1883",
		TopicPrefix: "canbridge",
		HTTPAddr:    ":8035",
	})
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestIndex(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.RecordFrame(frame.KindLight, true)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"canbridge on can0", "connected=true", "light"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestIndexJSON(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.RecordFrame(frame.KindMMI, true)
	tr.RecordFrame("", false)
	tr.RecordTX()

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var sj StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sj.Status.Counts.Received != 2 || sj.Status.Counts.Published != 1 {
		t.Errorf("counts = %+v", sj.Status.Counts)
	}
	if sj.Status.Counts.DecodeSkips != 1 || sj.Status.Counts.Transmitted != 1 {
		t.Errorf("counts = %+v", sj.Status.Counts)
	}
	if sj.Status.PerKind["mmi"] != 1 {
		t.Errorf("per_kind = %v", sj.Status.PerKind)
	}
	if sj.Status.Interface != "can0" {
		t.Errorf("interface = %q", sj.Status.Interface)
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
