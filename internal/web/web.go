// Package web provides an HTTP status server for the bridge daemon.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the mux for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	fmt.Fprintf(w, "canbridge on %s\n\n", snap.Config.Interface)
	fmt.Fprintf(w, "uptime:      %s\n", snap.Uptime().Truncate(time.Second))
	fmt.Fprintf(w, "broker:      %s (connected=%v)\n", snap.Config.Broker, snap.MQTTConnected)
	fmt.Fprintf(w, "received:    %d\n", snap.Counts.Received)
	fmt.Fprintf(w, "published:   %d\n", snap.Counts.Published)
	fmt.Fprintf(w, "skipped:     %d\n", snap.Counts.DecodeSkips)
	fmt.Fprintf(w, "transmitted: %d\n\n", snap.Counts.Transmitted)

	kinds := make([]string, 0, len(snap.Counts.PerKind))
	for k := range snap.Counts.PerKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-10s %d\n", k, snap.Counts.PerKind[frame.Kind(k)])
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(snap))
}
