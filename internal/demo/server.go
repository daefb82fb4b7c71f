package demo

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// Server exposes a live reactive graph over HTTP: REST endpoints mutate
// the graph, a broadcast effect pushes snapshots to WebSocket clients,
// and /metrics exports the engine counters.
type Server struct {
	graph     *Graph
	hub       *hub
	broadcast *pulse.Effect
	upgrader  websocket.Upgrader
}

// NewServer builds the demo server and starts the broadcast effect.
func NewServer() *Server {
	s := &Server{
		graph: NewGraph(),
		hub:   newHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	// The effect reads the full snapshot, so any graph change reruns
	// it and pushes one frame. Batched mutations produce one frame.
	s.broadcast = pulse.CreateEffect(func() pulse.Cleanup {
		snap := s.graph.Snapshot()
		frame, err := json.Marshal(snap)
		if err != nil {
			log.Printf("[demo] marshal snapshot: %v", err)
			return nil
		}
		s.hub.broadcast(frame)
		return nil
	}, pulse.EffectName("demo.broadcast"))

	return s
}

// Close stops broadcasting and disconnects all clients.
func (s *Server) Close() {
	s.broadcast.Dispose()
	s.hub.closeAll()
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/click", s.handleClick)
		r.Post("/step/{n}", s.handleStep)
		r.Post("/toggle", s.handleToggle)
		r.Post("/reset", s.handleReset)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[demo] upgrade: %v", err)
		return
	}
	s.hub.add(conn)

	// Send the current state immediately so the client does not wait
	// for the next mutation.
	snap := s.currentSnapshot()
	if frame, err := json.Marshal(snap); err == nil {
		s.hub.broadcast(frame)
	}

	// Reader goroutine detects disconnects; inbound frames are ignored.
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentSnapshot())
}

// currentSnapshot reads the graph without registering dependencies;
// request handlers are not reactive consumers.
func (s *Server) currentSnapshot() Snapshot {
	var snap Snapshot
	pulse.Untracked(func() { snap = s.graph.Snapshot() })
	return snap
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	s.graph.Click()
	s.handleSnapshot(w, r)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "step must be a positive integer"})
		return
	}
	s.graph.SetStep(n)
	s.handleSnapshot(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.graph.Toggle()
	s.handleSnapshot(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.graph.Reset()
	s.handleSnapshot(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[demo] encode response: %v", err)
	}
}
