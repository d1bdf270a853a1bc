package spectator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"snake-torus/game"
	"snake-torus/stats"
)

// SummarySource provides the game history summary.
type SummarySource interface {
	Summary() stats.Summary
}

// Server exposes a running game read-only over HTTP and websockets.
type Server struct {
	game     *game.Game
	stats    SummarySource
	session  string
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewServer builds a server for g. stats may be nil.
func NewServer(g *game.Game, stats SummarySource, session string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		game:     g,
		stats:    stats,
		session:  session,
		hub:      NewHub(logger),
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes configures all routes and returns the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.getState)
		r.Get("/board", s.getBoard)
		r.Get("/stats", s.getStats)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})
	r.Get("/ws", s.serveWS)
	return r
}

// Listen is a game.Listener that streams every event to websocket clients.
func (s *Server) Listen(ev game.Event) {
	if s.hub.Len() == 0 {
		return
	}
	data, err := s.encode(ev.Type.String(), ev.Snapshot)
	if err != nil {
		s.logger.Printf("spectator: %v", err)
		return
	}
	s.hub.Broadcast(data)
}

func (s *Server) encode(event string, snap *game.Snapshot) ([]byte, error) {
	frame := NewFrame(event, s.session, snap)
	data, err := msgpack.Marshal(&frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return data, nil
}

// getState handles GET /api/state
func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NewFrame("state", s.session, s.game.Snapshot()))
}

// getBoard handles GET /api/board: one text row per grid row.
func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	lines := s.game.Snapshot().Lines('.', 'o', '*')
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// getStats handles GET /api/stats
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		respondError(w, http.StatusNotFound, "stats are disabled")
		return
	}
	respondJSON(w, http.StatusOK, s.stats.Summary())
}

// serveWS handles GET /ws
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("spectator: upgrade error: %v", err)
		return
	}
	first, err := s.encode("state", s.game.Snapshot())
	if err != nil {
		s.logger.Printf("spectator: %v", err)
		conn.Close()
		return
	}
	if err := s.hub.Attach(conn, first); err != nil {
		s.logger.Printf("spectator: %v", err)
	}
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Printf("spectator: listening on %s", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("spectator server: %w", err)
	case <-ctx.Done():
	}

	// Shutdown does not track hijacked websocket connections, so the hub
	// is closed after no new upgrade can arrive.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.hub.Close()
	if err != nil {
		return fmt.Errorf("spectator shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Printf("spectator: stopped")
	return nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
