package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"unibase/internal/game"
	"unibase/internal/host"
	"unibase/internal/logbook"
	"unibase/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultLogLimit = 50

type Game interface {
	View() game.View
	ManualPost() (game.Outcome, error)
	PitchInvestors() (game.Outcome, error)
	PurchaseUnit(id string) (game.Outcome, error)
	Prestige() (game.Outcome, error)
	Subscribe(fn func(game.View)) (cancel func())
}

type Console interface {
	Tail(n int) []logbook.Entry
}

type CommandResponse struct {
	Outcome game.Outcome `json:"outcome"`
	State   game.View    `json:"state"`
}

type Server struct {
	log     *slog.Logger
	game    Game
	console Console
	hub     *Hub
	mux     *chi.Mux
}

func New(logger *slog.Logger, g Game, console Console) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:     logger,
		game:    g,
		console: console,
		hub:     NewHub(logger, g.View),
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) RunHub(ctx context.Context) {
	cancel := s.game.Subscribe(func(v game.View) {
		s.hub.Broadcast(StateMessage(v))
	})
	defer cancel()
	s.hub.Run(ctx)
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/ws", s.hub.HandleWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))
			r.Get("/state", s.handleState)
			r.Get("/log", s.handleLog)
			r.Get("/units", s.handleUnits)
			r.Get("/sectors", s.handleSectors)

			r.Post("/post", s.handleCommand(s.game.ManualPost))
			r.Post("/pitch", s.handleCommand(s.game.PitchInvestors))
			r.Post("/units/{id}/buy", s.handleBuy)
			r.Post("/ipo", s.handleCommand(s.game.Prestige))
		})
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.View())
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries := s.console.Tail(limit)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Line())
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "lines": lines})
}

func (s *Server) handleUnits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"units": s.game.View().Units})
}

func (s *Server) handleSectors(w http.ResponseWriter, _ *http.Request) {
	v := s.game.View()
	writeJSON(w, http.StatusOK, map[string]any{"sector_index": v.SectorIndex, "sectors": v.Sectors})
}

func (s *Server) handleCommand(fn func() (game.Outcome, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out, err := fn()
		if err != nil {
			writeDomainError(w, err, out.Message)
			return
		}
		writeJSON(w, http.StatusOK, CommandResponse{Outcome: out, State: s.game.View()})
	}
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "unit id required")
		return
	}
	s.handleCommand(func() (game.Outcome, error) { return s.game.PurchaseUnit(id) })(w, r)
}

func writeDomainError(w http.ResponseWriter, err error, message string) {
	if message == "" {
		message = err.Error()
	}
	kind := game.ErrorKind(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrUnknownUnit):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNotUnlocked):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrInsufficientFund),
		errors.Is(err, game.ErrInsufficientUsers),
		errors.Is(err, game.ErrIPORequirementsNotMet):
		status = http.StatusConflict
	case errors.Is(err, host.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message), "kind": kind})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
