package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riverline-agency/coach/internal/ledger"
	"github.com/riverline-agency/coach/internal/orchestrator"
	"github.com/riverline-agency/coach/internal/store"
)

// Store is the persistence surface the API reads from.
type Store interface {
	CurrentIteration(ctx context.Context) (ledger.Iteration, error)
	IterationByNumber(ctx context.Context, number int) (ledger.Iteration, error)
	IterationHistory(ctx context.Context) ([]ledger.Iteration, error)
	GetCall(ctx context.Context, roomID string) (store.CallRecord, error)
}

// CycleRunner triggers improvement cycles on demand.
type CycleRunner interface {
	RunCycle(ctx context.Context, roomID string) orchestrator.CycleResult
}

type Server struct {
	router   *chi.Mux
	port     int
	store    Store
	runner   CycleRunner
	apiToken string
}

func NewServer(port int, apiToken string, st Store, runner CycleRunner) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		store:    st,
		runner:   runner,
		apiToken: apiToken,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/coach/status", s.status)
	router.Get("/api/v1/coach/iterations", s.iterationHistory)
	router.Get("/api/v1/coach/iterations/current", s.currentIteration)
	router.Get("/api/v1/coach/iterations/{number}", s.iterationByNumber)
	router.Get("/api/v1/coach/trend", s.trend)
	router.Get("/api/v1/coach/comparison", s.comparison)
	router.Get("/api/v1/coach/calls/{room_id}", s.call)

	router.Route("/api/v1/coach/cycles", func(r chi.Router) {
		r.Use(bearerAuth(apiToken))
		r.Post("/{room_id}", s.triggerCycle)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"agent":  "coach",
		"status": "active",
	}
	if cur, err := s.store.CurrentIteration(r.Context()); err == nil {
		resp["current_iteration"] = cur.IterationNumber
		resp["average_score"] = cur.AverageScore
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) currentIteration(w http.ResponseWriter, r *http.Request) {
	it, err := s.store.CurrentIteration(r.Context())
	if errors.Is(err, store.ErrNoCurrentIteration) {
		writeError(w, http.StatusNotFound, "no current iteration")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) iterationByNumber(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid iteration number")
		return
	}

	it, err := s.store.IterationByNumber(r.Context(), number)
	if errors.Is(err, store.ErrIterationNotFound) {
		writeError(w, http.StatusNotFound, "iteration not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) iterationHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.IterationHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"iterations": history,
		"count":      len(history),
	})
}

func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.IterationHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ledger.AnalyzeTrend(history))
}

// comparison handles GET /api/v1/coach/comparison?a=N&b=M.
func (s *Server) comparison(w http.ResponseWriter, r *http.Request) {
	a, errA := strconv.Atoi(r.URL.Query().Get("a"))
	b, errB := strconv.Atoi(r.URL.Query().Get("b"))
	if errA != nil || errB != nil {
		writeError(w, http.StatusBadRequest, "query params a and b must be iteration numbers")
		return
	}

	itA, err := s.store.IterationByNumber(r.Context(), a)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("iteration %d not found", a))
		return
	}
	itB, err := s.store.IterationByNumber(r.Context(), b)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("iteration %d not found", b))
		return
	}

	writeJSON(w, http.StatusOK, ledger.Compare(itA, itB))
}

func (s *Server) call(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room_id")
	rec, err := s.store.GetCall(r.Context(), roomID)
	if errors.Is(err, store.ErrCallNotFound) {
		writeError(w, http.StatusNotFound, "call not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// triggerCycle handles POST /api/v1/coach/cycles/{room_id}, running a full
// analysis and improvement cycle synchronously.
func (s *Server) triggerCycle(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room_id")
	result := s.runner.RunCycle(r.Context(), roomID)

	status := http.StatusOK
	if result.Status == orchestrator.StatusError {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

// bearerAuth rejects requests without the configured bearer token. An empty
// token disables auth, for local development.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
