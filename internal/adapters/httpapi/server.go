// Package httpapi exposes the reflection orchestrator over HTTP. The primary
// contract is the stateless turn endpoint, which round-trips the full
// conversation state through the client; the session endpoints keep state
// server-side for clients that prefer to hold only an ID.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/barfet/wellbeing-check-in-agent/internal/logging"
	"github.com/barfet/wellbeing-check-in-agent/internal/metrics"
	"github.com/barfet/wellbeing-check-in-agent/internal/orchestration"
	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
	"github.com/barfet/wellbeing-check-in-agent/pkg/session"
)

// TurnRequest is the body of both turn endpoints. A start turn carries only
// a topic; a continuation carries user_input plus, on the stateless endpoint,
// the current_state returned by the previous turn.
type TurnRequest struct {
	Topic        string                    `json:"topic,omitempty"`
	UserInput    string                    `json:"user_input,omitempty"`
	CurrentState *domain.ConversationState `json:"current_state,omitempty"`
}

// TurnResponse carries the agent's question or final summary, the state to
// send back on the next turn, and whether the conversation concluded.
type TurnResponse struct {
	AgentResponse  string                    `json:"agent_response"`
	NextState      *domain.ConversationState `json:"next_state"`
	IsFinalTurn    bool                      `json:"is_final_turn"`
	ConversationID string                    `json:"conversation_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server wires the orchestrator and session manager into HTTP handlers.
type Server struct {
	orchestrator *orchestration.Orchestrator
	sessions     *session.Manager
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	logger       *slog.Logger
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates the HTTP server around an orchestrator and a session
// manager. Metrics collectors are registered on a private registry exposed
// at /metrics.
func NewServer(orc *orchestration.Orchestrator, sessions *session.Manager, opts ...ServerOption) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		orchestrator: orc,
		sessions:     sessions,
		metrics:      metrics.New(registry),
		registry:     registry,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the server's collectors so the orchestrator's failure
// observer can be wired to them.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/reflections", func(r chi.Router) {
		r.Post("/turns", s.handleTurn)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{conversationID}", func(r chi.Router) {
			r.Post("/turns", s.handleSessionTurn)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
		})
	})

	return r
}

// handleTurn processes one stateless turn: initiation when current_state is
// absent, continuation otherwise.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var state *domain.ConversationState
	if req.CurrentState != nil {
		state = req.CurrentState
		if req.UserInput != "" {
			state.AppendUser(req.UserInput)
		} else {
			s.logger.Warn("continuation turn received without user_input")
		}
	} else {
		if req.UserInput != "" {
			s.logger.Warn("user_input provided on initiation turn, ignoring")
		}
		state = domain.NewConversationState(req.Topic)
	}

	result, ok := s.runTurn(w, r, state)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, TurnResponse{
		AgentResponse: result.AgentOutput,
		NextState:     result.State,
		IsFinalTurn:   result.IsFinal,
	})
}

// handleCreateSession starts a server-side conversation and returns the
// opening question together with the new conversation ID.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	conversationID := uuid.NewString()
	state := domain.NewConversationState(req.Topic)

	result, ok := s.runTurn(w, r, state)
	if !ok {
		return
	}
	if err := s.sessions.Save(r.Context(), conversationID, result.State); err != nil {
		s.logger.Error("failed to save new conversation", "err", err, "conversation_id", conversationID)
		s.writeError(w, http.StatusInternalServerError, "failed to persist conversation")
		return
	}

	s.writeJSON(w, http.StatusCreated, TurnResponse{
		AgentResponse:  result.AgentOutput,
		NextState:      result.State,
		IsFinalTurn:    result.IsFinal,
		ConversationID: conversationID,
	})
}

// handleSessionTurn runs one turn against a stored conversation. Load, run,
// and save happen under the per-conversation lock.
func (s *Server) handleSessionTurn(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserInput == "" {
		s.writeError(w, http.StatusBadRequest, "user_input is required")
		return
	}

	var resp TurnResponse
	err := s.sessions.WithLock(r.Context(), conversationID, func(ctx context.Context) error {
		state, err := s.sessions.Store().Load(ctx, conversationID)
		if err != nil {
			return err
		}
		state.AppendUser(req.UserInput)

		result, err := s.run(ctx, state)
		if err != nil {
			return err
		}
		if err := s.sessions.Store().Save(ctx, conversationID, result.State); err != nil {
			return err
		}
		resp = TurnResponse{
			AgentResponse:  result.AgentOutput,
			NextState:      result.State,
			IsFinalTurn:    result.IsFinal,
			ConversationID: conversationID,
		}
		return nil
	})
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	state, err := s.sessions.Load(r.Context(), conversationID)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := s.sessions.Delete(r.Context(), conversationID); err != nil {
		s.writeTurnError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// run executes one orchestrator turn and records its outcome and duration.
func (s *Server) run(ctx context.Context, state *domain.ConversationState) (*orchestration.TurnResult, error) {
	start := time.Now()
	result, err := s.orchestrator.Run(ctx, state)
	elapsed := time.Since(start).Seconds()
	switch {
	case err != nil:
		s.metrics.ObserveTurn("error", elapsed)
	case result.IsFinal:
		s.metrics.ObserveTurn("final", elapsed)
	default:
		s.metrics.ObserveTurn("suspended", elapsed)
	}
	return result, err
}

// runTurn runs a turn and writes the error response on failure. The second
// return reports whether the caller should proceed.
func (s *Server) runTurn(w http.ResponseWriter, r *http.Request, state *domain.ConversationState) (*orchestration.TurnResult, bool) {
	result, err := s.run(r.Context(), state)
	if err != nil {
		s.writeTurnError(w, err)
		return nil, false
	}
	return result, true
}

// writeTurnError maps orchestration and storage errors to HTTP status codes.
func (s *Server) writeTurnError(w http.ResponseWriter, err error) {
	var invalid *orchestration.InvalidStateError
	switch {
	case errors.As(err, &invalid):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConversationNotFound):
		s.writeError(w, http.StatusNotFound, "conversation not found")
	default:
		s.logger.Error("turn failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal error processing turn")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
