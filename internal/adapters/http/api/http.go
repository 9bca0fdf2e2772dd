// Package api declares HTTP contracts and route registration for the
// judging console.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ringsidehq/ringside/internal/adapters/docstore"
	service "github.com/ringsidehq/ringside/internal/app"
	"github.com/ringsidehq/ringside/internal/auth"
	"github.com/ringsidehq/ringside/internal/domain/model"
	"github.com/ringsidehq/ringside/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateRoom(ctx context.Context, p auth.Principal, name, description string, judgeIDs []string) (model.Room, error)
	GetRoom(ctx context.Context, roomID string) (model.Room, error)
	ListRooms(ctx context.Context, creator string) ([]model.Room, error)
	ListRoomsForJudge(ctx context.Context, judgeID string) ([]model.Room, error)
	UpdateRoom(ctx context.Context, room model.Room) error

	CreateTemplate(ctx context.Context, tpl model.TestTemplate) (model.TestTemplate, error)
	GetTemplate(ctx context.Context, testID string) (model.TestTemplate, error)
	ListTemplates(ctx context.Context, roomID string) ([]model.TestTemplate, error)
	UpdateTemplate(ctx context.Context, tpl model.TestTemplate) error
	DeleteTemplate(ctx context.Context, testID string) error

	CreateCompetitor(ctx context.Context, c model.Competitor) (model.Competitor, error)
	ListCompetitors(ctx context.Context, roomID string) ([]model.Competitor, error)
	DeleteCompetitor(ctx context.Context, competitorID string) error

	RecordEvaluation(ctx context.Context, p auth.Principal, sub service.EvaluationSubmission) (model.Evaluation, error)
	RecordDidNotParticipate(ctx context.Context, p auth.Principal, roomID, testID, competitorID, notes string) (model.Evaluation, error)
	ListEvaluations(ctx context.Context, roomID, competitorID string) ([]model.Evaluation, error)
	DeleteEvaluation(ctx context.Context, evaluationID string) error

	Leaderboard(ctx context.Context, roomID string) (service.Snapshot, error)
	SubscribeLeaderboard(roomID string) (<-chan service.Snapshot, func())
}

// Authenticator resolves credentials and session tokens to principals.
type Authenticator interface {
	Register(ctx context.Context, email, name, password string, role model.Role) (model.User, error)
	Login(ctx context.Context, email, password string) (string, model.User, error)
	Verify(token string) (auth.Principal, error)
	HasUsers(ctx context.Context) (bool, error)
}

// Server wires HTTP routes for the judging API.
type Server struct {
	deps           Dependencies
	authn          Authenticator
	stats          StatsProvider
	validate       *validator.Validate
	allowedOrigins []string
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS and websocket origin allow-list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, authn Authenticator, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		authn:          authn,
		stats:          statsProvider,
		validate:       validator.New(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.With(s.withPrincipal).Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.withPrincipal, s.requireAuth)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.With(s.requireAdmin).Post("/", s.handleCreateRoom)

				r.Route("/{roomID}", func(r chi.Router) {
					r.Get("/", s.handleGetRoom)
					r.With(s.requireAdmin).Put("/", s.handleUpdateRoom)

					r.Route("/competitors", func(r chi.Router) {
						r.Get("/", s.handleListCompetitors)
						r.With(s.requireAdmin).Post("/", s.handleCreateCompetitor)
						r.With(s.requireAdmin).Delete("/{competitorID}", s.handleDeleteCompetitor)
					})

					r.Route("/tests", func(r chi.Router) {
						r.Get("/", s.handleListTemplates)
						r.Get("/{testID}", s.handleGetTemplate)
						r.With(s.requireAdmin).Post("/", s.handleCreateTemplate)
						r.With(s.requireAdmin).Put("/{testID}", s.handleUpdateTemplate)
						r.With(s.requireAdmin).Delete("/{testID}", s.handleDeleteTemplate)
					})

					r.Route("/evaluations", func(r chi.Router) {
						r.Get("/", s.handleListEvaluations)
						r.Post("/", s.handleSubmitEvaluation)
						r.Post("/dns", s.handleDidNotParticipate)
						r.With(s.requireAdmin).Delete("/{evaluationID}", s.handleDeleteEvaluation)
					})

					r.Get("/leaderboard", s.handleLeaderboard)
					r.Get("/leaderboard/live", s.handleLeaderboardLive)
				})
			})
		})
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode unmarshals and validates a request body into req.
func (s *Server) decode(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return ErrBadRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	return nil
}

// writeServiceError translates service and store errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotAssigned):
		writeError(w, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, service.ErrUnknownModality), errors.Is(err, auth.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", nil)
	}
}
