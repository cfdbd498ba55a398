package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
)

type gameUseCase interface {
	StartSession(ctx context.Context, mode string) (*entity.SessionState, error)
	SubmitMove(ctx context.Context, sessionID string, cell int) (*entity.SessionState, error)
	ResetSession(ctx context.Context, sessionID string) (*entity.SessionState, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionState, error)
	EndSession(ctx context.Context, sessionID string) error
}

// NewRouter wires the session routes.
func NewRouter(logger *slog.Logger, game gameUseCase) http.Handler {
	h := &handlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)
	r.Post("/sessions", h.startSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Delete("/", h.endSession)
		r.Post("/moves", h.submitMove)
		r.Post("/reset", h.resetSession)
	})

	return r
}
