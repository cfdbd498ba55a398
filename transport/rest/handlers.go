package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-core/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
)

const maxBodyBytes = 1 << 10

type handlers struct {
	logger *slog.Logger
	game   gameUseCase
}

type startRequest struct {
	Mode string `json:"mode"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type errorResponse struct {
	Error string            `json:"error"`
	State *entity.StateView `json:"state,omitempty"`
}

func (that *handlers) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeBody(w, r, &req) {
		return
	}

	state, err := that.game.StartSession(r.Context(), req.Mode)
	if err != nil {
		that.writeError(w, "startSession", err, nil)
		return
	}

	writeJSON(w, http.StatusCreated, state.View())
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := that.game.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "getSession", err, nil)
		return
	}

	writeJSON(w, http.StatusOK, state.View())
}

func (that *handlers) submitMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Cell == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell is required"})
		return
	}

	state, err := that.game.SubmitMove(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, "submitMove", err, state)
		return
	}

	writeJSON(w, http.StatusOK, state.View())
}

func (that *handlers) resetSession(w http.ResponseWriter, r *http.Request) {
	state, err := that.game.ResetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "resetSession", err, nil)
		return
	}

	writeJSON(w, http.StatusOK, state.View())
}

func (that *handlers) endSession(w http.ResponseWriter, r *http.Request) {
	if err := that.game.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "endSession", err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError maps domain errors to status codes. Rejected moves carry the
// unchanged state so the client can simply redraw it.
func (that *handlers) writeError(w http.ResponseWriter, method string, err error, state *entity.SessionState) {
	resp := errorResponse{Error: err.Error()}
	if state != nil {
		view := state.View()
		resp.State = &view
	}

	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, resp)
	case errors.Is(err, apperror.ErrCellOccupied), errors.Is(err, apperror.ErrGameAlreadyOver):
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, apperror.ErrInvalidCell), errors.Is(err, apperror.ErrUnknownMode):
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
