package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-core/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
)

var errCellRequired = errors.New("cell is required")

func (that *Server) handleNewGame(ctx context.Context, c *client, payload *RequestPayload) error {
	state, err := that.uGame.StartSession(ctx, payload.Mode)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	that.watch(c, state.Session.ID)

	return that.sendState(c, state.View())
}

// handleJoinGame attaches the connection to an existing session. From then on it
// receives every state change of that session, whoever made it.
func (that *Server) handleJoinGame(ctx context.Context, c *client, payload *RequestPayload) error {
	state, err := that.uGame.GetSession(ctx, payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to join session: %w", err)
	}

	that.watch(c, state.Session.ID)

	return that.sendState(c, state.View())
}

// handleGameTurn ignores rejected moves. In player-vs-computer mode the player's
// move is shown first and the computer's answer after the configured delay.
func (that *Server) handleGameTurn(ctx context.Context, c *client, payload *RequestPayload) error {
	log := that.logger.With("method", "handleGameTurn", "session_id", c.sessionID)

	if c.sessionID == "" {
		return ErrNoSession
	}

	if payload.Cell == nil {
		return errCellRequired
	}

	state, err := that.uGame.SubmitMove(ctx, c.sessionID, *payload.Cell)
	if err != nil {
		if isIgnoredMove(err) {
			log.Debug("move ignored", "cell", *payload.Cell, "error", err)
			return nil
		}
		return fmt.Errorf("failed to submit move: %w", err)
	}

	view := state.View()
	if view.ComputerCell == entity.NoCell {
		return that.broadcastState(c, view)
	}

	if err = that.broadcastState(c, beforeComputer(view, state.Session.Computer)); err != nil {
		return err
	}

	timer := time.NewTimer(that.computerDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	return that.broadcastState(c, view)
}

func (that *Server) handleResetGame(ctx context.Context, c *client, _ *RequestPayload) error {
	if c.sessionID == "" {
		return ErrNoSession
	}

	state, err := that.uGame.ResetSession(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}

	return that.broadcastState(c, state.View())
}

func (that *Server) handleLeaveGame(ctx context.Context, c *client, _ *RequestPayload) error {
	if c.sessionID == "" {
		return ErrNoSession
	}

	sessionID := c.sessionID

	if err := that.uGame.EndSession(ctx, sessionID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		return fmt.Errorf("failed to end session: %w", err)
	}

	// everyone watching learns the session is gone
	err := that.broadcast(c, sessionID, actionLeave, ResponsePayload{})
	that.watch(c, "")

	return err
}

// watch moves c from its current session to sessionID; empty detaches it.
func (that *Server) watch(c *client, sessionID string) {
	if c.sessionID != "" {
		that.hub.leave(c.sessionID, c)
	}

	c.sessionID = sessionID
	if sessionID != "" {
		that.hub.join(sessionID, c)
	}
}

func isIgnoredMove(err error) bool {
	return errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameAlreadyOver) ||
		errors.Is(err, apperror.ErrInvalidCell)
}
