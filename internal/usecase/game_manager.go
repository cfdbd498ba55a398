package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-core/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
	"github.com/rocketscienceinc/tictactoe-core/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type moveAdvisor interface {
	ChooseMove(board entity.Board, computer, opponent string) (int, error)
}

type GameManager struct {
	logger *slog.Logger

	sessionRepo sessionRepo
	advisor     moveAdvisor
	locks       *sessionLocks

	now func() time.Time
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo, advisor moveAdvisor) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		sessionRepo: sessionRepo,
		advisor:     advisor,
		locks:       newSessionLocks(),

		now: time.Now,
	}
}

// StartSession creates an empty board with X to move.
func (that *GameManager) StartSession(ctx context.Context, mode string) (*entity.SessionState, error) {
	log := that.logger.With("method", "StartSession")

	if !entity.IsValidMode(mode) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMode, mode)
	}

	session := entity.NewSession(uuid.NewString(), mode, that.now().UTC())
	if err := that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	log.Info("session started", "session_id", session.ID, "mode", mode)

	return newState(session), nil
}

// SubmitMove plays cell for the active player. In player-vs-computer mode the
// computer answers within the same call while the game is still going.
// A rejected move returns the unchanged state together with the error.
// Calls for the same session are applied one at a time.
func (that *GameManager) SubmitMove(ctx context.Context, sessionID string, cell int) (*entity.SessionState, error) {
	log := that.logger.With("method", "SubmitMove", "session_id", sessionID, "cell", cell)

	unlock := that.locks.lock(sessionID)
	defer unlock()

	session, err := that.getSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err = play(session, cell); err != nil {
		log.Debug("move rejected", "error", err)

		return newState(session), fmt.Errorf("failed make turn: %w", err)
	}

	state := newState(session)
	state.PlayerCell = cell

	if !state.Outcome.IsTerminal() && session.IsComputerTurn() {
		computerCell, err := that.playComputer(session)
		if err != nil {
			log.Error("computer failed to move", "error", err)
			return nil, err
		}

		state.ComputerCell = computerCell
		state.Outcome = tictactoe.EvaluateOutcome(session.Board)
	}

	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	log.Info("move applied",
		"computer_cell", state.ComputerCell,
		"status", state.Outcome.Status,
		"winner", state.Outcome.Winner,
	)

	return state, nil
}

// ResetSession clears the board after the players acknowledged the result.
func (that *GameManager) ResetSession(ctx context.Context, sessionID string) (*entity.SessionState, error) {
	log := that.logger.With("method", "ResetSession", "session_id", sessionID)

	unlock := that.locks.lock(sessionID)
	defer unlock()

	session, err := that.getSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Reset()

	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	log.Info("session reset")

	return newState(session), nil
}

func (that *GameManager) GetSession(ctx context.Context, sessionID string) (*entity.SessionState, error) {
	session, err := that.getSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return newState(session), nil
}

// EndSession drops the session once its players are gone.
func (that *GameManager) EndSession(ctx context.Context, sessionID string) error {
	log := that.logger.With("method", "EndSession", "session_id", sessionID)

	unlock := that.locks.lock(sessionID)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	log.Info("session ended")

	return nil
}

func (that *GameManager) playComputer(session *entity.Session) (int, error) {
	cell, err := that.advisor.ChooseMove(session.Board, session.Computer, tictactoe.NextPlayer(session.Computer))
	if err != nil {
		return entity.NoCell, fmt.Errorf("failed choose computer move: %w", err)
	}

	if err = play(session, cell); err != nil {
		return entity.NoCell, fmt.Errorf("failed make computer turn: %w", err)
	}

	return cell, nil
}

// play applies cell for the active player and passes the turn on.
// The session is left untouched when the move is rejected.
func play(session *entity.Session, cell int) error {
	board, err := tictactoe.ApplyMove(session.Board, cell, session.Turn)
	if err != nil {
		return err
	}

	session.Board = board
	session.Turn = tictactoe.NextPlayer(session.Turn)
	session.Moves++

	return nil
}

func newState(session *entity.Session) *entity.SessionState {
	return &entity.SessionState{
		Session:      session,
		Outcome:      tictactoe.EvaluateOutcome(session.Board),
		PlayerCell:   entity.NoCell,
		ComputerCell: entity.NoCell,
	}
}

func (that *GameManager) getSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
		}

		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *GameManager) updateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}
