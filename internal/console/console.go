package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-core/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
)

type gameUseCase interface {
	StartSession(ctx context.Context, mode string) (*entity.SessionState, error)
	SubmitMove(ctx context.Context, sessionID string, cell int) (*entity.SessionState, error)
	ResetSession(ctx context.Context, sessionID string) (*entity.SessionState, error)
	EndSession(ctx context.Context, sessionID string) error
}

const (
	quitCommand  = "q"
	resetCommand = "r"
)

var modeChoices = map[string]string{
	"1": entity.ModePlayerVsPlayer,
	"2": entity.ModePlayerVsComputer,
}

// Console plays one session on a terminal. It is the only place that waits
// before showing the computer's move.
type Console struct {
	logger *slog.Logger
	game   gameUseCase

	computerDelay time.Duration
}

func New(logger *slog.Logger, game gameUseCase, computerDelay time.Duration) *Console {
	return &Console{
		logger: logger.With("component", "console"),
		game:   game,

		computerDelay: computerDelay,
	}
}

// Run reads commands from in until "q", EOF or ctx is done.
func (that *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	mode, ok := that.chooseMode(ctx, lines, w)
	if !ok {
		return nil
	}

	state, err := that.game.StartSession(ctx, mode)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	sessionID := state.Session.ID
	defer that.endSession(sessionID)

	printState(w, state.Session.Board, state.Session.Turn)

	for {
		if err = w.Flush(); err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}

		line, ok := next(ctx, lines)
		if !ok {
			return nil
		}

		switch line {
		case "":
			continue
		case quitCommand:
			fmt.Fprintln(w, "Bye!")
			return nil
		case resetCommand:
			if state, err = that.game.ResetSession(ctx, sessionID); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}
			printState(w, state.Session.Board, state.Session.Turn)
			continue
		}

		number, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(w, "Type a cell number 1-9, r to restart or q to quit.")
			continue
		}

		if err = that.play(ctx, w, sessionID, number-1); err != nil {
			return err
		}
	}
}

func (that *Console) chooseMode(ctx context.Context, lines <-chan string, w *bufio.Writer) (string, bool) {
	for {
		fmt.Fprintln(w, "Choose game mode: 1) Player vs Player  2) Player vs Computer")
		if err := w.Flush(); err != nil {
			return "", false
		}

		line, ok := next(ctx, lines)
		if !ok || line == quitCommand {
			return "", false
		}

		if mode, ok := modeChoices[line]; ok {
			return mode, true
		}
	}
}

func (that *Console) play(ctx context.Context, w *bufio.Writer, sessionID string, cell int) error {
	state, err := that.game.SubmitMove(ctx, sessionID, cell)
	switch {
	case errors.Is(err, apperror.ErrCellOccupied):
		fmt.Fprintln(w, "That cell is taken.")
		return nil
	case errors.Is(err, apperror.ErrInvalidCell):
		fmt.Fprintln(w, "Cells are numbered 1-9.")
		return nil
	case errors.Is(err, apperror.ErrGameAlreadyOver):
		return nil
	case err != nil:
		return fmt.Errorf("failed to submit move: %w", err)
	}

	if state.ComputerCell != entity.NoCell {
		board := state.Session.Board
		board[state.ComputerCell] = entity.EmptyCell
		printBoard(w, board)

		if err = w.Flush(); err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}

		if err = sleep(ctx, that.computerDelay); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to wait for computer move: %w", err)
		}

		fmt.Fprintf(w, "Computer plays %d\n", state.ComputerCell+1)
	}

	if !state.Outcome.IsTerminal() {
		printState(w, state.Session.Board, state.Session.Turn)
		return nil
	}

	printBoard(w, state.Session.Board)
	if state.Outcome.Status == entity.StatusWon {
		fmt.Fprintf(w, "Game over: Player %s wins!\n", state.Outcome.Winner)
	} else {
		fmt.Fprintln(w, "Game over: It's a tie!")
	}

	that.logger.Info("game finished", "session_id", sessionID, "status", state.Outcome.Status, "winner", state.Outcome.Winner)

	if state, err = that.game.ResetSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}

	printState(w, state.Session.Board, state.Session.Turn)

	return nil
}

func (that *Console) endSession(sessionID string) {
	if err := that.game.EndSession(context.Background(), sessionID); err != nil {
		that.logger.Error("failed to end session", "session_id", sessionID, "error", err)
	}
}

func printState(w io.Writer, board entity.Board, turn string) {
	printBoard(w, board)
	fmt.Fprintf(w, "Player %s's turn\n", turn)
}

// printBoard numbers empty cells 1-9 so they can be typed back.
func printBoard(w io.Writer, board entity.Board) {
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			i := row*3 + col
			cells[col] = board[i]
			if cells[col] == entity.EmptyCell {
				cells[col] = strconv.Itoa(i + 1)
			}
		}

		fmt.Fprintf(w, " %s\n", strings.Join(cells, " | "))
		if row < 2 {
			fmt.Fprintln(w, "---+---+---")
		}
	}
}

// readLines feeds trimmed input lines into a channel so reads can race ctx.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}

func next(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
