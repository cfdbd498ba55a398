package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-core/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
)

var (
	ErrCellOccupied    = apperror.ErrCellOccupied
	ErrGameAlreadyOver = apperror.ErrGameAlreadyOver
	ErrInvalidCell     = apperror.ErrInvalidCell
	ErrInvalidMark     = errors.New("invalid player mark")

	// winCombos lists rows, then columns, then diagonals.
	winCombos = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// ApplyMove returns a copy of board with player placed on cell.
// The input board is never modified.
func ApplyMove(board entity.Board, cell int, player string) (entity.Board, error) {
	if err := validateMove(board, cell, player); err != nil {
		return board, fmt.Errorf("invalid move: %w", err)
	}

	next := board
	next[cell] = player

	return next, nil
}

// validateMove - checks if the move is valid.
func validateMove(board entity.Board, cell int, player string) error {
	if cell < 0 || cell >= len(board) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if !entity.IsPlayerMark(player) {
		return fmt.Errorf("%w: %q", ErrInvalidMark, player)
	}

	if EvaluateOutcome(board).IsTerminal() {
		return ErrGameAlreadyOver
	}

	if board[cell] != entity.EmptyCell {
		return ErrCellOccupied
	}

	return nil
}

// EvaluateOutcome reports a win before checking for a full board, so a full board
// with a line is a win, not a tie.
func EvaluateOutcome(board entity.Board) entity.Outcome {
	if winner := findWinner(board); winner != entity.EmptyCell {
		return entity.Outcome{Status: entity.StatusWon, Winner: winner}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return entity.Outcome{Status: entity.StatusOngoing}
		}
	}

	return entity.Outcome{Status: entity.StatusTie}
}

func NextPlayer(player string) string {
	if player == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}

// EmptyCells returns the free cell indices in ascending order.
func EmptyCells(board entity.Board) []int {
	cells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// IsWinningMove reports whether placing player on an empty cell completes a line.
func IsWinningMove(board entity.Board, cell int, player string) bool {
	next, err := ApplyMove(board, cell, player)
	if err != nil {
		return false
	}

	return findWinner(next) == player
}

func findWinner(board entity.Board) string {
	for _, combo := range winCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}
