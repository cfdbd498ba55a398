package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-core/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.EmptyCell
)

func TestApplyMove(t *testing.T) {
	t.Run("Places the mark on an empty board", func(t *testing.T) {
		// Given: an empty board
		board := entity.Board{}

		// When: player X plays the center
		next, err := ApplyMove(board, 4, x)
		require.NoError(t, err)

		// Then: only the center is taken and the original board is untouched
		assert.Equal(t, entity.Board{e, e, e, e, x, e, e, e, e}, next)
		assert.Equal(t, entity.Board{}, board)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: player X has taken cell 0
		board, err := ApplyMove(entity.Board{}, 0, x)
		require.NoError(t, err)

		// When: player O tries to move to the same cell
		next, err := ApplyMove(board, 0, o)

		// Then: ErrCellOccupied is returned and the board is unchanged
		require.ErrorIs(t, err, ErrCellOccupied)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, board, next)
	})

	t.Run("Error on the same player repeating a cell", func(t *testing.T) {
		// Given: player X has taken cell 8
		board, err := ApplyMove(entity.Board{}, 8, x)
		require.NoError(t, err)

		// When: player X plays cell 8 again
		_, err = ApplyMove(board, 8, x)

		// Then: ErrCellOccupied is returned
		assert.ErrorIs(t, err, ErrCellOccupied)
	})

	t.Run("Error on game already won", func(t *testing.T) {
		// Given: X has the top row and cells remain
		board := entity.Board{x, x, x, o, o, e, e, e, e}

		// When: O tries to play an empty cell
		_, err := ApplyMove(board, 5, o)

		// Then: ErrGameAlreadyOver is returned
		assert.ErrorIs(t, err, ErrGameAlreadyOver)
	})

	t.Run("Game over is reported before an occupied cell", func(t *testing.T) {
		// Given: a tied board
		board := entity.Board{x, o, x, x, o, o, o, x, x}

		// When: X plays an occupied cell
		_, err := ApplyMove(board, 0, x)

		// Then: the terminal state wins over the occupancy check
		assert.ErrorIs(t, err, ErrGameAlreadyOver)
	})

	t.Run("Invalid cell index", func(t *testing.T) {
		for _, cell := range []int{-1, 9, 20} {
			_, err := ApplyMove(entity.Board{}, cell, x)
			assert.ErrorIs(t, err, ErrInvalidCell, "cell %d", cell)
		}
	})

	t.Run("Invalid mark", func(t *testing.T) {
		_, err := ApplyMove(entity.Board{}, 0, e)
		assert.ErrorIs(t, err, ErrInvalidMark)

		_, err = ApplyMove(entity.Board{}, 0, "Z")
		assert.ErrorIs(t, err, ErrInvalidMark)
	})
}

func TestEvaluateOutcome(t *testing.T) {
	tests := []struct {
		name  string
		board entity.Board
		want  entity.Outcome
	}{
		{
			name:  "empty board is ongoing",
			board: entity.Board{},
			want:  entity.Outcome{Status: entity.StatusOngoing},
		},
		{
			name:  "row 0 X wins",
			board: entity.Board{x, x, x, e, o, e, e, o, e},
			want:  entity.Outcome{Status: entity.StatusWon, Winner: x},
		},
		{
			name:  "row 2 O wins",
			board: entity.Board{x, x, e, e, x, e, o, o, o},
			want:  entity.Outcome{Status: entity.StatusWon, Winner: o},
		},
		{
			name:  "column 1 O wins",
			board: entity.Board{x, o, e, e, o, x, e, o, e},
			want:  entity.Outcome{Status: entity.StatusWon, Winner: o},
		},
		{
			name:  "column 0 X wins",
			board: entity.Board{x, o, e, x, o, e, x, e, e},
			want:  entity.Outcome{Status: entity.StatusWon, Winner: x},
		},
		{
			name:  "main diagonal X wins",
			board: entity.Board{x, o, e, e, x, o, e, e, x},
			want:  entity.Outcome{Status: entity.StatusWon, Winner: x},
		},
		{
			name:  "anti diagonal O wins",
			board: entity.Board{x, x, o, e, o, e, o, x, e},
			want:  entity.Outcome{Status: entity.StatusWon, Winner: o},
		},
		{
			name:  "full board with a line is a win, not a tie",
			board: entity.Board{x, x, x, o, o, x, x, o, o},
			want:  entity.Outcome{Status: entity.StatusWon, Winner: x},
		},
		{
			name:  "full board without a line is a tie",
			board: entity.Board{x, o, x, x, o, o, o, x, x},
			want:  entity.Outcome{Status: entity.StatusTie},
		},
		{
			name:  "partially filled board is ongoing",
			board: entity.Board{x, o, x, e, o, e, o, x, e},
			want:  entity.Outcome{Status: entity.StatusOngoing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateOutcome(tt.board))
		})
	}
}

func TestEvaluateOutcome_Idempotent(t *testing.T) {
	// Given: a board in progress
	board := entity.Board{x, o, e, e, x, e, e, e, o}
	snapshot := board

	// When: the outcome is evaluated twice
	first := EvaluateOutcome(board)
	second := EvaluateOutcome(board)

	// Then: both results match and the board is untouched
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, board)
}

func TestNearFullBoardEndsInTie(t *testing.T) {
	// Given: a board with one empty cell left and no line
	board := entity.Board{x, o, x, x, o, o, o, x, e}
	require.Equal(t, entity.StatusOngoing, EvaluateOutcome(board).Status)

	for _, player := range []string{x, o} {
		// When: either mark fills the last cell without completing a line
		next, err := ApplyMove(board, 8, player)
		require.NoError(t, err)

		// Then: the game is a tie
		assert.Equal(t, entity.Outcome{Status: entity.StatusTie}, EvaluateOutcome(next), "player %s", player)
	}
}

func TestAlternation(t *testing.T) {
	// Given: an empty board with X to move
	board := entity.Board{}
	turn := x

	cells := []int{4, 0, 8, 2, 6, 3, 5, 7, 1}
	for n, cell := range cells {
		var err error

		// When: the active player makes a successful move
		board, err = ApplyMove(board, cell, turn)
		require.NoError(t, err)

		if EvaluateOutcome(board).IsTerminal() {
			break
		}
		turn = NextPlayer(turn)

		// Then: X is active after an even number of moves, O after an odd one
		if (n+1)%2 == 0 {
			assert.Equal(t, x, turn)
		} else {
			assert.Equal(t, o, turn)
		}
	}
}

func TestNextPlayer(t *testing.T) {
	assert.Equal(t, o, NextPlayer(x))
	assert.Equal(t, x, NextPlayer(o))
}

func TestEmptyCells(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, EmptyCells(entity.Board{}))
	assert.Equal(t, []int{2, 5, 8}, EmptyCells(entity.Board{x, o, e, x, o, e, o, x, e}))
	assert.Empty(t, EmptyCells(entity.Board{x, o, x, x, o, o, o, x, x}))
}

func TestIsWinningMove(t *testing.T) {
	board := entity.Board{x, x, e, o, o, e, e, e, e}

	assert.True(t, IsWinningMove(board, 2, x))
	assert.True(t, IsWinningMove(board, 5, o))
	assert.False(t, IsWinningMove(board, 2, o))
	assert.False(t, IsWinningMove(board, 0, o), "occupied cell never wins")
}

func TestEveryLineWins(t *testing.T) {
	lines := [8][3]int{
		{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
		{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
		{0, 4, 8}, {2, 4, 6},
	}

	require.Equal(t, lines, winCombos)

	for _, line := range lines {
		for _, mark := range []string{x, o} {
			var board entity.Board
			for _, cell := range line {
				board[cell] = mark
			}

			assert.Equal(t, entity.Outcome{Status: entity.StatusWon, Winner: mark}, EvaluateOutcome(board), "line %v", line)
		}
	}
}
