package service

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
	"github.com/rocketscienceinc/tictactoe-core/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	ChooseMove(board entity.Board, computer, opponent string) (int, error)
}

type botService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBotService returns an advisor drawing its fallback moves from rnd.
// Pass a seeded source to make games reproducible.
func NewBotService(rnd *rand.Rand) BotService {
	return &botService{
		rnd: rnd,
	}
}

// ChooseMove plays a winning cell if there is one, else blocks the opponent's
// winning cell, else picks a random empty cell. It looks one ply ahead only,
// so forks are neither made nor seen.
func (that *botService) ChooseMove(board entity.Board, computer, opponent string) (int, error) {
	availableCells := tictactoe.EmptyCells(board)
	if len(availableCells) == 0 {
		return entity.NoCell, ErrNoAvailableMoves
	}

	for _, mark := range [2]string{computer, opponent} {
		for _, cell := range availableCells {
			if tictactoe.IsWinningMove(board, cell, mark) {
				return cell, nil
			}
		}
	}

	return availableCells[that.intn(len(availableCells))], nil
}

func (that *botService) intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Intn(n)
}
