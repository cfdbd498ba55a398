package entity

import (
	"strings"
	"time"
)

const (
	StatusOngoing = "ongoing"
	StatusWon     = "won"
	StatusTie     = "tie"

	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

const (
	ModePlayerVsPlayer   = "pvp"
	ModePlayerVsComputer = "pvc"
)

// NoCell marks a move slot that was not played.
const NoCell = -1

// Board is the 3x3 grid stored row-major: index = row*3 + col.
type Board [9]string

// Outcome is derived from a Board, never stored as the source of truth.
type Outcome struct {
	Status string `json:"status"`
	Winner string `json:"winner,omitempty"`
}

func (that Outcome) IsTerminal() bool {
	return that.Status == StatusWon || that.Status == StatusTie
}

// Session is one game between resets. Board is replaced, never edited in place.
type Session struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Board     Board     `json:"board"`
	Turn      string    `json:"turn"`
	Computer  string    `json:"computer,omitempty"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSession(id, mode string, createdAt time.Time) *Session {
	session := &Session{
		ID:        id,
		Mode:      mode,
		Turn:      PlayerX,
		CreatedAt: createdAt,
	}

	if mode == ModePlayerVsComputer {
		session.Computer = PlayerO
	}

	return session
}

// Reset clears the board and gives the first move back to X. Mode and ID are kept.
func (that *Session) Reset() {
	that.Board = Board{}
	that.Turn = PlayerX
	that.Moves = 0
}

func (that *Session) IsWithComputer() bool {
	return that.Mode == ModePlayerVsComputer
}

// IsComputerTurn reports whether the advisor should play next.
func (that *Session) IsComputerTurn() bool {
	return that.IsWithComputer() && that.Turn == that.Computer
}

// SessionState is what the session manager hands to presentation. After a submit it
// reflects the player's move and, when the computer answered, its move too.
type SessionState struct {
	Session      *Session `json:"session"`
	Outcome      Outcome  `json:"outcome"`
	PlayerCell   int      `json:"player_cell"`
	ComputerCell int      `json:"computer_cell"`
}

func IsValidMode(mode string) bool {
	return mode == ModePlayerVsPlayer || mode == ModePlayerVsComputer
}

func IsPlayerMark(mark string) bool {
	return mark == PlayerX || mark == PlayerO
}

// String renders the board as three rows, "-" for empty cells.
func (that Board) String() string {
	var sb strings.Builder

	for i, cell := range that {
		if cell == EmptyCell {
			cell = "-"
		}
		sb.WriteString(cell)

		switch {
		case i%3 == 2 && i != len(that)-1:
			sb.WriteByte('\n')
		case i%3 != 2:
			sb.WriteByte(' ')
		}
	}

	return sb.String()
}

// StateView is the flat wire form of a SessionState.
type StateView struct {
	ID           string `json:"id"`
	Mode         string `json:"mode"`
	Board        Board  `json:"board"`
	Turn         string `json:"turn"`
	Status       string `json:"status"`
	Winner       string `json:"winner"`
	Moves        int    `json:"moves"`
	PlayerCell   int    `json:"player_cell"`
	ComputerCell int    `json:"computer_cell"`
}

func (that *SessionState) View() StateView {
	return StateView{
		ID:           that.Session.ID,
		Mode:         that.Session.Mode,
		Board:        that.Session.Board,
		Turn:         that.Session.Turn,
		Status:       that.Outcome.Status,
		Winner:       that.Outcome.Winner,
		Moves:        that.Session.Moves,
		PlayerCell:   that.PlayerCell,
		ComputerCell: that.ComputerCell,
	}
}
