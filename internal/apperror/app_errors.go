package apperror

import "errors"

var (
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameAlreadyOver = errors.New("game is already over")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownMode     = errors.New("unknown game mode")
)
