package apperror

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrNoMovesLeft      = errors.New("no moves left")
	ErrNoBombsAvailable = errors.New("no bombs available")
	ErrInvalidPosition  = errors.New("position is out of board bounds")
	ErrEmptyCell        = errors.New("cell is already empty")
	ErrGameFinished     = errors.New("game is already finished")
)
