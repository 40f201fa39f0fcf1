package engine

import "errors"

var (
	ErrRoomFull           = errors.New("room is full")
	ErrRoomNotFound       = errors.New("room not found")
	ErrAlreadyParticipant = errors.New("already a participant of this room")
	ErrNotAParticipant    = errors.New("not a participant of this room")
	ErrGameAlreadyOver    = errors.New("game already over")
	ErrNoPendingGuess     = errors.New("no guess to evaluate")
	ErrUnknownOpponent    = errors.New("opponent has not joined")
	ErrInvalidWord        = errors.New("invalid word")
	ErrWordLocked         = errors.New("word cannot change once the game started")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrOutOfTurn          = errors.New("not your turn")
)
