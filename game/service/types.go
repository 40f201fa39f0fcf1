package service

import (
	"encoding/json"
	"time"

	"github.com/wricardo/wordduel/game/engine"
)

// ActionType names an inbound player action
type ActionType string

const (
	ActionCreateRoom       ActionType = "createRoom"
	ActionJoinRoom         ActionType = "joinRoom"
	ActionSubmitWord       ActionType = "submitWord"
	ActionMakeGuess        ActionType = "makeGuess"
	ActionSubmitEvaluation ActionType = "submitEvaluation"
	ActionDisconnect       ActionType = "disconnect"
)

// Outbound event names
const (
	EventConnected          = "connected"
	EventRoomCreated        = "roomCreated"
	EventRoomJoined         = "roomJoined"
	EventError              = "error"
	EventUpdateWords        = "updateWords"
	EventStartGame          = "startGame"
	EventGameOver           = "gameOver"
	EventOpponentGuess      = "opponentGuess"
	EventGuessSent          = "guessSent"
	EventGuessEvaluated     = "guessEvaluated"
	EventNextTurn           = "nextTurn"
	EventPlayerDisconnected = "playerDisconnected"
)

// JoinFailedMessage is the only error text players ever see
const JoinFailedMessage = "Room is full or does not exist."

// Action is one inbound message from a player connection
type Action struct {
	Type       ActionType      `json:"type"`
	RoomID     string          `json:"roomId,omitempty"`
	Word       string          `json:"word,omitempty"`
	Guess      string          `json:"guess,omitempty"`
	Evaluation json.RawMessage `json:"evaluation,omitempty"`
}

// Audience records how a notification was addressed
type Audience string

const (
	AudienceRoom        Audience = "room"
	AudienceSender      Audience = "sender"
	AudienceParticipant Audience = "participant"
)

// Notification is one outbound event with its recipients already resolved
type Notification struct {
	Event      string
	Data       any
	Audience   Audience
	Recipients []string
}

// GameOverPayload is the data of a gameOver event
type GameOverPayload struct {
	Winner string            `json:"winner"`
	Words  map[string]string `json:"words"`
}

// GuessEvaluatedPayload is the data of a guessEvaluated event
type GuessEvaluatedPayload struct {
	Guess      string          `json:"guess"`
	Evaluation json.RawMessage `json:"evaluation"`
}

// ConnectedPayload greets a new connection with its identity
type ConnectedPayload struct {
	ID string `json:"id"`
}

// RoomInfo provides information about a live room
type RoomInfo struct {
	ID           string               `json:"id"`
	Phase        engine.Phase         `json:"phase"`
	Rules        string               `json:"rules"`
	Participants []string             `json:"participants"`
	WordCount    int                  `json:"word_count"`
	Words        map[string]string    `json:"words,omitempty"`
	Guesses      []engine.GuessRecord `json:"guesses"`
	TurnIndex    int                  `json:"turn_index"`
	NextTurn     string               `json:"next_turn,omitempty"`
	GameOver     bool                 `json:"game_over"`
	Winner       string               `json:"winner,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	LastActivity time.Time            `json:"last_activity"`
}

func newRoomInfo(snap engine.Snapshot) *RoomInfo {
	info := &RoomInfo{
		ID:           snap.ID,
		Phase:        snap.Phase,
		Rules:        snap.Rules,
		Participants: snap.Participants,
		WordCount:    snap.WordCount,
		Words:        snap.Words,
		Guesses:      snap.Guesses,
		TurnIndex:    snap.TurnIndex,
		GameOver:     snap.GameOver,
		Winner:       snap.Winner,
		CreatedAt:    snap.CreatedAt,
		LastActivity: snap.LastActivity,
	}
	if snap.Phase == engine.PhasePlaying && snap.TurnIndex < len(snap.Participants) {
		info.NextTurn = snap.Participants[snap.TurnIndex]
	}
	return info
}
