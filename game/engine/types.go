package engine

import (
	"encoding/json"
	"time"
)

// Phase is the derived lifecycle stage of a room
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseReady   Phase = "ready"
	PhasePlaying Phase = "playing"
	PhaseOver    Phase = "over"

	MaxParticipants = 2
	MaxWordLength   = 64
)

// GuessRecord is one entry of a room's guess log. Evaluation stays nil until
// the opponent evaluates the guess and is omitted from JSON while pending.
type GuessRecord struct {
	Guesser    string          `json:"guesser"`
	Text       string          `json:"text"`
	Evaluation json.RawMessage `json:"evaluation,omitempty"`
}

// Evaluated reports whether the opponent has answered this guess
func (g GuessRecord) Evaluated() bool {
	return g.Evaluation != nil
}

// JoinResult is returned by AddParticipant
type JoinResult struct {
	Slot         int
	Participants []string
	Full         bool
}

// WordResult is returned by SubmitWord
type WordResult struct {
	Words   map[string]string
	Count   int
	Started bool
}

// GuessOutcome is returned by SubmitGuess. On a win Words holds both secret
// words; on a miss the guess was appended to the log and Opponent must evaluate it.
type GuessOutcome struct {
	Win      bool
	Guesser  string
	Opponent string
	Guess    string
	Words    map[string]string
}

// EvalOutcome is returned by SubmitEvaluation
type EvalOutcome struct {
	Guess      string
	Evaluation json.RawMessage
	TurnIndex  int
	NextTurn   string
}

// Snapshot is a point-in-time copy of a room for inspection.
// Words is only populated once the game is over.
type Snapshot struct {
	ID           string            `json:"id"`
	Phase        Phase             `json:"phase"`
	Rules        string            `json:"rules"`
	Participants []string          `json:"participants"`
	WordCount    int               `json:"word_count"`
	Words        map[string]string `json:"words,omitempty"`
	Guesses      []GuessRecord     `json:"guesses"`
	TurnIndex    int               `json:"turn_index"`
	GameOver     bool              `json:"game_over"`
	Winner       string            `json:"winner,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
}
