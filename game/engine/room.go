package engine

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

var nullEvaluation = json.RawMessage("null")

// Room is one two-player game session. All methods are safe for concurrent
// use; mutations of the same room are serialized by the room's mutex.
type Room struct {
	id    string
	rules Rules

	mu           sync.Mutex
	participants []string
	words        map[string]string
	guesses      []GuessRecord
	turnIndex    int
	gameOver     bool
	winner       string
	closed       bool
	createdAt    time.Time
	lastActivity time.Time
}

// NewRoom creates an empty room in the waiting phase
func NewRoom(id string, rules Rules) *Room {
	now := time.Now()
	return &Room{
		id:           id,
		rules:        rules,
		participants: make([]string, 0, MaxParticipants),
		words:        make(map[string]string, MaxParticipants),
		createdAt:    now,
		lastActivity: now,
	}
}

// ID returns the room identifier
func (r *Room) ID() string {
	return r.id
}

// Rules returns the profile the room was created with
func (r *Room) Rules() Rules {
	return r.rules
}

// AddParticipant seats connID in the next free slot
func (r *Room) AddParticipant(connID string) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return JoinResult{}, ErrRoomNotFound
	}
	if slices.Contains(r.participants, connID) {
		return JoinResult{}, ErrAlreadyParticipant
	}
	if len(r.participants) >= MaxParticipants {
		return JoinResult{}, ErrRoomFull
	}

	r.participants = append(r.participants, connID)
	r.touch()

	return JoinResult{
		Slot:         len(r.participants) - 1,
		Participants: slices.Clone(r.participants),
		Full:         len(r.participants) == MaxParticipants,
	}, nil
}

// SubmitWord stores connID's secret word, replacing any earlier submission
func (r *Room) SubmitWord(connID, word string) (WordResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return WordResult{}, ErrRoomNotFound
	}
	if r.gameOver {
		return WordResult{}, ErrGameAlreadyOver
	}
	if !slices.Contains(r.participants, connID) {
		return WordResult{}, ErrNotAParticipant
	}

	word = strings.ToLower(word)
	if !r.rules.acceptsWord(word) {
		return WordResult{}, ErrInvalidWord
	}

	before := r.phaseLocked()
	if r.rules.StrictTurns && before == PhasePlaying {
		return WordResult{}, ErrWordLocked
	}

	r.words[connID] = word
	r.touch()

	return WordResult{
		Words:   maps.Clone(r.words),
		Count:   len(r.words),
		Started: before != PhasePlaying && r.phaseLocked() == PhasePlaying,
	}, nil
}

// SubmitGuess checks guess against the opponent's word. A match ends the
// game; anything else is appended to the guess log awaiting evaluation.
func (r *Room) SubmitGuess(connID, guess string) (GuessOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return GuessOutcome{}, ErrRoomNotFound
	}
	if r.gameOver {
		return GuessOutcome{}, ErrGameAlreadyOver
	}
	if len(r.participants) != MaxParticipants {
		return GuessOutcome{}, ErrUnknownOpponent
	}
	opponent, ok := r.opponentLocked(connID)
	if !ok {
		return GuessOutcome{}, ErrNotAParticipant
	}

	if r.rules.StrictTurns {
		if r.phaseLocked() != PhasePlaying {
			return GuessOutcome{}, ErrGameNotStarted
		}
		if r.participants[r.turnIndex] != connID || r.pendingLocked() {
			return GuessOutcome{}, ErrOutOfTurn
		}
	}

	guess = strings.ToLower(guess)
	r.touch()

	// A missing opponent word never matches.
	if target, ok := r.words[opponent]; ok && target != "" && guess == target {
		r.gameOver = true
		r.winner = connID
		return GuessOutcome{
			Win:      true,
			Guesser:  connID,
			Opponent: opponent,
			Guess:    guess,
			Words:    maps.Clone(r.words),
		}, nil
	}

	r.guesses = append(r.guesses, GuessRecord{Guesser: connID, Text: guess})

	return GuessOutcome{
		Guesser:  connID,
		Opponent: opponent,
		Guess:    guess,
	}, nil
}

// SubmitEvaluation attaches evaluation to the latest guess and hands the turn over
func (r *Room) SubmitEvaluation(connID string, evaluation json.RawMessage) (EvalOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return EvalOutcome{}, ErrRoomNotFound
	}
	if r.gameOver {
		return EvalOutcome{}, ErrGameAlreadyOver
	}
	if len(r.guesses) == 0 {
		return EvalOutcome{}, ErrNoPendingGuess
	}
	if !slices.Contains(r.participants, connID) {
		return EvalOutcome{}, ErrNotAParticipant
	}

	last := &r.guesses[len(r.guesses)-1]
	if r.rules.StrictTurns && (last.Guesser == connID || last.Evaluated()) {
		return EvalOutcome{}, ErrOutOfTurn
	}

	if len(evaluation) == 0 {
		evaluation = nullEvaluation
	}
	last.Evaluation = slices.Clone(evaluation)
	r.turnIndex = (r.turnIndex + 1) % MaxParticipants
	r.touch()

	return EvalOutcome{
		Guess:      last.Text,
		Evaluation: slices.Clone(last.Evaluation),
		TurnIndex:  r.turnIndex,
		NextTurn:   r.participants[r.turnIndex],
	}, nil
}

// Close marks the room as destroyed and returns its participants. Every
// later mutation fails with ErrRoomNotFound. The second result is false when
// the room was already closed.
func (r *Room) Close() ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false
	}
	r.closed = true
	return slices.Clone(r.participants), true
}

// HasParticipant reports whether connID holds a slot in the room
func (r *Room) HasParticipant(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.participants, connID)
}

// Participants returns the seated connections in slot order
func (r *Room) Participants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.participants)
}

// Phase returns the current lifecycle stage
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phaseLocked()
}

// IsGameOver reports whether a guess has already won the game
func (r *Room) IsGameOver() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gameOver
}

// TurnIndex returns the slot whose player guesses next
func (r *Room) TurnIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turnIndex
}

// Guesses returns a copy of the guess log
func (r *Room) Guesses() []GuessRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyGuesses(r.guesses)
}

// Snapshot returns a deep copy of the room state
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		ID:           r.id,
		Phase:        r.phaseLocked(),
		Rules:        r.rules.Name,
		Participants: slices.Clone(r.participants),
		WordCount:    len(r.words),
		Guesses:      copyGuesses(r.guesses),
		TurnIndex:    r.turnIndex,
		GameOver:     r.gameOver,
		Winner:       r.winner,
		CreatedAt:    r.createdAt,
		LastActivity: r.lastActivity,
	}
	if r.gameOver {
		snap.Words = maps.Clone(r.words)
	}
	return snap
}

func (r *Room) phaseLocked() Phase {
	switch {
	case r.gameOver:
		return PhaseOver
	case len(r.participants) < MaxParticipants:
		return PhaseWaiting
	case len(r.words) < MaxParticipants:
		return PhaseReady
	default:
		return PhasePlaying
	}
}

func (r *Room) opponentLocked(connID string) (string, bool) {
	if !slices.Contains(r.participants, connID) {
		return "", false
	}
	for _, p := range r.participants {
		if p != connID {
			return p, true
		}
	}
	return "", false
}

func (r *Room) pendingLocked() bool {
	return len(r.guesses) > 0 && !r.guesses[len(r.guesses)-1].Evaluated()
}

func (r *Room) touch() {
	r.lastActivity = time.Now()
}

func copyGuesses(in []GuessRecord) []GuessRecord {
	out := make([]GuessRecord, len(in))
	for i, g := range in {
		out[i] = GuessRecord{
			Guesser:    g.Guesser,
			Text:       g.Text,
			Evaluation: slices.Clone(g.Evaluation),
		}
	}
	return out
}
