package main

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	G, Y, X := MarkGreen, MarkYellow, MarkGray

	tests := []struct {
		name   string
		answer string
		guess  string
		want   []Mark
	}{
		{"exact", "crane", "crane", []Mark{G, G, G, G, G}},
		{"nothing shared", "crane", "study", []Mark{X, X, X, X, X}},
		{"anagram", "least", "steal",[]Mark{Y, Y, Y, Y, Y}},
		{"mixed", "crane", "trace", []Mark{X, G, G, Y, G}},
		{"repeated guess letter counted once", "apple", "paper", []Mark{Y, Y, G, Y, X}},
		{"extra repeat is gray", "robot", "otter", []Mark{Y, Y, X, X, Y}},
		{"green wins over earlier yellow", "abbey", "babes", []Mark{Y, Y, G, G, X}},
		{"case insensitive", "Crane", "CRANE", []Mark{G, G, G, G, G}},
		{"shorter guess", "banana", "ban", []Mark{G, G, G}},
		{"longer guess", "ban", "banana", []Mark{G, G, G, X, X, X}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Score(tt.answer, tt.guess)); diff != "" {
				t.Errorf("Score(%q, %q) mismatch (-want +got):\n%s", tt.answer, tt.guess, diff)
			}
		})
	}
}

func TestSolved(t *testing.T) {
	assert.True(t, Solved(Score("ghost", "ghost")))
	assert.False(t, Solved(Score("ghost", "house")))
	assert.False(t, Solved(nil))
}

func TestDecodeMarks(t *testing.T) {
	marks, ok := DecodeMarks(json.RawMessage(`["green","yellow","gray"]`))
	assert.True(t, ok)
	assert.Equal(t, []Mark{MarkGreen, MarkYellow, MarkGray}, marks)

	for _, raw := range []string{`null`, `"green"`, `["green",null]`, `["blue"]`, `{`} {
		_, ok := DecodeMarks(json.RawMessage(raw))
		assert.False(t, ok, "payload %s", raw)
	}
}

func TestNewSolver(t *testing.T) {
	s := NewSolver([]string{"Crane", "crane", " plumb ", "", "banana"}, 5)

	assert.Equal(t, 2, s.Remaining())
	next, ok := s.Next()
	assert.True(t, ok)
	assert.Equal(t, "crane", next)
}

func TestSolverFindsEveryWord(t *testing.T) {
	for _, answer := range DefaultWords {
		s := NewSolver(DefaultWords, 5)

		found := false
		for turn := 0; turn < len(DefaultWords); turn++ {
			guess, ok := s.Next()
			if !ok {
				break
			}
			marks := Score(answer, guess)
			if Solved(marks) {
				found = true
				break
			}
			s.Observe(guess, marks)
		}
		assert.True(t, found, "solver never guessed %q", answer)
	}
}

func TestSolverWithoutMarks(t *testing.T) {
	s := NewSolver([]string{"apple", "beach", "candy"}, 0)

	s.Observe("APPLE", nil)

	assert.Equal(t, 2, s.Remaining())
	next, _ := s.Next()
	assert.Equal(t, "beach", next)
}

func TestSolverExhausted(t *testing.T) {
	s := NewSolver([]string{"apple"}, 0)
	s.Observe("apple", nil)

	_, ok := s.Next()
	assert.False(t, ok)
}
