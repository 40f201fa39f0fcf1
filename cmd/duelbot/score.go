package main

import (
	"encoding/json"
	"slices"
	"strings"
)

// Mark is the per-letter feedback a player gives on an opponent's guess
type Mark string

const (
	MarkGreen  Mark = "green"
	MarkYellow Mark = "yellow"
	MarkGray   Mark = "gray"
)

// Score evaluates guess against answer using two-pass Wordle scoring.
// Exact positions are marked first; remaining letters are then matched
// against what is left of the answer so repeated letters are not over-counted.
func Score(answer, guess string) []Mark {
	a := []rune(strings.ToLower(answer))
	g := []rune(strings.ToLower(guess))

	marks := make([]Mark, len(g))
	remaining := make(map[rune]int)

	for i := range g {
		if i < len(a) && g[i] == a[i] {
			marks[i] = MarkGreen
			continue
		}
		if i < len(a) {
			remaining[a[i]]++
		}
	}
	for i := len(g); i < len(a); i++ {
		remaining[a[i]]++
	}

	for i, r := range g {
		if marks[i] == MarkGreen {
			continue
		}
		if remaining[r] > 0 {
			marks[i] = MarkYellow
			remaining[r]--
		} else {
			marks[i] = MarkGray
		}
	}
	return marks
}

// Solved reports whether every mark is green
func Solved(marks []Mark) bool {
	if len(marks) == 0 {
		return false
	}
	for _, m := range marks {
		if m != MarkGreen {
			return false
		}
	}
	return true
}

// DecodeMarks reads an evaluation payload. Payloads that are not an array of
// known marks (partial evaluations from a human player, for example) report
// false.
func DecodeMarks(raw json.RawMessage) ([]Mark, bool) {
	var marks []Mark
	if err := json.Unmarshal(raw, &marks); err != nil || marks == nil {
		return nil, false
	}
	for _, m := range marks {
		switch m {
		case MarkGreen, MarkYellow, MarkGray:
		default:
			return nil, false
		}
	}
	return marks, true
}

// Solver narrows a word list down to the words consistent with feedback
type Solver struct {
	candidates []string
}

// NewSolver keeps the distinct lower-cased words of words. A positive length
// drops words of any other length.
func NewSolver(words []string, length int) *Solver {
	seen := make(map[string]bool)
	var candidates []string
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		if length > 0 && len([]rune(w)) != length {
			continue
		}
		seen[w] = true
		candidates = append(candidates, w)
	}
	return &Solver{candidates: candidates}
}

// Next returns the guess to play, or false when no candidate is left
func (s *Solver) Next() (string, bool) {
	if len(s.candidates) == 0 {
		return "", false
	}
	return s.candidates[0], true
}

// Observe removes guess and, when marks are known, every candidate that
// would not have produced them
func (s *Solver) Observe(guess string, marks []Mark) {
	guess = strings.ToLower(guess)
	s.candidates = slices.DeleteFunc(s.candidates, func(w string) bool {
		if w == guess {
			return true
		}
		return marks != nil && !slices.Equal(Score(w, guess), marks)
	})
}

// Remaining is the number of candidates left
func (s *Solver) Remaining() int {
	return len(s.candidates)
}
