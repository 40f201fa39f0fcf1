package engine

import (
	"fmt"
	"strings"
)

const (
	RulesClassic = "classic"
	RulesStrict  = "strict"
)

// Rules selects how strictly a room polices its players.
//
// Classic rules accept guesses and evaluations from either participant at any
// time and let a player replace their word mid-game. Strict rules only accept
// a guess from the turn holder once the game has started, only accept an
// evaluation from the opponent of a pending guess, and lock words once play begins.
type Rules struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StrictTurns bool   `json:"strict_turns"`
	// WordLength fixes the number of letters of secret words. Zero accepts any
	// non-empty word up to MaxWordLength.
	WordLength int `json:"word_length"`
}

// DefaultRules returns the classic profile
func DefaultRules() Rules {
	return Rules{
		Name:        RulesClassic,
		Description: "Either player may guess or evaluate at any time; any non-empty word",
	}
}

// StrictRules returns the strict profile
func StrictRules() Rules {
	return Rules{
		Name:        RulesStrict,
		Description: "Players alternate guesses, only the opponent evaluates, five-letter words",
		StrictTurns: true,
		WordLength:  5,
	}
}

// BuiltinRules returns the profiles available without any rules files
func BuiltinRules() map[string]Rules {
	return map[string]Rules{
		RulesClassic: DefaultRules(),
		RulesStrict:  StrictRules(),
	}
}

// ValidateRules checks a rules profile for consistency
func ValidateRules(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("rules validation: rules cannot be nil")
	}
	if strings.TrimSpace(rules.Name) == "" {
		return fmt.Errorf("rules validation: name is required")
	}
	if rules.WordLength < 0 || rules.WordLength > MaxWordLength {
		return fmt.Errorf("rules validation: word_length must be between 0 and %d, got %d", MaxWordLength, rules.WordLength)
	}
	return nil
}

// acceptsWord reports whether a lower-cased word satisfies the profile
func (r Rules) acceptsWord(word string) bool {
	n := len([]rune(word))
	if n == 0 || n > MaxWordLength {
		return false
	}
	return r.WordLength == 0 || n == r.WordLength
}
