package session

import (
	"math/rand/v2"
	"strings"
)

const (
	// IDLength is the number of characters in a room identifier
	IDLength = 6

	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// IDGenerator supplies candidate room identifiers. Implementations need not
// guarantee uniqueness; the registry retries on collision.
type IDGenerator interface {
	Generate() string
}

// RandomIDGenerator draws each character uniformly from [A-Z0-9]
type RandomIDGenerator struct{}

// Generate returns a random 6-character room identifier
func (RandomIDGenerator) Generate() string {
	var b strings.Builder
	b.Grow(IDLength)
	for i := 0; i < IDLength; i++ {
		b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return b.String()
}

// NormalizeID maps user input onto the canonical upper-case form
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
