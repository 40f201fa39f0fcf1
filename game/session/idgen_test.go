package session

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var roomIDPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestRandomIDGenerator(t *testing.T) {
	gen := RandomIDGenerator{}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.Generate()
		assert.Regexp(t, roomIDPattern, id)
		seen[id] = true
	}
	// 36^6 possible ids; a thousand draws should practically never collide
	assert.Greater(t, len(seen), 990)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeID("ab12cd"))
	assert.Equal(t, "AB12CD", NormalizeID("  Ab12Cd\n"))
	assert.Equal(t, "", NormalizeID("   "))
}
