package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   *Rules
		wantErr bool
	}{
		{name: "classic", rules: &Rules{Name: "classic"}},
		{name: "strict", rules: &Rules{Name: "strict", StrictTurns: true, WordLength: 5}},
		{name: "nil rules", rules: nil, wantErr: true},
		{name: "missing name", rules: &Rules{Name: "  "}, wantErr: true},
		{name: "negative length", rules: &Rules{Name: "x", WordLength: -1}, wantErr: true},
		{name: "length too large", rules: &Rules{Name: "x", WordLength: MaxWordLength + 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.rules)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuiltinRules(t *testing.T) {
	builtins := BuiltinRules()

	assert.Len(t, builtins, 2)
	for name, rules := range builtins {
		assert.Equal(t, name, rules.Name)
		assert.NoError(t, ValidateRules(&rules))
	}
	assert.False(t, builtins[RulesClassic].StrictTurns)
	assert.True(t, builtins[RulesStrict].StrictTurns)
}

func TestRules_acceptsWord(t *testing.T) {
	classic := DefaultRules()
	strict := StrictRules()

	assert.True(t, classic.acceptsWord("a"))
	assert.True(t, classic.acceptsWord("banana"))
	assert.False(t, classic.acceptsWord(""))

	assert.True(t, strict.acceptsWord("apple"))
	assert.True(t, strict.acceptsWord("ñandú"), "length counts letters, not bytes")
	assert.False(t, strict.acceptsWord("pear"))
	assert.False(t, strict.acceptsWord("banana"))
}
