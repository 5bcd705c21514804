package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokensFromTexts(t *testing.T) {
	tokens := TokensFromTexts([]string{"a", "[MASK]", "b"})
	assert.Equal(t, []string{"a", "[MASK]", "b"}, tokens.Texts())
	assert.Nil(t, tokens[0].Idx)
	assert.Equal(t, "a [MASK] b", tokens.String())
}

func TestPositions(t *testing.T) {
	tokens := TokensFromTexts([]string{"x", "[MASK]", "y", "z", "[MASK]"})
	assert.Equal(t, []int{1, 4}, tokens.Positions("[MASK]"))
	assert.Empty(t, tokens.Positions("missing"))
}

func TestNewTokenAt(t *testing.T) {
	token := NewTokenAt("word", 7)
	if assert.NotNil(t, token.Idx) {
		assert.Equal(t, 7, *token.Idx)
	}
	assert.Nil(t, token.TextId)
}

func TestHasTextIds(t *testing.T) {
	tokens := TokensFromTexts([]string{"a", "b"})
	assert.False(t, tokens.HasTextIds())
	id := 3
	tokens[1].TextId = &id
	assert.True(t, tokens.HasTextIds())
}
