//go:build !wasip1 && !js

package tokenizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProseTokenize(t *testing.T) {
	tokens, err := NewProse().Tokenize("The dög chased the cat.")
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "dög", "chased", "the", "cat", "."},
		tokens.Texts())
	assert.Equal(t, []int{0, 4, 8, 15, 19, 22}, offsets(tokens))
}

func TestProseWithSpecials(t *testing.T) {
	tokens, err := NewSpecials(NewProse()).Tokenize("The dog chased the [MASK].")
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "dog", "chased", "the", "[MASK]", "."},
		tokens.Texts())
	assert.Equal(t, []int{0, 4, 8, 15, 19, 25}, offsets(tokens))
}

func TestSplitSentences(t *testing.T) {
	sentences, err := SplitSentences("The cat sat on the mat. Then the " +
		"dog barked at it!  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"The cat sat on the mat.",
		"Then the dog barked at it!"}, sentences)

	sentences, err = SplitSentences("   ")
	require.NoError(t, err)
	assert.Empty(t, sentences)
}
