package tokenizers

import (
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/masked_lm/types"
)

func offsets(tokens types.Tokens) []int {
	result := make([]int, len(tokens))
	for idx := range tokens {
		if tokens[idx].Idx == nil {
			result[idx] = -1
		} else {
			result[idx] = *tokens[idx].Idx
		}
	}
	return result
}

func TestJustSpaces(t *testing.T) {
	var tests = []struct {
		name    string
		input   string
		texts   []string
		offsets []int
	}{
		{"simple", "This is a [MASK] token .",
			[]string{"This", "is", "a", "[MASK]", "token", "."},
			[]int{0, 5, 8, 10, 17, 23}},
		{"runs", "  a \t\nb  ", []string{"a", "b"}, []int{2, 6}},
		{"empty", "", []string{}, []int{}},
		{"only spaces", "   ", []string{}, []int{}},
		{"multibyte", "héllo wörld", []string{"héllo", "wörld"},
			[]int{0, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewJustSpaces().Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.texts, tokens.Texts())
			assert.Equal(t, tt.offsets, offsets(tokens))
		})
	}
}

func TestRuneTreeLongestMatch(t *testing.T) {
	tree := NewRuneTree([]string{"[MASK]", "[MASK2]", "[SEP]"})
	runes := []rune("a[MASK2]b[MASK]c[MAS")
	assert.Equal(t, 0, tree.longestMatch(runes, 0))
	assert.Equal(t, 7, tree.longestMatch(runes, 1))
	assert.Equal(t, 6, tree.longestMatch(runes, 9))
	assert.Equal(t, 0, tree.longestMatch(runes, 16))
	assert.True(t, strings.Contains(tree.String(), "SEP]"))
}

func TestRuneTreeManyChildren(t *testing.T) {
	specials := make([]string, 0)
	for r := 'a'; r <= 'p'; r++ {
		specials = append(specials, "<"+string(r)+">")
	}
	tree := NewRuneTree(specials)
	for _, special := range specials {
		assert.Equal(t, 3, tree.longestMatch([]rune(special), 0), special)
	}
	assert.Equal(t, 0, tree.longestMatch([]rune("<z>"), 0))
}

type splitChars struct{}

func (splitChars) Tokenize(text string) (types.Tokens, error) {
	tokens := make(types.Tokens, 0)
	for idx, r := range []rune(text) {
		if r != ' ' {
			tokens = append(tokens, types.NewTokenAt(string(r), idx))
		}
	}
	return tokens, nil
}

func TestSpecialsKeepsMaskIntact(t *testing.T) {
	specials := NewSpecials(splitChars{})
	tokens, err := specials.Tokenize("ab [MASK]c[MASK]")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "[MASK]", "c", "[MASK]"},
		tokens.Texts())
	assert.Equal(t, []int{0, 1, 3, 9, 10}, offsets(tokens))
	assert.Equal(t, []string{DefaultMaskToken}, specials.SpecialStrings())
}

func TestSpecialsOverJustSpaces(t *testing.T) {
	specials := NewSpecials(NewJustSpaces(), "[MASK]", "<eos>")
	tokens, err := specials.Tokenize("The[MASK] sat<eos>")
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "[MASK]", "sat", "<eos>"},
		tokens.Texts())
	assert.Equal(t, []int{0, 3, 10, 13}, offsets(tokens))
}

func TestEnsureSpecials(t *testing.T) {
	wrapped := EnsureSpecials(NewJustSpaces(), DefaultMaskToken)
	specials, ok := wrapped.(*Specials)
	require.True(t, ok)
	assert.Same(t, specials, EnsureSpecials(specials, DefaultMaskToken))

	cached, err := NewCached(specials, 4)
	require.NoError(t, err)
	assert.Same(t, cached, EnsureSpecials(cached, DefaultMaskToken))

	other := NewSpecials(NewJustSpaces(), "<eos>")
	assert.NotSame(t, other, EnsureSpecials(other, DefaultMaskToken))

	tokens, err := wrapped.Tokenize("chased the [MASK].")
	require.NoError(t, err)
	assert.Equal(t, []string{"chased", "the", "[MASK]", "."}, tokens.Texts())
}

type failing struct{}

func (failing) Tokenize(string) (types.Tokens, error) {
	return nil, errors.New("boom")
}

func TestSpecialsPropagatesErrors(t *testing.T) {
	_, err := NewSpecials(failing{}).Tokenize("x [MASK]")
	assert.EqualError(t, err, "boom")
}

type counting struct {
	mu    sync.Mutex
	calls int
}

func (c *counting) Tokenize(text string) (types.Tokens, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return NewJustSpaces().Tokenize(text)
}

func TestCached(t *testing.T) {
	inner := &counting{}
	cached, err := NewCached(inner, 16)
	require.NoError(t, err)

	first, err := cached.Tokenize("a [MASK] b")
	require.NoError(t, err)
	first[0].Text = "mutated"
	second, err := cached.Tokenize("a [MASK] b")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "[MASK]", "b"}, second.Texts())
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, uint64(1), cached.LruHits.Load())
	assert.Equal(t, uint64(1), cached.LruMisses.Load())
	assert.Equal(t, 1, cached.Len())
}

func TestCachedInvalidSize(t *testing.T) {
	_, err := NewCached(NewJustSpaces(), 0)
	assert.Error(t, err)
}

func TestNewFactory(t *testing.T) {
	tokenizer, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, JustSpaces{}, tokenizer)

	tokenizer, err = New(Config{
		Type:      JustSpacesType,
		Specials:  []string{"[MASK]"},
		CacheSize: 8,
	})
	require.NoError(t, err)
	cached, ok := tokenizer.(*Cached)
	require.True(t, ok)
	assert.IsType(t, &Specials{}, cached.Inner)

	tokens, err := tokenizer.Tokenize("a[MASK]")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "[MASK]"}, tokens.Texts())

	_, err = New(Config{Type: "bpe"})
	assert.True(t, errors.Is(err, ErrUnknownTokenizer))
}

func TestNewFactoryMissingModel(t *testing.T) {
	_, err := New(Config{
		Type:  SentencePieceType,
		Model: "http://127.0.0.1:1",
		Dir:   t.TempDir(),
	})
	assert.Error(t, err)
}
