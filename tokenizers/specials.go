package tokenizers

import (
	"github.com/wbrown/masked_lm/types"
)

const DefaultMaskToken = "[MASK]"

// Specials keeps special strings such as `[MASK]` intact as single tokens.
// The text between them is handed to the inner tokenizer, whose offsets are
// shifted back into the coordinates of the whole input. When the inner
// tokenizer has a model vocabulary, special tokens carry their id in it.
type Specials struct {
	Inner    Tokenizer
	Tree     *RuneNode
	specials []string
}

// NewSpecials wraps inner. With no specials given, only `[MASK]` is kept.
func NewSpecials(inner Tokenizer, specials ...string) *Specials {
	if len(specials) == 0 {
		specials = []string{DefaultMaskToken}
	}
	return &Specials{
		Inner:    inner,
		Tree:     NewRuneTree(specials),
		specials: specials,
	}
}

func (s *Specials) SpecialStrings() []string {
	return append([]string(nil), s.specials...)
}

func (s *Specials) tokenizeSegment(runes []rune, start int, end int,
	tokens types.Tokens) (types.Tokens, error) {
	if start >= end {
		return tokens, nil
	}
	inner, err := s.Inner.Tokenize(string(runes[start:end]))
	if err != nil {
		return nil, err
	}
	for _, token := range inner {
		if token.Idx != nil {
			shifted := *token.Idx + start
			token.Idx = &shifted
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (s *Specials) Tokenize(text string) (types.Tokens, error) {
	runes := []rune(text)
	tokens := make(types.Tokens, 0)
	segmentStart := 0
	vocab, hasVocab := VocabOf(s.Inner)
	var err error
	for idx := 0; idx < len(runes); {
		matched := s.Tree.longestMatch(runes, idx)
		if matched == 0 {
			idx++
			continue
		}
		if tokens, err = s.tokenizeSegment(runes, segmentStart, idx,
			tokens); err != nil {
			return nil, err
		}
		special := types.NewTokenAt(string(runes[idx:idx+matched]), idx)
		if hasVocab {
			id := vocab.TokenId(special.Text)
			special.TextId = &id
		}
		tokens = append(tokens, special)
		idx += matched
		segmentStart = idx
	}
	return s.tokenizeSegment(runes, segmentStart, len(runes), tokens)
}

// EnsureSpecials returns tokenizer when it already keeps every one of
// specials whole, and wraps it in a Specials otherwise.
func EnsureSpecials(tokenizer Tokenizer, specials ...string) Tokenizer {
	if keepsWhole(tokenizer, specials) {
		return tokenizer
	}
	return NewSpecials(tokenizer, specials...)
}

func keepsWhole(tokenizer Tokenizer, specials []string) bool {
	switch wrapped := tokenizer.(type) {
	case *Cached:
		return keepsWhole(wrapped.Inner, specials)
	case *Specials:
		for _, special := range specials {
			if wrapped.Tree.longestMatch([]rune(special),
				0) != len([]rune(special)) {
				return false
			}
		}
		return true
	}
	return false
}
