package types

import "strings"

// NewToken returns a Token carrying only text.
func NewToken(text string) Token {
	return Token{Text: text}
}

// NewTokenAt returns a Token carrying its character offset in the source.
func NewTokenAt(text string, idx int) Token {
	return Token{Text: text, Idx: &idx}
}

// TokensFromTexts wraps each string in a Token, in order.
func TokensFromTexts(texts []string) Tokens {
	tokens := make(Tokens, len(texts))
	for idx := range texts {
		tokens[idx] = NewToken(texts[idx])
	}
	return tokens
}

// Texts returns the text of every token, in order.
func (tokens Tokens) Texts() []string {
	texts := make([]string, len(tokens))
	for idx := range tokens {
		texts[idx] = tokens[idx].Text
	}
	return texts
}

// Positions returns the index of every token whose text equals text, in
// left-to-right order.
func (tokens Tokens) Positions(text string) []int {
	positions := make([]int, 0)
	for idx := range tokens {
		if tokens[idx].Text == text {
			positions = append(positions, idx)
		}
	}
	return positions
}

func (tokens Tokens) String() string {
	return strings.Join(tokens.Texts(), " ")
}

// HasTextIds reports whether any token carries a precomputed id.
func (tokens Tokens) HasTextIds() bool {
	for idx := range tokens {
		if tokens[idx].TextId != nil {
			return true
		}
	}
	return false
}
