package types

// Token is a single unit of text as produced by a tokenizer. Tokens are
// plain values and may be copied freely.
type Token struct {
	Text   string
	Idx    *int // Character offset into the source text, if known.
	TextId *int // Pre-computed vocabulary id, used verbatim by indexers.
}

type Tokens []Token
