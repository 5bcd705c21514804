package tokenizers

import (
	"unicode"

	"github.com/wbrown/masked_lm/types"
)

// JustSpaces splits on runs of whitespace and nothing else. Each token
// records its rune offset in the input.
type JustSpaces struct{}

func NewJustSpaces() JustSpaces {
	return JustSpaces{}
}

func (JustSpaces) Tokenize(text string) (types.Tokens, error) {
	return splitSpaces(text, 0), nil
}

// splitSpaces splits text on whitespace, adding base to every offset.
func splitSpaces(text string, base int) types.Tokens {
	tokens := make(types.Tokens, 0)
	runes := []rune(text)
	start := -1
	for idx, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens,
					types.NewTokenAt(string(runes[start:idx]), base+start))
				start = -1
			}
		} else if start < 0 {
			start = idx
		}
	}
	if start >= 0 {
		tokens = append(tokens,
			types.NewTokenAt(string(runes[start:]), base+start))
	}
	return tokens
}
