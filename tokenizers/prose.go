//go:build !wasip1 && !js

package tokenizers

import (
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
	"github.com/wbrown/masked_lm/types"
)

// Prose is a rule-based English word tokenizer. It splits punctuation and
// contractions, so `[MASK]` needs a Specials wrapper to survive.
type Prose struct{}

func NewProse() Prose {
	return Prose{}
}

func (Prose) Tokenize(text string) (types.Tokens, error) {
	doc, err := prose.NewDocument(
		text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, err
	}
	proseTokens := doc.Tokens()
	tokens := make(types.Tokens, 0, len(proseTokens))
	byteCursor, runeCursor := 0, 0
	for _, proseToken := range proseTokens {
		found := strings.Index(text[byteCursor:], proseToken.Text)
		if found < 0 {
			// Normalized by prose, no offset to report.
			tokens = append(tokens, types.NewToken(proseToken.Text))
			continue
		}
		runeCursor += utf8.RuneCountInString(
			text[byteCursor : byteCursor+found])
		byteCursor += found
		tokens = append(tokens, types.NewTokenAt(proseToken.Text, runeCursor))
		runeCursor += utf8.RuneCountInString(proseToken.Text)
		byteCursor += len(proseToken.Text)
	}
	return tokens, nil
}

// SplitSentences segments text into sentences.
func SplitSentences(text string) ([]string, error) {
	doc, err := prose.NewDocument(
		text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false),
	)
	if err != nil {
		return nil, err
	}
	proseSentences := doc.Sentences()
	sentences := make([]string, 0, len(proseSentences))
	for _, sentence := range proseSentences {
		if trimmed := strings.TrimSpace(sentence.Text); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences, nil
}
