package tokenizers

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/wbrown/masked_lm/resources"
	"github.com/wbrown/masked_lm/types"
)

const (
	WordPieceVocabFile    = "vocab.txt"
	WordPieceUnknownToken = "[UNK]"
)

// WordPiece is a BERT-style tokenizer: BERT normalization and
// pre-tokenization followed by greedy longest-match-first sub-words. Every
// token carries its wordpiece id as TextId. No [CLS]/[SEP] are added.
type WordPiece struct {
	mu        sync.Mutex
	t         *tk.Tokenizer
	model     wordpiece.WordPiece
	unknown   int
	lowercase bool
}

func NewWordPieceFromFile(vocabPath string,
	lowercase bool) (*WordPiece, error) {
	wp, err := wordpiece.NewWordPieceFromFile(vocabPath,
		WordPieceUnknownToken)
	if err != nil {
		return nil, errors.Wrapf(err, "loading wordpiece vocabulary %s",
			vocabPath)
	}
	unknown, ok := wp.TokenToId(WordPieceUnknownToken)
	if !ok {
		return nil, errors.Errorf("wordpiece vocabulary %s has no %s",
			vocabPath, WordPieceUnknownToken)
	}
	t := tk.NewTokenizer(wp)
	t.WithNormalizer(normalizer.NewBertNormalizer(true, true, lowercase,
		lowercase))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())
	log.Info().Str("vocab", vocabPath).Msg("loaded wordpiece vocabulary")
	return &WordPiece{t: t, model: wp, unknown: unknown,
		lowercase: lowercase}, nil
}

func NewWordPieceFromConfig(config Config) (*WordPiece, error) {
	vocabPath, err := resources.ResolveFile(config.Model, WordPieceVocabFile,
		config.Dir, config.Auth)
	if err != nil {
		return nil, err
	}
	return NewWordPieceFromFile(vocabPath, config.Lowercase)
}

func (w *WordPiece) Tokenize(text string) (types.Tokens, error) {
	w.mu.Lock()
	enc, err := w.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)),
		false)
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}
	texts := enc.GetTokens()
	ids := enc.GetIds()
	tokens := make(types.Tokens, len(texts))
	for idx := range texts {
		id := ids[idx]
		tokens[idx] = types.Token{Text: texts[idx], TextId: &id}
	}
	return tokens, nil
}

// TokenId looks text up in the wordpiece vocabulary, retrying lowercased
// when the tokenizer lowercases its input.
func (w *WordPiece) TokenId(text string) int {
	if id, ok := w.model.TokenToId(text); ok {
		return id
	}
	if w.lowercase {
		if id, ok := w.model.TokenToId(strings.ToLower(text)); ok {
			return id
		}
	}
	return w.unknown
}
