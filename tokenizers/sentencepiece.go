package tokenizers

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"github.com/wbrown/masked_lm/resources"
	"github.com/wbrown/masked_lm/types"
)

const (
	SentencePieceModelFile = "spiece.model"
	// WordBoundary prefixes the pieces that start a word.
	WordBoundary = "▁"
)

// SentencePiece tokenizes with a SentencePiece unigram model. Every token
// carries its piece id as TextId.
type SentencePiece struct {
	model     sentencepiece.Sentencepiece
	pieces    map[string]int
	unknown   int
	lowercase bool
}

func NewSentencePieceFromFile(modelPath string,
	lowercase bool) (*SentencePiece, error) {
	model, err := sentencepiece.NewSentencepieceFromFile(modelPath, lowercase)
	if err != nil {
		return nil, errors.Wrapf(err, "loading sentencepiece model %s",
			modelPath)
	}
	var modelProto sentencepiece.ModelProto
	if err = resources.ReadProto(modelPath, &modelProto); err != nil {
		return nil, errors.Wrap(err, "reading sentencepiece pieces")
	}
	pieces := make(map[string]int, len(modelProto.GetPieces()))
	for idx, piece := range modelProto.GetPieces() {
		if _, seen := pieces[piece.GetPiece()]; !seen {
			pieces[piece.GetPiece()] = idx
		}
	}
	log.Info().Str("model", modelPath).Int("pieces", len(pieces)).
		Msg("loaded sentencepiece model")
	return &SentencePiece{
		model:     model,
		pieces:    pieces,
		unknown:   int(model.GetUnknownIndex()),
		lowercase: lowercase,
	}, nil
}

func NewSentencePieceFromConfig(config Config) (*SentencePiece, error) {
	modelPath, err := resources.ResolveFile(config.Model,
		SentencePieceModelFile, config.Dir, config.Auth)
	if err != nil {
		return nil, err
	}
	return NewSentencePieceFromFile(modelPath, config.Lowercase)
}

func (s *SentencePiece) Tokenize(text string) (types.Tokens, error) {
	pieces := s.model.Tokenize(text)
	tokens := make(types.Tokens, len(pieces))
	for idx, piece := range pieces {
		id := int(piece.ID)
		tokens[idx] = types.Token{Text: piece.Text, TextId: &id}
	}
	return tokens, nil
}

// TokenId looks a whole word up as the word-initial piece first, then as
// the bare piece, so both `cat` and `[MASK]` resolve.
func (s *SentencePiece) TokenId(text string) int {
	candidates := []string{WordBoundary + text, text}
	if s.lowercase {
		lower := strings.ToLower(text)
		candidates = append(candidates, WordBoundary+lower, lower)
	}
	for _, candidate := range candidates {
		if id, ok := s.pieces[candidate]; ok {
			return id
		}
	}
	return s.unknown
}
