package vocab

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"github.com/wbrown/masked_lm/resources"
)

// ItemCounter is anything that can tally the vocabulary items it contains,
// such as an instance or a single field.
type ItemCounter interface {
	CountVocabItems(counter Counter)
}

// FromInstances counts the vocabulary items of every instance and builds a
// Vocabulary holding each item seen at least minCount times.
func FromInstances[T ItemCounter](instances []T, minCount int,
	nonPadded ...string) *Vocabulary {
	counter := make(Counter)
	for idx := range instances {
		instances[idx].CountVocabItems(counter)
	}
	vocabulary := NewVocabulary(nonPadded...)
	if minCount < 1 {
		minCount = 1
	}
	vocabulary.ExtendFromCounter(counter, minCount)
	log.Debug().
		Int("instances", len(instances)).
		Str("vocabulary", vocabulary.String()).
		Msg("built vocabulary from instances")
	return vocabulary
}

// FromSentencePiece loads the pieces of a SentencePiece model into
// namespace, preserving the model's own piece ids. The namespace is created
// non-padded, as the model already carries its own control pieces.
func FromSentencePiece(modelPath string, namespace string) (*Vocabulary,
	error) {
	var model sentencepiece.ModelProto
	if err := resources.ReadProto(modelPath, &model); err != nil {
		return nil, errors.Wrap(err, "reading sentencepiece model")
	}
	pieces := model.GetPieces()
	if len(pieces) == 0 {
		return nil, errors.Errorf("sentencepiece model %s has no pieces",
			modelPath)
	}
	texts := make([]string, len(pieces))
	unknown := ""
	for idx, piece := range pieces {
		texts[idx] = piece.GetPiece()
		if piece.GetType() == sentencepiece.ModelProto_SentencePiece_UNKNOWN {
			unknown = piece.GetPiece()
		}
	}

	vocabulary := NewVocabulary(append(DefaultNonPaddedNamespaces,
		namespace)...)
	if unknown != "" {
		vocabulary.OOVToken = unknown
	}
	vocabulary.AddTokensToNamespace(texts, namespace)
	log.Debug().
		Str("model", modelPath).
		Int("pieces", len(pieces)).
		Msg("loaded sentencepiece vocabulary")
	return vocabulary, nil
}
