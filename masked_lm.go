package masked_lm

import (
	"github.com/pkg/errors"
	"github.com/wbrown/masked_lm/fields"
	"github.com/wbrown/masked_lm/indexers"
	"github.com/wbrown/masked_lm/tokenizers"
	"github.com/wbrown/masked_lm/types"
)

// MaskToken marks a position whose true token is hidden and must be
// predicted. Upstream text preparation depends on this exact string.
const MaskToken = "[MASK]"

// Field names of the instances built by TextToInstance.
const (
	TokensField        = "tokens"
	MaskPositionsField = "mask_positions"
	TargetIdsField     = "target_ids"
)

// MaskedLanguageModelingReader builds masked language modeling instances:
// a token sequence with `[MASK]` placeholders, the positions of those
// placeholders, and optionally the true tokens that fill them.
//
// Targets are indexed with the same indexers as the input tokens, so both
// land in the same vocabulary namespace. When the input tokens carry ids of
// a sub-word model, targets are given ids from that same model.
type MaskedLanguageModelingReader struct {
	tokenizer     tokenizers.Tokenizer
	tokenIndexers indexers.TokenIndexers
	lazy          bool
}

type ReaderOption func(*MaskedLanguageModelingReader)

// WithTokenizer sets the tokenizer used when no tokens are supplied. A nil
// tokenizer keeps the default.
func WithTokenizer(tokenizer tokenizers.Tokenizer) ReaderOption {
	return func(reader *MaskedLanguageModelingReader) {
		if tokenizer != nil {
			reader.tokenizer = tokenizer
		}
	}
}

// WithTokenIndexers sets the indexers shared by the tokens and targets.
// An empty set keeps the default.
func WithTokenIndexers(tokenIndexers indexers.TokenIndexers) ReaderOption {
	return func(reader *MaskedLanguageModelingReader) {
		if len(tokenIndexers) > 0 {
			reader.tokenIndexers = tokenIndexers
		}
	}
}

// WithLazy selects streaming over eager reading. It has no effect on
// TextToInstance.
func WithLazy(lazy bool) ReaderOption {
	return func(reader *MaskedLanguageModelingReader) {
		reader.lazy = lazy
	}
}

// NewMaskedLanguageModelingReader defaults to whitespace tokenization and a
// single id indexer over the `tokens` namespace.
func NewMaskedLanguageModelingReader(
	opts ...ReaderOption) *MaskedLanguageModelingReader {
	reader := &MaskedLanguageModelingReader{
		tokenizer:     tokenizers.NewJustSpaces(),
		tokenIndexers: indexers.DefaultTokenIndexers(),
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

func (reader *MaskedLanguageModelingReader) Tokenizer() tokenizers.Tokenizer {
	return reader.tokenizer
}

func (reader *MaskedLanguageModelingReader) TokenIndexers() indexers.TokenIndexers {
	return reader.tokenIndexers
}

func (reader *MaskedLanguageModelingReader) Lazy() bool {
	return reader.lazy
}

// Read is not implemented: this reader has no corpus format of its own.
// MaskedCorpusReader reads pre-masked corpora on top of it.
func (reader *MaskedLanguageModelingReader) Read(
	path string) (InstancesIterator, error) {
	return nil, errors.Wrapf(ErrNotImplemented, "%T cannot read %s",
		reader, path)
}

// TextToInstance builds one instance with the fields `tokens`,
// `mask_positions` and `target_ids`.
//
// When tokens is empty, sentence is tokenized with the reader's tokenizer;
// otherwise sentence is ignored. Every `[MASK]` token yields one position,
// in order. Targets, when given, must match the mask count one to one; an
// empty targets slice counts as absent and yields an empty `target_ids`.
//
// It fails with ErrNoMaskTokens when there is no placeholder, and with a
// *TargetCountError when the counts differ.
func (reader *MaskedLanguageModelingReader) TextToInstance(sentence string,
	tokens types.Tokens, targets []string) (*fields.Instance, error) {
	if len(tokens) == 0 {
		tokenized, err := reader.tokenizer.Tokenize(sentence)
		if err != nil {
			return nil, errors.Wrap(err, "tokenizing sentence")
		}
		tokens = tokenized
	}
	inputField := fields.NewTextField(tokens, reader.tokenIndexers)

	positions := inputField.Tokens.Positions(MaskToken)
	if len(positions) == 0 {
		return nil, ErrNoMaskTokens
	}
	if len(targets) > 0 && len(targets) != len(positions) {
		return nil, &TargetCountError{
			Masks:   len(positions),
			Targets: len(targets),
		}
	}

	maskPositions := make([]fields.Field, len(positions))
	for idx, position := range positions {
		indexField, err := fields.NewIndexField(position, inputField)
		if err != nil {
			return nil, err
		}
		maskPositions[idx] = indexField
	}
	targetTokens := types.TokensFromTexts(targets)
	if tokens.HasTextIds() {
		targetTokens = tokenizers.TokensFromTexts(reader.tokenizer, targets)
	}
	targetField := fields.NewTextField(targetTokens, reader.tokenIndexers)

	instance := fields.NewInstance()
	for _, named := range []struct {
		name  string
		field fields.Field
	}{
		{TokensField, inputField},
		{MaskPositionsField, fields.NewListField(maskPositions...)},
		{TargetIdsField, targetField},
	} {
		if err := instance.AddField(named.name, named.field,
			nil); err != nil {
			return nil, err
		}
	}
	return instance, nil
}
