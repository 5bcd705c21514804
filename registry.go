package masked_lm

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/wbrown/masked_lm/indexers"
	"github.com/wbrown/masked_lm/tokenizers"
)

const (
	MaskedLanguageModelingName = "masked_language_modeling"
	MaskedCorpusName           = "masked_language_modeling_corpus"
)

// ReaderConfig describes a dataset reader. It decodes from viper
// configuration through its mapstructure tags.
type ReaderConfig struct {
	Type          string                     `mapstructure:"type"`
	Lazy          bool                       `mapstructure:"lazy"`
	Tokenizer     tokenizers.Config          `mapstructure:"tokenizer"`
	TokenIndexers map[string]indexers.Config `mapstructure:"token_indexers"`
	Corpus        CorpusOptions              `mapstructure:"corpus"`
}

type readerFactory func(config ReaderConfig,
	opts []ReaderOption) DatasetReader

var readerFactories = map[string]readerFactory{
	MaskedLanguageModelingName: func(_ ReaderConfig,
		opts []ReaderOption) DatasetReader {
		return NewMaskedLanguageModelingReader(opts...)
	},
	MaskedCorpusName: func(config ReaderConfig,
		opts []ReaderOption) DatasetReader {
		return NewMaskedCorpusReader(config.Corpus, opts...)
	},
}

// ReaderNames lists the registered reader types in sorted order.
func ReaderNames() []string {
	names := make([]string, 0, len(readerFactories))
	for name := range readerFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDatasetReader builds the reader named by config.Type, defaulting to
// MaskedLanguageModelingName.
//
// Tokenizers other than whitespace splitting break `[MASK]` apart, so they
// are made to keep it whole unless specials are configured explicitly.
func NewDatasetReader(config ReaderConfig) (DatasetReader, error) {
	name := config.Type
	if name == "" {
		name = MaskedLanguageModelingName
	}
	factory, ok := readerFactories[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownReader, "%q", name)
	}

	tokenizerConfig := config.Tokenizer
	if tokenizerConfig.Type != "" &&
		tokenizerConfig.Type != tokenizers.JustSpacesType &&
		len(tokenizerConfig.Specials) == 0 {
		tokenizerConfig.Specials = []string{MaskToken}
	}
	tokenizer, err := tokenizers.New(tokenizerConfig)
	if err != nil {
		return nil, errors.Wrap(err, "building tokenizer")
	}
	tokenIndexers, err := indexers.New(config.TokenIndexers)
	if err != nil {
		return nil, errors.Wrap(err, "building token indexers")
	}
	return factory(config, []ReaderOption{
		WithTokenizer(tokenizer),
		WithTokenIndexers(tokenIndexers),
		WithLazy(config.Lazy),
	}), nil
}
