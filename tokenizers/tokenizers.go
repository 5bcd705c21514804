package tokenizers

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wbrown/masked_lm/types"
)

const (
	JustSpacesType    = "just_spaces"
	ProseType         = "prose"
	SentencePieceType = "sentencepiece"
	WordPieceType     = "wordpiece"
)

var ErrUnknownTokenizer = errors.New("unknown tokenizer type")

// Tokenizer splits text into tokens. Implementations must be safe for
// concurrent use.
type Tokenizer interface {
	Tokenize(text string) (types.Tokens, error)
}

// Config selects and parameterizes a Tokenizer. Model is a local path, an
// HTTP(S) URL, or a HuggingFace model id; remote files are downloaded into
// Dir.
type Config struct {
	Type      string   `mapstructure:"type"`
	Model     string   `mapstructure:"model"`
	Dir       string   `mapstructure:"dir"`
	Auth      string   `mapstructure:"auth"`
	Lowercase bool     `mapstructure:"lowercase"`
	Specials  []string `mapstructure:"specials"`
	CacheSize int      `mapstructure:"cache_size"`
}

// New builds the tokenizer described by config. A non-empty Specials list
// wraps it so those strings survive as single tokens, and a positive
// CacheSize wraps it in an ARC cache.
func New(config Config) (Tokenizer, error) {
	var tokenizer Tokenizer
	var err error
	switch config.Type {
	case "", JustSpacesType:
		tokenizer = NewJustSpaces()
	case ProseType:
		tokenizer = NewProse()
	case SentencePieceType:
		tokenizer, err = NewSentencePieceFromConfig(config)
	case WordPieceType:
		tokenizer, err = NewWordPieceFromConfig(config)
	default:
		return nil, errors.Wrapf(ErrUnknownTokenizer, "%q", config.Type)
	}
	if err != nil {
		return nil, err
	}
	if len(config.Specials) > 0 {
		tokenizer = NewSpecials(tokenizer, config.Specials...)
	}
	if config.CacheSize > 0 {
		if tokenizer, err = NewCached(tokenizer,
			config.CacheSize); err != nil {
			return nil, err
		}
	}
	log.Debug().
		Str("type", config.Type).
		Str("model", config.Model).
		Strs("specials", config.Specials).
		Int("cache_size", config.CacheSize).
		Msg("tokenizer ready")
	return tokenizer, nil
}

// Vocab is implemented by tokenizers whose tokens carry the ids of their
// own model vocabulary as TextId. TokenId returns the id of a single token
// text, or the model's unknown token id when the text has none.
type Vocab interface {
	TokenId(text string) int
}

// VocabOf returns the model vocabulary behind tokenizer, looking through
// the Specials and Cached wrappers.
func VocabOf(tokenizer Tokenizer) (Vocab, bool) {
	switch wrapped := tokenizer.(type) {
	case Vocab:
		return wrapped, true
	case *Specials:
		return VocabOf(wrapped.Inner)
	case *Cached:
		return VocabOf(wrapped.Inner)
	}
	return nil, false
}

// TokensFromTexts wraps each text in a single token. When tokenizer has a
// model vocabulary the tokens carry its ids, so they index the same way as
// the tokens the tokenizer itself produces.
func TokensFromTexts(tokenizer Tokenizer, texts []string) types.Tokens {
	tokens := types.TokensFromTexts(texts)
	vocab, ok := VocabOf(tokenizer)
	if !ok {
		return tokens
	}
	for idx := range tokens {
		id := vocab.TokenId(tokens[idx].Text)
		tokens[idx].TextId = &id
	}
	return tokens
}
