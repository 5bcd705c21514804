package indexers

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/wbrown/masked_lm/types"
	"github.com/wbrown/masked_lm/vocab"
)

const (
	SingleIdType     = "single_id"
	DefaultNamespace = "tokens"
	DefaultName      = "tokens"
)

var ErrUnknownIndexer = errors.New("unknown token indexer type")

// TokenIndexer turns tokens into integer ids against a Vocabulary.
type TokenIndexer interface {
	CountVocabItems(token types.Token, counter vocab.Counter)
	TokensToIndices(tokens types.Tokens, vocabulary *vocab.Vocabulary) ([]int,
		error)
	PaddingValue() int
}

// TokenIndexers is a named set of indexers. Fields that share a
// TokenIndexers value index into the same namespaces.
type TokenIndexers map[string]TokenIndexer

// Names returns the indexer names in sorted order.
func (indexers TokenIndexers) Names() []string {
	names := make([]string, 0, len(indexers))
	for name := range indexers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultTokenIndexers is a single id indexer over the `tokens` namespace,
// registered as `tokens`.
func DefaultTokenIndexers() TokenIndexers {
	return TokenIndexers{
		DefaultName: &SingleIdTokenIndexer{Namespace: DefaultNamespace},
	}
}

// SingleIdTokenIndexer maps each token to one id in Namespace. A token that
// already carries a TextId is indexed with that id as is.
type SingleIdTokenIndexer struct {
	Namespace       string
	LowercaseTokens bool
}

func (indexer *SingleIdTokenIndexer) namespace() string {
	if indexer.Namespace == "" {
		return DefaultNamespace
	}
	return indexer.Namespace
}

func (indexer *SingleIdTokenIndexer) text(token types.Token) string {
	if indexer.LowercaseTokens {
		return strings.ToLower(token.Text)
	}
	return token.Text
}

func (indexer *SingleIdTokenIndexer) CountVocabItems(token types.Token,
	counter vocab.Counter) {
	if token.TextId != nil {
		return
	}
	counter.Add(indexer.namespace(), indexer.text(token))
}

func (indexer *SingleIdTokenIndexer) TokensToIndices(tokens types.Tokens,
	vocabulary *vocab.Vocabulary) ([]int, error) {
	indices := make([]int, len(tokens))
	for idx := range tokens {
		if tokens[idx].TextId != nil {
			indices[idx] = *tokens[idx].TextId
			continue
		}
		id, err := vocabulary.GetTokenIndex(indexer.text(tokens[idx]),
			indexer.namespace())
		if err != nil {
			return nil, err
		}
		indices[idx] = id
	}
	return indices, nil
}

func (indexer *SingleIdTokenIndexer) PaddingValue() int {
	return 0
}

// Config describes one indexer.
type Config struct {
	Type            string `mapstructure:"type"`
	Namespace       string `mapstructure:"namespace"`
	LowercaseTokens bool   `mapstructure:"lowercase_tokens"`
}

// New builds a TokenIndexers from named configs. An empty map yields
// DefaultTokenIndexers.
func New(configs map[string]Config) (TokenIndexers, error) {
	if len(configs) == 0 {
		return DefaultTokenIndexers(), nil
	}
	indexers := make(TokenIndexers, len(configs))
	for name, config := range configs {
		switch config.Type {
		case "", SingleIdType:
			indexers[name] = &SingleIdTokenIndexer{
				Namespace:       config.Namespace,
				LowercaseTokens: config.LowercaseTokens,
			}
		default:
			return nil, errors.Wrapf(ErrUnknownIndexer, "%q for %q",
				config.Type, name)
		}
	}
	return indexers, nil
}
