package fields

import (
	"fmt"
	"strings"

	"github.com/pdevine/tensor"
	"github.com/wbrown/masked_lm/indexers"
	"github.com/wbrown/masked_lm/types"
	"github.com/wbrown/masked_lm/vocab"
)

const NumTokensKey = "num_tokens"

// TextField is a token sequence together with the indexers that turn it
// into ids.
type TextField struct {
	Tokens   types.Tokens
	Indexers indexers.TokenIndexers
	indexed  map[string][]int
}

// NewTextField copies tokens, so later changes to the caller's slice do not
// leak into the field.
func NewTextField(tokens types.Tokens,
	tokenIndexers indexers.TokenIndexers) *TextField {
	return &TextField{
		Tokens:   append(make(types.Tokens, 0, len(tokens)), tokens...),
		Indexers: tokenIndexers,
	}
}

func (field *TextField) Len() int {
	return len(field.Tokens)
}

func (field *TextField) CountVocabItems(counter vocab.Counter) {
	for _, name := range field.Indexers.Names() {
		for _, token := range field.Tokens {
			field.Indexers[name].CountVocabItems(token, counter)
		}
	}
}

func (field *TextField) Index(vocabulary *vocab.Vocabulary) error {
	indexed := make(map[string][]int, len(field.Indexers))
	for _, name := range field.Indexers.Names() {
		indices, err := field.Indexers[name].TokensToIndices(field.Tokens,
			vocabulary)
		if err != nil {
			return err
		}
		indexed[name] = indices
	}
	field.indexed = indexed
	return nil
}

// IndexedTokens returns the ids produced by Index, keyed by indexer name,
// or nil before Index has been called.
func (field *TextField) IndexedTokens() map[string][]int {
	return field.indexed
}

func (field *TextField) PaddingLengths() map[string]int {
	return map[string]int{NumTokensKey: len(field.Tokens)}
}

// AsArray pads or truncates each indexer's ids to `num_tokens`.
func (field *TextField) AsArray(padding map[string]int) (Array, error) {
	if field.indexed == nil {
		return Array{}, ErrNotIndexed
	}
	length, ok := padding[NumTokensKey]
	if !ok {
		length = len(field.Tokens)
	}
	array := Array{Indexed: make(map[string]*tensor.Dense,
		len(field.indexed))}
	for _, name := range sortedKeys(field.indexed) {
		padValue := 0
		if indexer, ok := field.Indexers[name]; ok {
			padValue = indexer.PaddingValue()
		}
		array.Indexed[name] = newInt64Tensor(
			padInts(field.indexed[name], length, padValue), length)
	}
	return array, nil
}

func (field *TextField) String() string {
	return fmt.Sprintf("TextField of length %d with text: %s",
		len(field.Tokens), strings.Join(field.Tokens.Texts(), " "))
}
