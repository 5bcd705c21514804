package fields

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/masked_lm/indexers"
	"github.com/wbrown/masked_lm/types"
	"github.com/wbrown/masked_lm/vocab"
)

func sentenceField(texts ...string) *TextField {
	return NewTextField(types.TokensFromTexts(texts),
		indexers.DefaultTokenIndexers())
}

func testVocabulary() *vocab.Vocabulary {
	vocabulary := vocab.NewVocabulary()
	vocabulary.AddTokensToNamespace(
		[]string{"This", "is", "a", "[MASK]", "token", "."}, "tokens")
	return vocabulary
}

func TestTextFieldIndexAndPad(t *testing.T) {
	field := sentenceField("This", "is", "a", "[MASK]")
	_, err := field.AsArray(nil)
	assert.True(t, errors.Is(err, ErrNotIndexed))

	require.NoError(t, field.Index(testVocabulary()))
	assert.Equal(t, map[string][]int{"tokens": {2, 3, 4, 5}},
		field.IndexedTokens())
	assert.Equal(t, map[string]int{NumTokensKey: 4}, field.PaddingLengths())

	array, err := field.AsArray(map[string]int{NumTokensKey: 6})
	require.NoError(t, err)
	assert.Nil(t, array.Tensor)
	assert.Equal(t, []int{2, 3, 4, 5, 0, 0}, Ints(array.Indexed["tokens"]))
	assert.Equal(t, []int{6}, Shape(array.Indexed["tokens"]))

	truncated, err := field.AsArray(map[string]int{NumTokensKey: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, Ints(truncated.Indexed["tokens"]))
}

func TestTextFieldCopiesTokens(t *testing.T) {
	tokens := types.TokensFromTexts([]string{"a", "b"})
	field := NewTextField(tokens, indexers.DefaultTokenIndexers())
	tokens[0].Text = "changed"
	assert.Equal(t, []string{"a", "b"}, field.Tokens.Texts())
}

func TestEmptyTextField(t *testing.T) {
	field := sentenceField()
	require.NoError(t, field.Index(testVocabulary()))
	array, err := field.AsArray(nil)
	require.NoError(t, err)
	tensor, ok := array.Indexed["tokens"]
	assert.True(t, ok)
	assert.Nil(t, tensor)
	assert.Nil(t, Ints(tensor))
}

func TestTextFieldCountVocabItems(t *testing.T) {
	counter := make(vocab.Counter)
	sentenceField("a", "b", "a").CountVocabItems(counter)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counter["tokens"])
}

func TestIndexField(t *testing.T) {
	sequence := sentenceField("This", "is", "[MASK]")
	field, err := NewIndexField(2, sequence)
	require.NoError(t, err)
	assert.Same(t, sequence, field.Sequence)

	array, err := field.AsArray(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, Ints(array.Tensor))

	_, err = NewIndexField(3, sequence)
	assert.Error(t, err)
	_, err = NewIndexField(-1, sequence)
	assert.Error(t, err)
	_, err = NewIndexField(0, nil)
	assert.Error(t, err)
}

func TestListFieldOfIndexFields(t *testing.T) {
	sequence := sentenceField("[MASK]", "x", "[MASK]")
	first, _ := NewIndexField(0, sequence)
	second, _ := NewIndexField(2, sequence)
	list := NewListField(first, second)
	assert.Equal(t, map[string]int{NumFieldsKey: 2}, list.PaddingLengths())

	array, err := list.AsArray(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, Ints(array.Tensor))
	assert.Equal(t, []int{2, 1}, Shape(array.Tensor))

	padded, err := list.AsArray(map[string]int{NumFieldsKey: 4})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, IndexPaddingValue, IndexPaddingValue},
		Ints(padded.Tensor))
	assert.Equal(t, []int{4, 1}, Shape(padded.Tensor))
}

func TestListFieldOfTextFields(t *testing.T) {
	vocabulary := testVocabulary()
	list := NewListField(sentenceField("This", "is"),
		sentenceField("a", "[MASK]", "token"))
	require.NoError(t, list.Index(vocabulary))
	assert.Equal(t, map[string]int{NumFieldsKey: 2, "list_num_tokens": 3},
		list.PaddingLengths())

	array, err := list.AsArray(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 0, 4, 5, 6}, Ints(array.Indexed["tokens"]))
	assert.Equal(t, []int{2, 3}, Shape(array.Indexed["tokens"]))
}

func TestEmptyListField(t *testing.T) {
	array, err := NewListField().AsArray(nil)
	require.NoError(t, err)
	assert.Nil(t, array.Tensor)
	assert.Nil(t, array.Indexed)
}

func TestInstance(t *testing.T) {
	vocabulary := testVocabulary()
	tokens := sentenceField("This", "is", "a", "[MASK]", "token", ".")
	position, err := NewIndexField(3, tokens)
	require.NoError(t, err)

	instance := NewInstance()
	require.NoError(t, instance.AddField("tokens", tokens, vocabulary))
	require.NoError(t, instance.AddField("mask_positions",
		NewListField(position), vocabulary))
	err = instance.AddField("tokens", tokens, vocabulary)
	assert.True(t, errors.Is(err, ErrDuplicateField))
	assert.Equal(t, []string{"tokens", "mask_positions"}, instance.Names())

	counter := make(vocab.Counter)
	instance.CountVocabItems(counter)
	assert.Len(t, counter["tokens"], 6)

	_, err = instance.AsTensorDict(nil)
	assert.True(t, errors.Is(err, ErrNotIndexed))

	require.NoError(t, instance.IndexFields(vocabulary))
	assert.True(t, instance.Indexed())

	targets := sentenceField("a")
	require.NoError(t, instance.AddField("target_ids", targets, vocabulary))
	assert.Equal(t, map[string][]int{"tokens": {4}}, targets.IndexedTokens())

	tensorDict, err := instance.AsTensorDict(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7},
		Ints(tensorDict["tokens"].Indexed["tokens"]))
	assert.Equal(t, []int{3}, Ints(tensorDict["mask_positions"].Tensor))
	assert.Equal(t, []int{4}, Ints(tensorDict["target_ids"].Indexed["tokens"]))

	textField, err := instance.TextField("tokens")
	require.NoError(t, err)
	assert.Same(t, tokens, textField)
	_, err = instance.TextField("mask_positions")
	assert.Error(t, err)
	_, err = instance.ListField("missing")
	assert.True(t, errors.Is(err, ErrUnknownField))
}
