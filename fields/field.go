package fields

import (
	"sort"

	"github.com/pdevine/tensor"
	"github.com/pkg/errors"
	"github.com/wbrown/masked_lm/vocab"
)

var (
	ErrNotIndexed     = errors.New("field has not been indexed")
	ErrShapeMismatch  = errors.New("list field children differ in shape")
	ErrUnknownField   = errors.New("unknown field")
	ErrDuplicateField = errors.New("duplicate field name")
)

// Field is one named piece of an Instance.
type Field interface {
	CountVocabItems(counter vocab.Counter)
	Index(vocabulary *vocab.Vocabulary) error
	PaddingLengths() map[string]int
	AsArray(padding map[string]int) (Array, error)
}

// Array is the tensor form of a Field. Fields over text produce one tensor
// per token indexer in Indexed; all others produce Tensor. A nil tensor
// stands for an empty sequence.
type Array struct {
	Tensor  *tensor.Dense
	Indexed map[string]*tensor.Dense
}

// TensorDict maps field names to their arrays.
type TensorDict map[string]Array

// newInt64Tensor wraps values in a dense tensor of the given shape, or
// returns nil when there are no values.
func newInt64Tensor(values []int64, shape ...int) *tensor.Dense {
	if len(values) == 0 {
		return nil
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(values))
}

// Int64s returns the values of an int64 tensor in row-major order.
func Int64s(t *tensor.Dense) []int64 {
	if t == nil {
		return nil
	}
	switch data := t.Data().(type) {
	case []int64:
		return append([]int64(nil), data...)
	case int64:
		return []int64{data}
	}
	return nil
}

// Ints is Int64s converted to int.
func Ints(t *tensor.Dense) []int {
	values := Int64s(t)
	if values == nil {
		return nil
	}
	ints := make([]int, len(values))
	for idx := range values {
		ints[idx] = int(values[idx])
	}
	return ints
}

// Shape returns the dimensions of t, or nil for a nil tensor.
func Shape(t *tensor.Dense) []int {
	if t == nil {
		return nil
	}
	return append([]int(nil), t.Shape()...)
}

// padInts pads or truncates values to length using padValue.
func padInts(values []int, length int, padValue int) []int64 {
	padded := make([]int64, length)
	for idx := range padded {
		if idx < len(values) {
			padded[idx] = int64(values[idx])
		} else {
			padded[idx] = int64(padValue)
		}
	}
	return padded
}

// maxLengths merges padding length maps, keeping the larger value per key.
func maxLengths(into map[string]int, from map[string]int) {
	for key, value := range from {
		if current, ok := into[key]; !ok || value > current {
			into[key] = value
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
