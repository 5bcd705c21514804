package fields

import (
	"fmt"
	"strings"

	"github.com/pdevine/tensor"
	"github.com/pkg/errors"
	"github.com/wbrown/masked_lm/vocab"
)

const (
	NumFieldsKey = "num_fields"
	listPrefix   = "list_"

	// IndexPaddingValue fills the rows a ListField of IndexFields is padded
	// with.
	IndexPaddingValue = -1
)

// ListField is an ordered list of fields of the same kind.
type ListField struct {
	Fields []Field
}

func NewListField(fields ...Field) *ListField {
	return &ListField{Fields: fields}
}

func (field *ListField) Len() int {
	return len(field.Fields)
}

func (field *ListField) CountVocabItems(counter vocab.Counter) {
	for _, child := range field.Fields {
		child.CountVocabItems(counter)
	}
}

func (field *ListField) Index(vocabulary *vocab.Vocabulary) error {
	for idx, child := range field.Fields {
		if err := child.Index(vocabulary); err != nil {
			return errors.Wrapf(err, "list element %d", idx)
		}
	}
	return nil
}

// PaddingLengths reports `num_fields` plus the largest padding length of
// each child key, prefixed with `list_`.
func (field *ListField) PaddingLengths() map[string]int {
	inner := make(map[string]int)
	for _, child := range field.Fields {
		maxLengths(inner, child.PaddingLengths())
	}
	lengths := map[string]int{NumFieldsKey: len(field.Fields)}
	for key, value := range inner {
		lengths[listPrefix+key] = value
	}
	return lengths
}

// AsArray stacks the children into one tensor of shape (num_fields, ...).
// Missing rows are filled with IndexPaddingValue for plain tensors and with
// 0 for indexed text.
func (field *ListField) AsArray(padding map[string]int) (Array, error) {
	numFields, ok := padding[NumFieldsKey]
	if !ok {
		numFields = len(field.Fields)
	}
	childPadding := make(map[string]int)
	for key, value := range padding {
		if strings.HasPrefix(key, listPrefix) {
			childPadding[strings.TrimPrefix(key, listPrefix)] = value
		}
	}
	if len(childPadding) == 0 {
		for key, value := range field.PaddingLengths() {
			if strings.HasPrefix(key, listPrefix) {
				childPadding[strings.TrimPrefix(key, listPrefix)] = value
			}
		}
	}

	kept := numFields
	if kept > len(field.Fields) {
		kept = len(field.Fields)
	}
	if kept == 0 {
		return Array{}, nil
	}
	arrays := make([]Array, kept)
	for idx := 0; idx < kept; idx++ {
		array, err := field.Fields[idx].AsArray(childPadding)
		if err != nil {
			return Array{}, errors.Wrapf(err, "list element %d", idx)
		}
		arrays[idx] = array
	}

	if arrays[0].Indexed == nil {
		rows := make([]*tensor.Dense, kept)
		for idx := range arrays {
			rows[idx] = arrays[idx].Tensor
		}
		stacked, err := stackRows(rows, numFields, IndexPaddingValue)
		return Array{Tensor: stacked}, err
	}
	result := Array{Indexed: make(map[string]*tensor.Dense)}
	for _, name := range sortedKeys(arrays[0].Indexed) {
		rows := make([]*tensor.Dense, kept)
		for idx := range arrays {
			rows[idx] = arrays[idx].Indexed[name]
		}
		stacked, err := stackRows(rows, numFields, 0)
		if err != nil {
			return Array{}, errors.Wrapf(err, "indexer %q", name)
		}
		result.Indexed[name] = stacked
	}
	return result, nil
}

// stackRows stacks same-shaped rows into (numRows, rowShape...), filling
// rows past the end of the input with padValue.
func stackRows(rows []*tensor.Dense, numRows int,
	padValue int64) (*tensor.Dense, error) {
	rowShape := Shape(rows[0])
	rowSize := len(Int64s(rows[0]))
	if rowSize == 0 {
		return nil, nil
	}
	values := make([]int64, 0, numRows*rowSize)
	for idx := 0; idx < numRows; idx++ {
		if idx >= len(rows) {
			for pad := 0; pad < rowSize; pad++ {
				values = append(values, padValue)
			}
			continue
		}
		row := Int64s(rows[idx])
		if len(row) != rowSize {
			return nil, errors.Wrapf(ErrShapeMismatch,
				"row %d has %d values, expected %d", idx, len(row), rowSize)
		}
		values = append(values, row...)
	}
	return newInt64Tensor(values, append([]int{numRows}, rowShape...)...),
		nil
}

func (field *ListField) String() string {
	return fmt.Sprintf("ListField of %d fields", len(field.Fields))
}
