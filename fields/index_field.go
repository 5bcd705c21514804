package fields

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/wbrown/masked_lm/vocab"
)

// IndexField points at one position of a TextField. The sequence is held by
// pointer; it is the very field it indexes, not a copy.
type IndexField struct {
	SequenceIndex int
	Sequence      *TextField
}

// NewIndexField fails when idx is outside the sequence.
func NewIndexField(idx int, sequence *TextField) (*IndexField, error) {
	if sequence == nil {
		return nil, errors.New("index field needs a sequence")
	}
	if idx < 0 || idx >= sequence.Len() {
		return nil, errors.Errorf("index %d out of range for sequence of "+
			"length %d", idx, sequence.Len())
	}
	return &IndexField{SequenceIndex: idx, Sequence: sequence}, nil
}

func (field *IndexField) CountVocabItems(vocab.Counter) {}

func (field *IndexField) Index(*vocab.Vocabulary) error {
	return nil
}

func (field *IndexField) PaddingLengths() map[string]int {
	return map[string]int{}
}

// AsArray yields a tensor of shape (1).
func (field *IndexField) AsArray(map[string]int) (Array, error) {
	return Array{
		Tensor: newInt64Tensor([]int64{int64(field.SequenceIndex)}, 1),
	}, nil
}

func (field *IndexField) String() string {
	return fmt.Sprintf("IndexField with index: %d", field.SequenceIndex)
}
