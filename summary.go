package masked_lm

import (
	"github.com/pkg/errors"
	"github.com/wbrown/masked_lm/fields"
)

// Summary is the plain data view of an instance built by TextToInstance,
// used by the command line tool and the foreign language bindings.
type Summary struct {
	Tokens        []string `json:"tokens" msgpack:"tokens"`
	MaskPositions []int    `json:"mask_positions" msgpack:"mask_positions"`
	Targets       []string `json:"target_ids" msgpack:"target_ids"`
}

func Summarize(instance *fields.Instance) (*Summary, error) {
	tokens, err := instance.TextField(TokensField)
	if err != nil {
		return nil, err
	}
	positions, err := instance.ListField(MaskPositionsField)
	if err != nil {
		return nil, err
	}
	targets, err := instance.TextField(TargetIdsField)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		Tokens:        tokens.Tokens.Texts(),
		MaskPositions: make([]int, 0, positions.Len()),
		Targets:       targets.Tokens.Texts(),
	}
	for idx, field := range positions.Fields {
		indexField, ok := field.(*fields.IndexField)
		if !ok {
			return nil, errors.Errorf("%s element %d is a %T",
				MaskPositionsField, idx, field)
		}
		summary.MaskPositions = append(summary.MaskPositions,
			indexField.SequenceIndex)
	}
	return summary, nil
}

// SummarizeText runs TextToInstance on a raw sentence and summarizes the
// result.
func SummarizeText(reader DatasetReader, sentence string,
	targets []string) (*Summary, error) {
	instance, err := reader.TextToInstance(sentence, nil, targets)
	if err != nil {
		return nil, err
	}
	return Summarize(instance)
}
