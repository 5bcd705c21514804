package fields

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/wbrown/masked_lm/vocab"
)

// Instance is an ordered collection of named fields; one training example.
type Instance struct {
	names   []string
	fields  map[string]Field
	indexed bool
}

func NewInstance() *Instance {
	return &Instance{fields: make(map[string]Field)}
}

// AddField appends a field. If the instance has already been indexed, the
// new field is indexed against vocabulary too.
func (instance *Instance) AddField(name string, field Field,
	vocabulary *vocab.Vocabulary) error {
	if _, ok := instance.fields[name]; ok {
		return errors.Wrapf(ErrDuplicateField, "%q", name)
	}
	if instance.indexed && vocabulary != nil {
		if err := field.Index(vocabulary); err != nil {
			return err
		}
	}
	instance.names = append(instance.names, name)
	instance.fields[name] = field
	return nil
}

// Names returns field names in insertion order.
func (instance *Instance) Names() []string {
	return append([]string(nil), instance.names...)
}

func (instance *Instance) Len() int {
	return len(instance.names)
}

func (instance *Instance) Field(name string) (Field, bool) {
	field, ok := instance.fields[name]
	return field, ok
}

// TextField returns the named field if it is a *TextField.
func (instance *Instance) TextField(name string) (*TextField, error) {
	field, ok := instance.fields[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownField, "%q", name)
	}
	textField, ok := field.(*TextField)
	if !ok {
		return nil, errors.Errorf("field %q is a %T, not a text field",
			name, field)
	}
	return textField, nil
}

// ListField returns the named field if it is a *ListField.
func (instance *Instance) ListField(name string) (*ListField, error) {
	field, ok := instance.fields[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownField, "%q", name)
	}
	listField, ok := field.(*ListField)
	if !ok {
		return nil, errors.Errorf("field %q is a %T, not a list field",
			name, field)
	}
	return listField, nil
}

func (instance *Instance) CountVocabItems(counter vocab.Counter) {
	for _, name := range instance.names {
		instance.fields[name].CountVocabItems(counter)
	}
}

// IndexFields indexes every field against vocabulary. It is a no-op on an
// instance that has already been indexed.
func (instance *Instance) IndexFields(vocabulary *vocab.Vocabulary) error {
	if instance.indexed {
		return nil
	}
	for _, name := range instance.names {
		if err := instance.fields[name].Index(vocabulary); err != nil {
			return errors.Wrapf(err, "indexing field %q", name)
		}
	}
	instance.indexed = true
	return nil
}

func (instance *Instance) Indexed() bool {
	return instance.indexed
}

func (instance *Instance) PaddingLengths() map[string]map[string]int {
	lengths := make(map[string]map[string]int, len(instance.names))
	for _, name := range instance.names {
		lengths[name] = instance.fields[name].PaddingLengths()
	}
	return lengths
}

// AsTensorDict tensorizes every field. A nil padding map uses the
// instance's own padding lengths.
func (instance *Instance) AsTensorDict(
	padding map[string]map[string]int) (TensorDict, error) {
	if padding == nil {
		padding = instance.PaddingLengths()
	}
	tensors := make(TensorDict, len(instance.names))
	for _, name := range instance.names {
		array, err := instance.fields[name].AsArray(padding[name])
		if err != nil {
			return nil, errors.Wrapf(err, "tensorizing field %q", name)
		}
		tensors[name] = array
	}
	return tensors, nil
}

func (instance *Instance) String() string {
	var sb strings.Builder
	sb.WriteString("Instance with fields:\n")
	for _, name := range instance.names {
		sb.WriteString(fmt.Sprintf("\t %s: %v\n", name,
			instance.fields[name]))
	}
	return sb.String()
}
