package masked_lm

import (
	"github.com/wbrown/masked_lm/fields"
	"github.com/wbrown/masked_lm/types"
)

// InstancesIterator yields instances in corpus order. Next returns nil, nil
// once the corpus is exhausted; after an error it must not be called again.
// Close releases whatever produces the instances and may be called at any
// point, more than once.
type InstancesIterator interface {
	Next() (*fields.Instance, error)
	Close()
}

// DatasetReader turns a corpus location into instances.
type DatasetReader interface {
	Read(path string) (InstancesIterator, error)
	TextToInstance(sentence string, tokens types.Tokens,
		targets []string) (*fields.Instance, error)
	Lazy() bool
}

// CollectInstances drains and closes iterator.
func CollectInstances(iterator InstancesIterator) ([]*fields.Instance,
	error) {
	defer iterator.Close()
	instances := make([]*fields.Instance, 0)
	for {
		instance, err := iterator.Next()
		if err != nil {
			return instances, err
		}
		if instance == nil {
			return instances, nil
		}
		instances = append(instances, instance)
	}
}

type sliceIterator struct {
	instances []*fields.Instance
	idx       int
}

// SliceIterator iterates over already materialized instances.
func SliceIterator(instances []*fields.Instance) InstancesIterator {
	return &sliceIterator{instances: instances}
}

func (iterator *sliceIterator) Next() (*fields.Instance, error) {
	if iterator.idx >= len(iterator.instances) {
		return nil, nil
	}
	instance := iterator.instances[iterator.idx]
	iterator.idx++
	return instance, nil
}

func (iterator *sliceIterator) Close() {
	iterator.idx = len(iterator.instances)
}
