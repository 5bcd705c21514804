//go:build !wasip1 && !js

package resources

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// readMmap maps file read-only. The returned release func unmaps it and is
// nil when nothing was mapped.
func readMmap(file *os.File) (*[]byte, func() error, error) {
	// Empty files cannot be mapped.
	if stat, statErr := file.Stat(); statErr != nil {
		return nil, nil, statErr
	} else if stat.Size() == 0 {
		empty := make([]byte, 0)
		return &empty, nil, nil
	}
	fileMmap, mmapErr := mmap.Map(file, mmap.RDONLY, 0)
	if mmapErr != nil {
		return nil, nil, mmapErr
	}
	mmapBytes := (*[]byte)(&fileMmap)
	return mmapBytes, fileMmap.Unmap, nil
}
