package masked_lm

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNoMaskTokens        = errors.New("no [MASK] tokens found")
	ErrTargetCountMismatch = errors.New("mask and target counts differ")
	ErrNotImplemented      = errors.New("reading is not implemented")
	ErrUnknownReader       = errors.New("unknown dataset reader")
)

// TargetCountError reports targets that do not line up one to one with the
// mask placeholders of a sequence. It matches ErrTargetCountMismatch.
type TargetCountError struct {
	Masks   int
	Targets int
}

func (e *TargetCountError) Error() string {
	return fmt.Sprintf("found %d mask tokens and %d targets", e.Masks,
		e.Targets)
}

func (e *TargetCountError) Is(target error) bool {
	return target == ErrTargetCountMismatch
}
