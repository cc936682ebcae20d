package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidScript    = errors.New("invalid script")
	ErrInvalidRecord    = errors.New("invalid record")
	ErrGenerationFailed = errors.New("generation failed")
	ErrPollTimeout      = errors.New("generation poll timeout")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NotFoundError reports an exhausted resolution: no strategy matched the
// identifier in any of the searched collections. It carries the search scope
// so operators can see exactly what was tried.
type NotFoundError struct {
	Identifier  string
	Collections []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %q not found in collections [%s]", e.Identifier, strings.Join(e.Collections, ", "))
}

// Is makes errors.Is(err, ErrNotFound) hold for resolution misses.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
