// Package post implements the export pipeline: ordering postable items,
// expanding their commands and assembling controller-specific G-code.
package post

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every ResolutionError.
var ErrNotFound = errors.New("not found")

// ResolutionError is returned when a named post processor or machine cannot
// be found. It is raised before any command is converted.
type ResolutionError struct {
	Kind string // "post processor" or "machine"
	Name string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrNotFound
}
