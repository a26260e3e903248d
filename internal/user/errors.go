package user

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vyrodovalexey/userapi/internal/util"
)

var (
	// ErrNotFound is returned when no user has the requested id.
	ErrNotFound = fmt.Errorf("user %w", util.ErrNotFound)

	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError lists the rejected fields with a message for each.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is matches util.ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == util.ErrInvalidInput
}
