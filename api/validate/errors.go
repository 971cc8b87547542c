/* errors.go
 * Contains the error types returned when a response does not match its expected shape
 */

package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every *ValidationError through errors.Is
var ErrValidation = errors.New("validation failed")

// Issue is a single problem found at a key path, e.g. "[0].leaderboard[0].rank.public"
type Issue struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Problem
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Problem)
}

// ValidationError holds every issue found in a response. A ValidationError means the remote service broke its
// contract, it is never used for transport or status failures
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Paths returns the key path of every issue, in the order they were found
func (e *ValidationError) Paths() []string {
	paths := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		paths[i] = issue.Path
	}
	return paths
}

func newValidationError(issues ...Issue) *ValidationError {
	return &ValidationError{Issues: issues}
}
