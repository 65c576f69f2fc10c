package bvh

import (
	"fmt"

	"github.com/mathijsteam/bvhforge"
)

// errMalformedf wraps bvhforge.ErrMalformedInput with a specific
// reason, following the project-wide fmt.Errorf("...: %w", err)
// convention.
func errMalformedf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), bvhforge.ErrMalformedInput)
}
