package loaders

import (
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
)

// UnknownQuery reports a query name the loader does not offer.
func UnknownQuery(name string, valid []string) error {
	return errors.New(errors.ErrCodeInvalidInput, "unknown query %q (available: %s)", name, strings.Join(valid, ", "))
}

// Unexpected reports an extracted view of the wrong type.
func Unexpected(want string, got any) error {
	return errors.New(errors.ErrCodeInternal, "expected %s, got %T", want, got)
}
