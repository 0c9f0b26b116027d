package rewrite

import (
	"fmt"

	oerrors "github.com/opmodel/pkgbuild/internal/errors"
)

// OverrideError reports an override or entry table that claims an export
// key but maps it to an empty path.
type OverrideError struct {
	// Table is "override" or "entry".
	Table string
	Key   string
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("%s table maps export %q to an empty path", e.Table, e.Key)
}

// Unwrap maps the error to the validation exit code.
func (e *OverrideError) Unwrap() error {
	return oerrors.ErrValidation
}
