package pipeline

import (
	"fmt"

	oerrors "github.com/opmodel/pkgbuild/internal/errors"
)

// TargetError reports which target failed. It unwraps to the cause so exit
// codes follow the underlying failure.
type TargetError struct {
	Target string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target %q: %v", e.Target, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// ManifestNotFoundError indicates the package directory has no manifest.
type ManifestNotFoundError struct {
	Dir string
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("no package.json found in %s", e.Dir)
}

func (e *ManifestNotFoundError) Unwrap() error {
	return oerrors.ErrNotFound
}
