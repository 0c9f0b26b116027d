package cmd

import (
	"errors"
	"fmt"

	"github.com/opmodel/pkgbuild/internal/catalog"
	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/schema"
)

// reportError logs err and returns it as an ExitError whose code follows
// the error's sentinel. main does not print it again.
func reportError(msg string, err error) error {
	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) && exitErr.Printed {
		return err
	}

	var refErr *catalog.ReferenceError
	var schemaErr *schema.Error
	switch {
	case errors.As(err, &refErr):
		output.Error(msg, "error", refErr.Message)
		for _, ref := range refErr.Refs {
			output.Error(msg, "ref", ref.String())
		}
	case errors.As(err, &schemaErr):
		output.Error(msg, "location", schemaErr.Location)
		for _, issue := range schemaErr.Issues {
			output.Error(msg, "field", issue.Field, "issue", issue.Message)
		}
	default:
		output.Error(msg, "error", err)
	}

	return &oerrors.ExitError{
		Code:    oerrors.ExitCodeFromError(err),
		Err:     err,
		Printed: true,
	}
}

// usageError reports invalid flag combinations.
func usageError(format string, args ...any) error {
	return &oerrors.ExitError{
		Code: oerrors.ExitGeneralError,
		Err:  fmt.Errorf(format, args...),
	}
}
