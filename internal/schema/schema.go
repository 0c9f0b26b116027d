// Package schema validates the shape of a source manifest against an
// embedded CUE schema.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/manifest"
)

//go:embed manifest.cue
var manifestSchema []byte

// Issue is one schema violation.
type Issue struct {
	Field   string
	Message string
}

// Error lists every violation found in one manifest.
type Error struct {
	Location string
	Issues   []Issue
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: manifest does not match schema", e.Location)
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		if issue.Field != "" {
			b.WriteString(issue.Field)
			b.WriteString(": ")
		}
		b.WriteString(issue.Message)
	}
	return b.String()
}

// Unwrap maps schema errors to the validation exit code.
func (e *Error) Unwrap() error {
	return oerrors.ErrValidation
}

// Validator checks manifests against #Manifest.
type Validator struct {
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(manifestSchema, cue.Filename("manifest.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling manifest schema: %w", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath("#Manifest"))
	if !def.Exists() {
		return nil, fmt.Errorf("manifest schema has no #Manifest definition")
	}
	return &Validator{ctx: ctx, def: def}, nil
}

// Validate reports every schema violation in m. location names the source
// file in messages.
func (v *Validator) Validate(m *manifest.Manifest, location string) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	expr, err := cuejson.Extract(location, data)
	if err != nil {
		return fmt.Errorf("reading %s: %w", location, err)
	}

	value := v.ctx.BuildExpr(expr)
	if err := v.def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return &Error{Location: location, Issues: issues(err)}
	}
	return nil
}

func issues(err error) []Issue {
	var out []Issue
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		issue := Issue{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		key := issue.Field + "\x00" + issue.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, issue)
	}
	return out
}
