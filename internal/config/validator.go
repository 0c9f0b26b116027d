package config

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	oerrors "github.com/opmodel/pkgbuild/internal/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Unwrap maps config validation failures to the validation exit code.
func (e ValidationErrors) Unwrap() error {
	return oerrors.ErrValidation
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schemaData, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaData, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema.LookupPath(cue.ParsePath("#Config")),
	}, nil
}

// Validate checks the rules the schema cannot express.
func (v *Validator) Validate(cfg *Config) error {
	var errs ValidationErrors

	seen := make(map[string]bool, len(cfg.Targets))
	for i, t := range cfg.Targets {
		field := fmt.Sprintf("targets[%d]", i)
		if t.Name == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "is required"})
			continue
		}
		if seen[t.Name] {
			errs = append(errs, ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate target %q", t.Name)})
		}
		seen[t.Name] = true
		if t.Format != "" && t.Format != "esm" && t.Format != "cjs" {
			errs = append(errs, ValidationError{Field: field + ".format", Message: `must be "esm" or "cjs"`})
		}
	}

	if cfg.NestedIndexLayout && cfg.CollapseIndex != nil && *cfg.CollapseIndex {
		errs = append(errs, ValidationError{
			Field:   "collapseIndex",
			Message: "cannot be enabled together with nestedIndexLayout",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateFile validates a configuration file against the schema, then
// loads it and applies Validate.
func (v *Validator) ValidateFile(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	file, err := cueyaml.Extract(expanded, data)
	if err != nil {
		return ValidationErrors{{Field: "(file)", Message: err.Error()}}
	}
	value := v.ctx.BuildFile(file)
	if err := v.schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		var errs ValidationErrors
		for _, e := range cueerrors.Errors(err) {
			format, args := e.Msg()
			field := strings.Join(e.Path(), ".")
			if field == "" {
				field = "(root)"
			}
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
		}
		return errs
	}

	cfg, err := NewLoader().Load(expanded)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	return v.Validate(cfg)
}
