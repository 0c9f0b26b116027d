package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ohler55/ojg/jp"
	"gopkg.in/yaml.v3"

	"github.com/opmodel/pkgbuild/internal/manifest"
)

// ManifestOptions controls manifest output formatting.
type ManifestOptions struct {
	// Format is FormatJSON or FormatYAML.
	Format OutputFormat
	// Writer is the output destination.
	Writer io.Writer
	// Query is an optional JSONPath expression; only matching values are written.
	Query string
}

// WriteManifest writes m (or the values selected by opts.Query) to opts.Writer.
func WriteManifest(m *manifest.Manifest, opts ManifestOptions) error {
	if opts.Query != "" {
		values, err := QueryManifest(m, opts.Query)
		if err != nil {
			return err
		}
		return writeValue(values, opts)
	}

	switch opts.Format {
	case FormatYAML:
		return writeYAML(m.Object, opts.Writer)
	case FormatJSON, "":
		data, err := m.Marshal()
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		_, err = opts.Writer.Write(data)
		return err
	default:
		return fmt.Errorf("format %s not supported for manifest output", opts.Format)
	}
}

// QueryManifest evaluates a JSONPath expression against m.
func QueryManifest(m *manifest.Manifest, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	return x.Get(m.ToAny()), nil
}

func writeValue(v any, opts ManifestOptions) error {
	switch opts.Format {
	case FormatYAML:
		return writeYAML(v, opts.Writer)
	case FormatJSON, "":
		encoder := json.NewEncoder(opts.Writer)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	default:
		return fmt.Errorf("format %s not supported for query output", opts.Format)
	}
}

func writeYAML(v any, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return encoder.Close()
}

// WriteStructured writes v as JSON or YAML. Listing commands use it for
// their non-table formats.
func WriteStructured(w io.Writer, format OutputFormat, v any) error {
	return writeValue(v, ManifestOptions{Format: format, Writer: w})
}
