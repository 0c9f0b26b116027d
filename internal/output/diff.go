package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"sigs.k8s.io/yaml"

	"github.com/opmodel/pkgbuild/internal/manifest"
)

// DiffOptions configures a manifest diff.
type DiffOptions struct {
	// FromName and ToName label the two sides in the report.
	FromName string
	ToName   string

	// UseColor enables colorized output.
	UseColor bool
}

// DiffResult is the outcome of comparing two manifests.
type DiffResult struct {
	// Changes is the number of differing paths.
	Changes int

	// Report is the rendered human-readable report; empty when Changes is 0.
	Report string
}

// Summary returns a one-line summary.
func (r *DiffResult) Summary() string {
	switch r.Changes {
	case 0:
		return "No changes"
	case 1:
		return "1 change"
	default:
		return fmt.Sprintf("%d changes", r.Changes)
	}
}

// DiffManifests computes a YAML-aware diff between two manifests using dyff.
func DiffManifests(from, to *manifest.Manifest, opts DiffOptions) (*DiffResult, error) {
	fromYAML, err := manifestYAML(from)
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", opts.FromName, err)
	}
	toYAML, err := manifestYAML(to)
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", opts.ToName, err)
	}

	fromInput, err := parseYAMLInput(opts.FromName, fromYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", opts.FromName, err)
	}
	toInput, err := parseYAMLInput(opts.ToName, toYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", opts.ToName, err)
	}

	report, err := dyff.CompareInputFiles(fromInput, toInput)
	if err != nil {
		return nil, fmt.Errorf("comparing manifests: %w", err)
	}

	result := &DiffResult{Changes: len(report.Diffs)}
	if result.Changes == 0 {
		return result, nil
	}

	result.Report, err = renderDyffReport(report, opts.UseColor)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// manifestYAML converts a manifest to YAML via its JSON form so the diff
// sees exactly what would be published.
func manifestYAML(m *manifest.Manifest) ([]byte, error) {
	data, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	return yaml.JSONToYAML(data)
}

func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{Location: name}, nil
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}

	return ytbx.InputFile{
		Location:  name,
		Documents: docs,
	}, nil
}

func renderDyffReport(report dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer

	reportWriter := &dyff.HumanReport{
		Report:       report,
		NoTableStyle: !useColor,
		OmitHeader:   true,
	}

	if err := reportWriter.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
