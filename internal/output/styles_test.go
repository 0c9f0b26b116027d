package output

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.TerminalColor
		wantDim  bool
	}{
		{name: "written returns green", status: StatusWritten, wantFG: colorGreen},
		{name: "valid returns green", status: StatusValid, wantFG: colorGreen},
		{name: "skipped returns yellow", status: StatusSkipped, wantFG: ColorYellow},
		{name: "unchanged returns faint", status: StatusUnchanged, wantDim: true},
		{name: "failed returns bold red", status: statusFailed, wantBold: true, wantFG: colorBoldRed},
		{name: "unknown returns default unstyled", status: "unknown-value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := statusStyle(tt.status)
			if tt.wantBold {
				assert.True(t, style.GetBold(), "expected bold")
			}
			if tt.wantFG != nil {
				assert.Equal(t, tt.wantFG, style.GetForeground(), "foreground color mismatch")
			}
			if tt.wantDim {
				assert.True(t, style.GetFaint(), "expected faint")
			}
		})
	}
}

func TestFormatFileLine(t *testing.T) {
	result := FormatFileLine("dist/package.json", StatusWritten)
	assert.Contains(t, result, "dist/package.json")
	assert.Contains(t, result, StatusWritten)
	assert.True(t, strings.HasPrefix(stripAnsi(result), "f:"), "should start with f: prefix")

	t.Run("alignment consistency", func(t *testing.T) {
		line1 := stripAnsi(FormatFileLine("dist/package.json", StatusWritten))
		line2 := stripAnsi(FormatFileLine("dist/cjs/package.json", StatusWritten))
		assert.Equal(t, strings.Index(line1, StatusWritten), strings.Index(line2, StatusWritten))
	})
}

func TestFormatVetCheck(t *testing.T) {
	withDetail := stripAnsi(FormatVetCheck("Manifest found", "./package.json"))
	assert.Contains(t, withDetail, "✔")
	assert.Contains(t, withDetail, "Manifest found")
	assert.Contains(t, withDetail, "./package.json")

	noDetail := stripAnsi(FormatVetCheck("Schema valid", ""))
	assert.False(t, strings.HasSuffix(noDetail, " "), "no trailing whitespace without detail")

	line1 := stripAnsi(FormatVetCheck("Manifest found", "a"))
	line2 := stripAnsi(FormatVetCheck("Dependency references resolvable", "a"))
	assert.Equal(t, strings.LastIndex(line1, "a"), strings.LastIndex(line2, "a"))
}

func TestFormatCheckmark(t *testing.T) {
	result := FormatCheckmark("Manifest built")
	assert.Contains(t, result, "✔")
	assert.Contains(t, result, "Manifest built")
}
