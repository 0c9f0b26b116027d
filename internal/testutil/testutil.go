// Package testutil provides test helpers for pkgbuild tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/opmodel/pkgbuild/internal/manifest"
)

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// WriteFs writes content to path on fs, creating parent directories.
func WriteFs(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// ParseManifest decodes doc or fails the test.
func ParseManifest(t *testing.T, doc string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}
	return m
}

// Lookup walks nested objects of m along keys and returns the value found,
// or nil when any key is missing.
func Lookup(m *manifest.Manifest, keys ...string) any {
	var cur any = m.Object
	for _, k := range keys {
		obj, ok := cur.(*manifest.Object)
		if !ok {
			return nil
		}
		cur, ok = obj.Get(k)
		if !ok {
			return nil
		}
	}
	return cur
}
