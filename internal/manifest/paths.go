package manifest

import (
	"path"
	"strings"
)

// SubpathPrefix marks a path or export key as relative to the package root.
const SubpathPrefix = "./"

// RootKey is the export key for the package root.
const RootKey = "."

// SelfKey is the conventional export of the manifest itself.
const SelfKey = "./package.json"

// sourceExts are the extensions of buildable source modules.
var sourceExts = []string{".ts", ".tsx", ".mts", ".cts"}

// compiledExts are the extensions the build emits.
var compiledExts = []string{".js", ".mjs", ".cjs"}

// declarationSuffixes mark type declaration files.
var declarationSuffixes = []string{".d.ts", ".d.mts", ".d.cts"}

// DeclarationExt is the extension of a derived declaration file.
const DeclarationExt = ".d.ts"

// IsDeclaration reports whether p names a type declaration file.
func IsDeclaration(p string) bool {
	for _, s := range declarationSuffixes {
		if strings.HasSuffix(p, s) {
			return true
		}
	}
	return false
}

// SourceExt returns the source-module extension p ends with, or "".
// Matching is case-sensitive.
func SourceExt(p string) string {
	if IsDeclaration(p) {
		return ""
	}
	for _, ext := range sourceExts {
		if strings.HasSuffix(p, ext) {
			return ext
		}
	}
	return ""
}

// IsSourceModule reports whether p is a buildable source module path.
func IsSourceModule(p string) bool {
	return SourceExt(p) != ""
}

// CompiledExt returns the compiled extension p ends with, or "".
func CompiledExt(p string) string {
	for _, ext := range compiledExts {
		if strings.HasSuffix(p, ext) {
			return ext
		}
	}
	return ""
}

// assetExts are the export key extensions that name non-buildable files.
// Any other dotted suffix ("./v1.2") is part of a subpath name.
var assetExts = []string{
	".css", ".scss", ".sass", ".less",
	".json", ".wasm", ".node",
	".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
	".woff", ".woff2", ".ttf", ".otf",
	".html", ".md", ".txt", ".map",
}

// IsAssetKey reports whether an export key names a non-buildable asset,
// e.g. "./styles.css" or "./schema.json".
func IsAssetKey(key string) bool {
	if key == RootKey {
		return false
	}
	ext := strings.ToLower(path.Ext(key))
	for _, a := range assetExts {
		if a == ext {
			return true
		}
	}
	return false
}

// StripSubpath removes a leading "./" marker.
func StripSubpath(p string) string {
	return strings.TrimPrefix(p, SubpathPrefix)
}
