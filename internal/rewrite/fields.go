package rewrite

import (
	"strings"

	"github.com/opmodel/pkgbuild/internal/manifest"
)

// TransformBin rewrites the executable map with TransformPath only.
// Non-string values are carried through.
func (r *Rewriter) TransformBin(v any) any {
	switch t := v.(type) {
	case string:
		return r.TransformPath(t)
	case *manifest.Object:
		out := manifest.NewObject()
		for _, name := range t.Keys() {
			raw, _ := t.Get(name)
			if s, ok := raw.(string); ok {
				out.Set(name, r.TransformPath(s))
			} else {
				out.Set(name, raw)
			}
		}
		return out
	default:
		return v
	}
}

// TransformTypesVersions rewrites every path listed in a typesVersions map,
// e.g. {">=4.2": {"*": ["./src/*"]}}.
func (r *Rewriter) TransformTypesVersions(v any) any {
	switch t := v.(type) {
	case string:
		return r.typePath(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = r.TransformTypesVersions(item)
		}
		return out
	case *manifest.Object:
		out := manifest.NewObject()
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			out.Set(k, r.TransformTypesVersions(child))
		}
		return out
	default:
		return v
	}
}

// TransformFiles rewrites the file list. Each entry loses its source root,
// the leading "./" and the public directory prefix, since static assets
// are merged into the output root. Entries reduced to nothing are dropped.
func (r *Rewriter) TransformFiles(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}

	publicPrefix := strings.TrimSuffix(manifest.StripSubpath(r.opts.PublicDir), "/") + "/"
	out := make([]any, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			out = append(out, item)
			continue
		}
		p := manifest.StripSubpath(r.TransformPath(s))
		p = strings.TrimPrefix(p, publicPrefix)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
