package rewrite

import (
	"strings"

	"github.com/opmodel/pkgbuild/internal/manifest"
)

const indexStem = "/index"

// TransformPath maps a source-tree path to its output-tree path. Applying
// it to its own result is a no-op.
func (r *Rewriter) TransformPath(p string) string {
	p = r.stripSourceRoot(p)
	if !r.opts.SourceTransform {
		return p
	}

	ext := manifest.SourceExt(p)
	if ext == "" {
		return p
	}
	if r.opts.CollapseIndex {
		if dir, ok := collapsible(p, ext); ok {
			return dir + r.outExt
		}
	}
	return strings.TrimSuffix(p, ext) + r.outExt
}

// DeriveTypePath returns the declaration file paired with an output path.
func (r *Rewriter) DeriveTypePath(out string) string {
	ext := manifest.CompiledExt(out)
	if ext == "" {
		ext = manifest.SourceExt(out)
	}
	if r.opts.CollapseIndex && ext == r.outExt {
		if dir, ok := collapsible(out, ext); ok {
			return dir + manifest.DeclarationExt
		}
	}
	return strings.TrimSuffix(out, ext) + manifest.DeclarationExt
}

// typePath rewrites a path found in a types position: source modules become
// their derived declaration, declarations only lose the source root.
func (r *Rewriter) typePath(p string) string {
	if manifest.IsSourceModule(p) {
		return r.DeriveTypePath(r.TransformPath(p))
	}
	return r.TransformPath(p)
}

func (r *Rewriter) stripSourceRoot(p string) string {
	for _, root := range r.opts.SourceRoots {
		if rest, ok := strings.CutPrefix(p, root); ok && rest != "" {
			if strings.HasPrefix(root, manifest.SubpathPrefix) {
				return manifest.SubpathPrefix + rest
			}
			return rest
		}
		bare := manifest.StripSubpath(root)
		if rest, ok := strings.CutPrefix(p, bare); ok && rest != "" && bare != root {
			return rest
		}
	}
	return p
}

// collapsible reports whether p ends in "/index<ext>" below the package
// root and returns the directory part.
func collapsible(p, ext string) (string, bool) {
	dir, ok := strings.CutSuffix(p, indexStem+ext)
	if !ok || dir == "" || dir == "." {
		return "", false
	}
	return dir, true
}
