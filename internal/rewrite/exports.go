package rewrite

import (
	"github.com/opmodel/pkgbuild/internal/entry"
	"github.com/opmodel/pkgbuild/internal/manifest"
)

// TransformExports rewrites an export tree. The input node is not modified.
func (r *Rewriter) TransformExports(root *manifest.ExportNode) (*manifest.ExportNode, error) {
	return r.transformNode(manifest.RootKey, root)
}

func (r *Rewriter) transformNode(key string, n *manifest.ExportNode) (*manifest.ExportNode, error) {
	switch n.Kind {
	case manifest.KindPath:
		return r.transformString(key, n.Path)

	case manifest.KindFallback:
		out := &manifest.ExportNode{Kind: manifest.KindFallback, Items: make([]*manifest.ExportNode, len(n.Items))}
		for i, item := range n.Items {
			t, err := r.transformNode(key, item)
			if err != nil {
				return nil, err
			}
			if t == nil {
				t = item
			}
			out.Items[i] = t
		}
		return out, nil

	case manifest.KindConditions:
		return r.transformConditions(key, n, false)

	case manifest.KindSubpaths:
		out := &manifest.ExportNode{Kind: manifest.KindSubpaths, Entries: make([]manifest.ExportEntry, 0, len(n.Entries))}
		for _, e := range n.Entries {
			t, err := r.transformNode(e.Key, e.Node)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, manifest.ExportEntry{Key: e.Key, Node: t})
		}
		return out, nil

	default:
		return n, nil
	}
}

// transformString resolves the output path for key and, when the original
// value is a source module, expands it into a types/module condition pair.
func (r *Rewriter) transformString(key, p string) (*manifest.ExportNode, error) {
	out, err := r.resolveOutput(key, p)
	if err != nil {
		return nil, err
	}
	if !manifest.IsSourceModule(p) {
		return manifest.PathNode(out), nil
	}
	return &manifest.ExportNode{
		Kind: manifest.KindConditions,
		Entries: []manifest.ExportEntry{
			{Key: manifest.ConditionTypes, Node: manifest.PathNode(r.DeriveTypePath(out))},
			{Key: r.opts.Format.ModuleCondition(), Node: manifest.PathNode(out)},
		},
	}, nil
}

// resolveOutput picks the output path for an export: the override table,
// then the entry table, then TransformPath.
func (r *Rewriter) resolveOutput(key, p string) (string, error) {
	if out, ok := r.opts.Overrides[key]; ok {
		if out == "" {
			return "", &OverrideError{Table: "override", Key: key}
		}
		return out, nil
	}

	if r.opts.Bundle && len(r.opts.Entries) > 0 {
		for _, name := range r.entryCandidates(key) {
			src, ok := r.opts.Entries[name]
			if !ok {
				continue
			}
			if src == "" {
				return "", &OverrideError{Table: "entry", Key: key}
			}
			return manifest.SubpathPrefix + name + r.outExt, nil
		}
	}

	return r.TransformPath(p), nil
}

func (r *Rewriter) entryCandidates(key string) []string {
	return []string{
		entry.Name(key, r.opts.NestedIndexLayout),
		manifest.StripSubpath(key),
		key,
	}
}

// transformConditions rewrites every value of a condition object in place
// of its key. Source modules resolve like a string export without
// synthesizing a declaration; anything else, including a types condition,
// goes through TransformPath.
func (r *Rewriter) transformConditions(key string, n *manifest.ExportNode, plain bool) (*manifest.ExportNode, error) {
	switch n.Kind {
	case manifest.KindPath:
		if !plain && manifest.IsSourceModule(n.Path) {
			out, err := r.resolveOutput(key, n.Path)
			if err != nil {
				return nil, err
			}
			return manifest.PathNode(out), nil
		}
		return manifest.PathNode(r.TransformPath(n.Path)), nil
	case manifest.KindFallback:
		out := &manifest.ExportNode{Kind: manifest.KindFallback, Items: make([]*manifest.ExportNode, len(n.Items))}
		for i, item := range n.Items {
			t, err := r.transformConditions(key, item, plain)
			if err != nil {
				return nil, err
			}
			out.Items[i] = t
		}
		return out, nil
	case manifest.KindConditions, manifest.KindSubpaths:
		out := &manifest.ExportNode{Kind: n.Kind, Entries: make([]manifest.ExportEntry, len(n.Entries))}
		for i, e := range n.Entries {
			t, err := r.transformConditions(key, e.Node, plain || e.Key == manifest.ConditionTypes)
			if err != nil {
				return nil, err
			}
			out.Entries[i] = manifest.ExportEntry{Key: e.Key, Node: t}
		}
		return out, nil
	default:
		return n, nil
	}
}
