package manifest

// NodeKind tags the shape of an ExportNode.
type NodeKind int

const (
	// KindPath is a single path string.
	KindPath NodeKind = iota
	// KindFallback is an ordered list of alternatives.
	KindFallback
	// KindConditions is an object keyed by conditions (import, require, types, default, ...).
	KindConditions
	// KindSubpaths is an object keyed by subpaths ("./utils").
	KindSubpaths
	// KindRaw is any other JSON value (null blocks a subpath); passed through untouched.
	KindRaw
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindFallback:
		return "fallback"
	case KindConditions:
		return "conditions"
	case KindSubpaths:
		return "subpaths"
	default:
		return "raw"
	}
}

// Export condition keys. An object holding any of them is a condition object.
const (
	ConditionImport  = "import"
	ConditionRequire = "require"
	ConditionTypes   = "types"
	ConditionDefault = "default"
)

var conditionKeys = []string{ConditionImport, ConditionRequire, ConditionTypes, ConditionDefault}

// IsConditionKey reports whether key is one of the four classifying condition keys.
func IsConditionKey(key string) bool {
	for _, c := range conditionKeys {
		if c == key {
			return true
		}
	}
	return false
}

// ExportEntry is one key of a condition or subpath object.
type ExportEntry struct {
	Key  string
	Node *ExportNode
}

// ExportNode is one node of an export tree. The kind is decided once when
// the node is parsed; the rewriter dispatches on it instead of re-inspecting
// the data at every level.
type ExportNode struct {
	Kind    NodeKind
	Path    string
	Items   []*ExportNode
	Entries []ExportEntry
	Raw     any
}

// PathNode creates a KindPath node.
func PathNode(p string) *ExportNode {
	return &ExportNode{Kind: KindPath, Path: p}
}

// ParseExportNode classifies a decoded JSON value into an export tree.
func ParseExportNode(v any) *ExportNode {
	switch t := v.(type) {
	case string:
		return PathNode(t)
	case []any:
		node := &ExportNode{Kind: KindFallback, Items: make([]*ExportNode, 0, len(t))}
		for _, item := range t {
			node.Items = append(node.Items, ParseExportNode(item))
		}
		return node
	case *Object:
		kind := KindSubpaths
		for _, k := range t.keys {
			if IsConditionKey(k) {
				kind = KindConditions
				break
			}
		}
		node := &ExportNode{Kind: kind, Entries: make([]ExportEntry, 0, t.Len())}
		for _, k := range t.keys {
			node.Entries = append(node.Entries, ExportEntry{Key: k, Node: ParseExportNode(t.values[k])})
		}
		return node
	default:
		return &ExportNode{Kind: KindRaw, Raw: t}
	}
}

// Lookup returns the child node under key for object kinds.
func (n *ExportNode) Lookup(key string) (*ExportNode, bool) {
	if n == nil || (n.Kind != KindConditions && n.Kind != KindSubpaths) {
		return nil, false
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Node, true
		}
	}
	return nil, false
}

// Value converts the node back into a JSON value (string, []any, *Object, or raw).
func (n *ExportNode) Value() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindPath:
		return n.Path
	case KindFallback:
		out := make([]any, len(n.Items))
		for i, item := range n.Items {
			out[i] = item.Value()
		}
		return out
	case KindConditions, KindSubpaths:
		obj := NewObject()
		for _, e := range n.Entries {
			obj.Set(e.Key, e.Node.Value())
		}
		return obj
	default:
		return n.Raw
	}
}
