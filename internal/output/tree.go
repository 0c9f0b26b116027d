package output

import (
	"sort"
	"strings"
)

const (
	treeEdge  = "├── "
	treeLast  = "└── "
	treeVert  = "│   "
	treeSpace = "    "

	descriptionColumn = 36
)

type treeNode struct {
	name        string
	description string
	isDir       bool
	children    []*treeNode
}

// RenderFileTree renders the relative paths in files as a tree under root.
// Each value is shown as a dimmed description aligned to a fixed column.
func RenderFileTree(root string, files map[string]string) string {
	if len(files) == 0 {
		return ""
	}

	top := &treeNode{name: root, isDir: true}
	for path, desc := range files {
		parts := strings.Split(strings.TrimPrefix(path, "./"), "/")
		current := top
		for i, part := range parts {
			last := i == len(parts)-1
			child := current.child(part)
			if child == nil {
				child = &treeNode{name: part, isDir: !last}
				current.children = append(current.children, child)
			}
			if last {
				child.description = desc
			}
			current = child
		}
	}
	top.sort()

	var sb strings.Builder
	sb.WriteString(StyleSummary.Render(top.name+"/") + "\n")
	for i, c := range top.children {
		c.render(&sb, "", i == len(top.children)-1)
	}
	return sb.String()
}

func (n *treeNode) child(name string) *treeNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// sort orders directories before files, then by name.
func (n *treeNode) sort() {
	sort.Slice(n.children, func(i, j int) bool {
		a, b := n.children[i], n.children[j]
		if a.isDir != b.isDir {
			return a.isDir
		}
		return a.name < b.name
	})
	for _, c := range n.children {
		c.sort()
	}
}

func (n *treeNode) render(sb *strings.Builder, prefix string, last bool) {
	connector := treeEdge
	if last {
		connector = treeLast
	}
	name := n.name
	if n.isDir {
		name += "/"
	}

	line := prefix + connector + name
	if n.description != "" {
		padding := descriptionColumn - len([]rune(line))
		if padding < 2 {
			padding = 2
		}
		line += strings.Repeat(" ", padding) + StyleDim.Render(n.description)
	}
	sb.WriteString(line + "\n")

	childPrefix := prefix + treeVert
	if last {
		childPrefix = prefix + treeSpace
	}
	for i, c := range n.children {
		c.render(sb, childPrefix, i == len(n.children)-1)
	}
}
