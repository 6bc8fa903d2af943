package utils

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FileNode represents a node in the file tree.
type FileNode struct {
	Name     string
	Path     string // full path, set on file nodes only
	IsFile   bool
	Children map[string]*FileNode
}

func (n *FileNode) addChild(name string, isFile bool) *FileNode {
	if n.Children == nil {
		n.Children = make(map[string]*FileNode)
	}
	if child, ok := n.Children[name]; ok {
		return child
	}
	child := &FileNode{Name: name, IsFile: isFile}
	n.Children[name] = child
	return child
}

// BuildFileTree builds a tree structure from a slice of file paths.
func BuildFileTree(paths []string) *FileNode {
	root := &FileNode{Name: "", Children: make(map[string]*FileNode)}
	for _, fullPath := range paths {
		parts := strings.Split(filepath.ToSlash(fullPath), "/")
		current := root
		for i, part := range parts {
			isFile := i == len(parts)-1
			child := current.addChild(part, isFile)
			if isFile {
				child.Path = fullPath
			}
			current = child
		}
	}
	return root
}

// AnnotateFunc returns a short status suffix for a file node ("merged",
// "conflicts", "skipped", ...); an empty string leaves the name bare.
type AnnotateFunc func(path string) string

// RenderFileTree renders the file tree as a string using branch characters.
// skipSelf omits the current node's own header; annotate is consulted for
// every file node.
func RenderFileTree(node *FileNode, prefix string, isLast bool, skipSelf bool, annotate AnnotateFunc) string {
	var line string
	if !skipSelf && node.Name != "" {
		branch := "┣"
		if isLast {
			branch = "┗"
		}
		icon := "📜"
		if len(node.Children) > 0 {
			icon = "📂"
		}
		displayName := node.Name
		if node.IsFile && annotate != nil {
			if status := annotate(node.Path); status != "" {
				displayName += " (" + status + ")"
			}
		}
		line = fmt.Sprintf("%s%s %s %s\n", prefix, branch, icon, displayName)
	}

	newPrefix := prefix
	if node.Name != "" {
		if isLast {
			newPrefix += "   "
		} else {
			newPrefix += "┃  "
		}
	}

	var names []string
	for name := range node.Children {
		names = append(names, name)
	}
	sort.Strings(names)

	result := line
	for i, name := range names {
		child := node.Children[name]
		result += RenderFileTree(child, newPrefix, i == len(names)-1, false, annotate)
	}
	return result
}
