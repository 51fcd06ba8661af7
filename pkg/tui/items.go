package tui

import (
	"github.com/sahilm/fuzzy"

	"github.com/stefanpenner/mdwiki/pkg/store"
)

// TreeItem is one visible row of the sidebar.
type TreeItem struct {
	Node       *store.Node
	Depth      int
	IsExpanded bool
	Matched    []int // byte indexes into Label matched by the search query
	Label      string
}

// ID identifies the row across reloads.
func (t TreeItem) ID() string { return t.Node.Path }

// HasChildren reports whether the row can be expanded.
func (t TreeItem) HasChildren() bool { return t.Node.IsDir && len(t.Node.Children) > 0 }

// FlattenVisibleItems returns the rows visible under the expanded state, in
// tree order.
func FlattenVisibleItems(nodes []*store.Node, expanded map[string]bool) []TreeItem {
	var result []TreeItem
	flattenNodes(nodes, 0, expanded, &result)
	return result
}

func flattenNodes(nodes []*store.Node, depth int, expanded map[string]bool, result *[]TreeItem) {
	for _, n := range nodes {
		item := TreeItem{
			Node:       n,
			Depth:      depth,
			IsExpanded: n.IsDir && expanded[n.Path],
			Label:      n.Name,
		}
		*result = append(*result, item)
		if item.IsExpanded {
			flattenNodes(n.Children, depth+1, expanded, result)
		}
	}
}

// allFiles collects every file in the tree, depth first.
func allFiles(nodes []*store.Node) []*store.Node {
	var files []*store.Node
	var walk func([]*store.Node)
	walk = func(ns []*store.Node) {
		for _, n := range ns {
			if n.IsDir {
				walk(n.Children)
				continue
			}
			files = append(files, n)
		}
	}
	walk(nodes)
	return files
}

// FuzzyItems fuzzy-matches query against the wiki-relative path of every file
// and returns the hits, best first, as flat rows labelled with that path.
func FuzzyItems(nodes []*store.Node, query string) []TreeItem {
	files := allFiles(nodes)
	if query == "" {
		items := make([]TreeItem, len(files))
		for i, f := range files {
			items[i] = TreeItem{Node: f, Label: f.RelPath}
		}
		return items
	}

	targets := make([]string, len(files))
	for i, f := range files {
		targets[i] = f.RelPath
	}
	matches := fuzzy.Find(query, targets)
	items := make([]TreeItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, TreeItem{
			Node:    files[m.Index],
			Label:   m.Str,
			Matched: m.MatchedIndexes,
		})
	}
	return items
}

// expandTo marks every ancestor directory of path expanded.
func expandTo(node *store.Node, expanded map[string]bool) {
	for p := node.Parent; p != nil; p = p.Parent {
		expanded[p.Path] = true
	}
}

// findNode looks a path up in the tree.
func findNode(nodes []*store.Node, path string) *store.Node {
	for _, n := range nodes {
		if n.Path == path {
			return n
		}
		if n.IsDir {
			if found := findNode(n.Children, path); found != nil {
				return found
			}
		}
	}
	return nil
}
