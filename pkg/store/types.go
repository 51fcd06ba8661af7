package store

import "errors"

var (
	ErrExists      = errors.New("already exists")
	ErrInvalidName = errors.New("invalid name")
	ErrSameName    = errors.New("new name and old name are the same")
	ErrSamePath    = errors.New("source and destination are the same")
	ErrRoot        = errors.New("operation not allowed on the wiki root")
)

// Node is a file or directory in the wiki tree.
type Node struct {
	Name     string
	Path     string // absolute
	RelPath  string // slash-separated, relative to the wiki root
	IsDir    bool
	Children []*Node
	Parent   *Node
}

// IsMarkdown reports whether the node is a markdown file.
func (n *Node) IsMarkdown() bool {
	return !n.IsDir && hasMarkdownExt(n.Name)
}

// Meta is the YAML frontmatter of a wiki page.
type Meta struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags,omitempty"`
}
