// Package tree models filesystem snapshots and expands compressed
// selections against them.
package tree

// NodeType distinguishes files from directories in a snapshot.
type NodeType string

const (
	File NodeType = "file"
	Dir  NodeType = "dir"
)

// Node is one entry in an immutable filesystem snapshot. Children is
// present only for directories, and every child path is prefixed by
// the parent path plus "/".
type Node struct {
	Path     string   `json:"path"`
	Type     NodeType `json:"type"`
	Children []*Node  `json:"children,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Type == Dir
}
