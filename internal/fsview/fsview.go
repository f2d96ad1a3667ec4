// Package fsview performs the actual directory reads behind the token
// boundary. Every operation takes a security.TrustedPath; there is no way
// to hand this package a raw string.
package fsview

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/heimgewebe/lenskit/internal/security"
	"github.com/heimgewebe/lenskit/internal/tree"
)

// Entry is one child of a listed directory.
type Entry struct {
	Name string
	Path string // canonical path of the child
	Type tree.NodeType
}

// Lister reads directory structure for verified paths. Implementations may
// block on I/O; they must honor context cancellation so a stalled read
// never holds up unrelated requests.
type Lister interface {
	// ListDir reads exactly one directory level.
	ListDir(ctx context.Context, p security.TrustedPath) ([]Entry, error)
	// Snapshot builds the full subtree rooted at p.
	Snapshot(ctx context.Context, p security.TrustedPath) (*tree.Node, error)
}

// OSLister reads the local filesystem via os.ReadDir.
type OSLister struct{}

// NewOSLister creates a Lister over the local filesystem.
func NewOSLister() *OSLister {
	return &OSLister{}
}

// ListDir reads one directory level. Entries are sorted by name; unreadable
// entries are skipped rather than failing the whole listing.
func (l *OSLister) ListDir(ctx context.Context, p security.TrustedPath) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := p.Path()
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, e := range dirents {
		entryType := tree.File
		if e.IsDir() {
			entryType = tree.Dir
		}
		entries = append(entries, Entry{
			Name: e.Name(),
			Path: joinCanonical(dir, e.Name()),
			Type: entryType,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Snapshot builds the subtree rooted at p. Directories carry a (possibly
// empty) children slice, files never do. Symlinks are not followed; the
// walk assumes the resulting tree is acyclic.
func (l *OSLister) Snapshot(ctx context.Context, p security.TrustedPath) (*tree.Node, error) {
	root := p.Path()
	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return &tree.Node{Path: root, Type: tree.File}, nil
	}
	return l.snapshotDir(ctx, root)
}

func (l *OSLister) snapshotDir(ctx context.Context, dir string) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node := &tree.Node{Path: dir, Type: tree.Dir, Children: []*tree.Node{}}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", dir, err)
	}

	for _, e := range dirents {
		childPath := joinCanonical(dir, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			// Symlinks are surfaced as files and never followed.
			node.Children = append(node.Children, &tree.Node{Path: childPath, Type: tree.File})
			continue
		}
		if e.IsDir() {
			child, err := l.snapshotDir(ctx, childPath)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			continue
		}
		node.Children = append(node.Children, &tree.Node{Path: childPath, Type: tree.File})
	}
	return node, nil
}

// joinCanonical appends a child name to a canonical directory path without
// introducing a double slash at the root.
func joinCanonical(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
