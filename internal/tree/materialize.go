package tree

import (
	"sort"

	"github.com/heimgewebe/lenskit/internal/pathutil"
)

// Materialize expands a compressed selection against a snapshot into the
// full set of included file paths. A selected directory includes every
// descendant; selecting an ancestor of the snapshot root includes the whole
// snapshot. Entries that cannot normalize or match nothing in the tree are
// ignored. The result is sorted.
//
// Inclusion is carried down the walk as an inherited flag, so each node is
// checked against the selection set at most once: O(n + m) for n nodes and
// m selection entries.
func Materialize(root *Node, selection []string) []string {
	if root == nil || len(selection) == 0 {
		return nil
	}

	selected := make(map[string]struct{}, len(selection))
	for _, raw := range selection {
		if p, ok := pathutil.Normalize(raw); ok {
			selected[p] = struct{}{}
		}
	}
	if len(selected) == 0 {
		return nil
	}

	// The snapshot may itself sit below a selected ancestor that is not
	// visible in the tree (e.g. selection "src" against a tree rooted at
	// "src/utils"). In that case everything is included from the top.
	rootImplicit := false
	if _, own := selected[root.Path]; !own {
		for entry := range selected {
			if pathutil.IsDescendant(entry, root.Path) {
				rootImplicit = true
				break
			}
		}
	}

	var files []string
	var walk func(n *Node, included bool)
	walk = func(n *Node, included bool) {
		if !included {
			_, included = selected[n.Path]
		}
		if !n.IsDir() {
			if included {
				files = append(files, n.Path)
			}
			return
		}
		for _, child := range n.Children {
			walk(child, included)
		}
	}
	walk(root, rootImplicit)

	sort.Strings(files)
	return files
}
