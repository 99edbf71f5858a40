// Package hierarchy expands an activity into itself plus all of its descendants.
package hierarchy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/models"
	"github.com/secunda/directory/internal/store"
)

// Tree is the transitive closure of one or more root activities.
type Tree struct {
	// Roots are the root activities the tree was expanded from.
	Roots []*models.Activity
	// Nodes holds every activity in breadth-first order, roots first.
	Nodes []*models.Activity
}

// Empty reports whether no activity matched.
func (t *Tree) Empty() bool {
	return len(t.Nodes) == 0
}

// IDs returns the id of every node in the tree.
func (t *Tree) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// Resolve finds the root activities named rootName and expands them. Only
// activities without a parent are considered as starting points, so a name
// that exists only below the top level yields an empty tree.
func Resolve(ctx context.Context, r store.Reader, rootName string) (*Tree, error) {
	roots, err := r.ListRootActivitiesByName(ctx, rootName)
	if err != nil {
		return nil, fmt.Errorf("failed to find root activity %q: %w", rootName, err)
	}

	return Expand(ctx, r, roots)
}

// Expand walks parent links breadth-first from the given roots. Each activity
// is visited at most once, so cycles in the stored data still terminate.
func Expand(ctx context.Context, r store.Reader, roots []*models.Activity) (*Tree, error) {
	tree := &Tree{Roots: roots}
	visited := make(map[uuid.UUID]struct{}, len(roots))

	queue := make([]*models.Activity, 0, len(roots))
	for _, root := range roots {
		if _, seen := visited[root.ID]; seen {
			continue
		}
		visited[root.ID] = struct{}{}
		queue = append(queue, root)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]
		tree.Nodes = append(tree.Nodes, current)

		children, err := r.ListChildActivities(ctx, current.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list children of activity %s: %w", current.ID, err)
		}

		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			queue = append(queue, child)
		}
	}

	return tree, nil
}
