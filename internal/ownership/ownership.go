// Package ownership aggregates which entities are owned by a group
// hierarchy. It is a one-shot traversal over an external catalog graph:
// starting from a ref, it collects every transitive child group, then
// gathers the entities owned by any ref in that set.
package ownership

import (
	"context"
	"fmt"
	"sort"
)

// Entity is a catalog entity as reported by the graph API.
type Entity struct {
	Ref  string
	Kind string
	Name string
}

// GraphClient is the read-only view of the catalog graph this package
// needs. Implementations typically wrap a remote catalog service.
type GraphClient interface {
	// ChildGroups returns the refs of groups directly beneath parent.
	ChildGroups(ctx context.Context, parent string) ([]string, error)
	// OwnedEntities returns every entity owned by any of the given refs.
	OwnedEntities(ctx context.Context, owners []string) ([]Entity, error)
}

// Aggregation summarizes ownership across a group hierarchy.
type Aggregation struct {
	// Owners holds every ref in the hierarchy, root included, sorted.
	Owners []string
	// Entities holds the owned entities as returned by the graph.
	Entities []Entity
	// CountsByKind maps entity kind to the number of owned entities.
	CountsByKind map[string]int
}

// Aggregate walks the group hierarchy under root breadth-first, collecting
// every reachable group ref, then fetches and summarizes the entities owned
// by any of them. Cycles in the graph are tolerated; each ref is visited
// once. Graph failures abort the traversal and surface wrapped.
func Aggregate(ctx context.Context, client GraphClient, root string) (*Aggregation, error) {
	if root == "" {
		return nil, fmt.Errorf("ownership root ref must not be empty")
	}

	seen := map[string]bool{root: true}
	owners := []string{root}
	queue := []string{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := client.ChildGroups(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("resolve child groups of %s: %w", current, err)
		}
		for _, child := range children {
			if seen[child] {
				continue
			}
			seen[child] = true
			owners = append(owners, child)
			queue = append(queue, child)
		}
	}

	sort.Strings(owners)

	entities, err := client.OwnedEntities(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("fetch owned entities: %w", err)
	}

	counts := make(map[string]int, len(entities))
	for _, e := range entities {
		counts[e.Kind]++
	}

	return &Aggregation{
		Owners:       owners,
		Entities:     entities,
		CountsByKind: counts,
	}, nil
}
