package tal

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// crashSet groups train IDs that crashed into each other (union-find).
type crashSet struct {
	parent map[int]int
}

func newCrashSet() *crashSet {
	return &crashSet{parent: map[int]int{}}
}

func (c *crashSet) find(id int) int {
	p, ok := c.parent[id]
	if !ok {
		c.parent[id] = id
		return id
	}
	if p == id {
		return id
	}
	root := c.find(p)
	c.parent[id] = root
	return root
}

func (c *crashSet) union(a, b int) {
	ra, rb := c.find(a), c.find(b)
	if ra == rb {
		return
	}
	// the smaller ID becomes the root so groups are keyed by their first member
	if rb < ra {
		ra, rb = rb, ra
	}
	c.parent[rb] = ra
}

// groups returns every group with IDs ascending, ordered by their smallest ID.
func (c *crashSet) groups() [][]int {
	byRoot := map[int][]int{}
	for id := range c.parent {
		root := c.find(id)
		byRoot[root] = append(byRoot[root], id)
	}
	roots := maps.Keys(byRoot)
	slices.Sort(roots)
	var res [][]int
	for _, root := range roots {
		g := byRoot[root]
		slices.Sort(g)
		res = append(res, g)
	}
	return res
}
