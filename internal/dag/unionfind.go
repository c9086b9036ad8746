package dag

// UnionFind implements a disjoint-set (union-find) data structure with
// path compression and union by rank over integer ids.
type UnionFind struct {
	parent map[int]int
	rank   map[int]int
}

// NewUnionFind creates an empty UnionFind.
func NewUnionFind() *UnionFind {
	return &UnionFind{
		parent: make(map[int]int),
		rank:   make(map[int]int),
	}
}

// Add inserts an element as its own singleton set. If the element
// already exists, this is a no-op.
func (uf *UnionFind) Add(x int) {
	if _, ok := uf.parent[x]; ok {
		return
	}
	uf.parent[x] = x
	uf.rank[x] = 0
}

// Find returns the representative (root) of the set containing x.
// If x has not been added, it is auto-added as a singleton first.
func (uf *UnionFind) Find(x int) int {
	if _, ok := uf.parent[x]; !ok {
		uf.Add(x)
		return x
	}
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	// Path compression.
	for x != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets containing x and y. Both elements are auto-added
// if not already present.
func (uf *UnionFind) Union(x, y int) {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return
	}
	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
}

// Connected reports whether x and y belong to the same set.
func (uf *UnionFind) Connected(x, y int) bool {
	return uf.Find(x) == uf.Find(y)
}

// Components returns the disjoint sets as a map from each set's
// representative to its members. Member order is not guaranteed.
func (uf *UnionFind) Components() map[int][]int {
	groups := make(map[int][]int)
	for x := range uf.parent {
		root := uf.Find(x)
		groups[root] = append(groups[root], x)
	}
	return groups
}
