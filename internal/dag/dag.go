// Package dag provides the predecessor graph behind a schedule. Nodes are
// task ids; an edge from A to B means A depends on B. It supports cycle
// checks before edges are accepted, Kahn topological ordering with a stable
// ascending-id tie-break, dependency waves, and independent track
// partitioning.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrCycle is returned when the graph contains, or an edge would create, a
// dependency cycle.
var ErrCycle = errors.New("cycle detected")

// ErrNodeNotFound is returned when an operation references a non-existent node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when adding a node that already exists.
var ErrDuplicateNode = errors.New("duplicate node")

// ErrSelfEdge is returned when an edge would create a self-loop.
var ErrSelfEdge = errors.New("self-referencing edge")

// DAG is a directed acyclic graph over integer ids.
type DAG struct {
	// adjacency maps nodeID → set of dependency IDs (forward edges).
	adjacency map[int]map[int]bool
	// reverse maps nodeID → set of dependent IDs (backward edges).
	reverse map[int]map[int]bool
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		adjacency: make(map[int]map[int]bool),
		reverse:   make(map[int]map[int]bool),
	}
}

// AddNode adds a node. Returns ErrDuplicateNode if it already exists.
func (d *DAG) AddNode(id int) error {
	if d.Has(id) {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	d.adjacency[id] = make(map[int]bool)
	d.reverse[id] = make(map[int]bool)
	return nil
}

// Has reports whether id is a node of the graph.
func (d *DAG) Has(id int) bool {
	_, ok := d.adjacency[id]
	return ok
}

// AddEdge adds a dependency edge: from depends on to. Both nodes must
// already exist. Returns an error if either node is missing, the edge
// would create a self-loop, or the edge would introduce a cycle. Adding an
// existing edge is a no-op.
func (d *DAG) AddEdge(from, to int) error {
	if from == to {
		return fmt.Errorf("%w: %d", ErrSelfEdge, from)
	}
	if !d.Has(from) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, from)
	}
	if !d.Has(to) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, to)
	}
	if d.adjacency[from][to] {
		return nil
	}
	// A path to → ... → from plus the new from → to would close a loop.
	if d.HasPath(to, from) {
		return fmt.Errorf("%w: edge %d → %d would create a cycle", ErrCycle, from, to)
	}
	d.adjacency[from][to] = true
	d.reverse[to][from] = true
	return nil
}

// Link adds the edge from → to without the reachability search AddEdge
// performs. Graphs built in bulk with Link must be checked with
// TopologicalSort before they are trusted to be acyclic.
func (d *DAG) Link(from, to int) error {
	if from == to {
		return fmt.Errorf("%w: %d", ErrSelfEdge, from)
	}
	if !d.Has(from) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, from)
	}
	if !d.Has(to) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, to)
	}
	d.adjacency[from][to] = true
	d.reverse[to][from] = true
	return nil
}

// RemoveEdge deletes the edge from → to if present.
func (d *DAG) RemoveEdge(from, to int) {
	if deps, ok := d.adjacency[from]; ok {
		delete(deps, to)
	}
	if dependents, ok := d.reverse[to]; ok {
		delete(dependents, from)
	}
}

// SetDependencies replaces every dependency of id with deps. Self-references
// and unknown ids in deps are ignored. The replacement is atomic: when any
// edge would create a cycle the previous edges are restored and ErrCycle is
// returned.
func (d *DAG) SetDependencies(id int, deps []int) error {
	if !d.Has(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	previous := d.Dependencies(id)
	for _, dep := range previous {
		d.RemoveEdge(id, dep)
	}
	for _, dep := range deps {
		if dep == id || !d.Has(dep) {
			continue
		}
		if err := d.AddEdge(id, dep); err != nil {
			for _, added := range d.Dependencies(id) {
				d.RemoveEdge(id, added)
			}
			for _, old := range previous {
				d.adjacency[id][old] = true
				d.reverse[old][id] = true
			}
			return err
		}
	}
	return nil
}

// Remove removes a node and all its associated edges from the DAG.
// Returns ErrNodeNotFound if the node does not exist.
func (d *DAG) Remove(id int) error {
	if !d.Has(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	for dep := range d.adjacency[id] {
		delete(d.reverse[dep], id)
	}
	delete(d.adjacency, id)

	for dependent := range d.reverse[id] {
		delete(d.adjacency[dependent], id)
	}
	delete(d.reverse, id)
	return nil
}

// Nodes returns all node IDs in ascending order.
func (d *DAG) Nodes() []int {
	return sortedKeys(d.adjacency)
}

// Len returns the number of nodes in the DAG.
func (d *DAG) Len() int {
	return len(d.adjacency)
}

// EdgeCount returns the number of dependency edges.
func (d *DAG) EdgeCount() int {
	n := 0
	for _, deps := range d.adjacency {
		n += len(deps)
	}
	return n
}

// Dependencies returns the direct dependencies of id in ascending order.
func (d *DAG) Dependencies(id int) []int {
	return sortedKeys(d.adjacency[id])
}

// Dependents returns the nodes that directly depend on id, ascending.
func (d *DAG) Dependents(id int) []int {
	return sortedKeys(d.reverse[id])
}

// TopologicalSort returns node IDs so that dependencies come before
// dependents. Among ready nodes the lowest id goes first, so the result is
// deterministic and matches creation order whenever that order is already
// consistent. Returns ErrCycle if the graph contains a cycle.
func (d *DAG) TopologicalSort() ([]int, error) {
	inDegree := make(map[int]int, len(d.adjacency))
	var ready []int
	for id, deps := range d.adjacency {
		inDegree[id] = len(deps)
		if len(deps) == 0 {
			ready = append(ready, id)
		}
	}
	sort.Ints(ready)

	sorted := make([]int, 0, len(d.adjacency))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)

		for dependent := range d.reverse[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				pos, _ := slices.BinarySearch(ready, dependent)
				ready = slices.Insert(ready, pos, dependent)
			}
		}
	}

	if len(sorted) != len(d.adjacency) {
		return nil, fmt.Errorf("%w: not all nodes could be ordered (%d of %d)",
			ErrCycle, len(sorted), len(d.adjacency))
	}
	return sorted, nil
}

// Ranks returns each node's position in TopologicalSort order.
func (d *DAG) Ranks() (map[int]int, error) {
	order, err := d.TopologicalSort()
	if err != nil {
		return nil, err
	}
	ranks := make(map[int]int, len(order))
	for i, id := range order {
		ranks[id] = i
	}
	return ranks, nil
}

// Ancestors returns all transitive dependencies of id in ascending order.
// Returns nil if the node has none or does not exist.
func (d *DAG) Ancestors(id int) []int {
	return d.reach(id, d.adjacency)
}

// Descendants returns all transitive dependents of id in ascending order.
// Returns nil if the node has none or does not exist.
func (d *DAG) Descendants(id int) []int {
	return d.reach(id, d.reverse)
}

// HasPath reports whether there is a directed path from src to dst along
// dependency edges, i.e. whether src transitively depends on dst.
func (d *DAG) HasPath(src, dst int) bool {
	if src == dst {
		return false
	}
	visited := map[int]bool{src: true}
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range d.adjacency[cur] {
			if dep == dst {
				return true
			}
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return false
}

// WouldCreateCycle reports whether making id depend on pred would close a
// cycle. A self-reference is not reported.
func (d *DAG) WouldCreateCycle(id, pred int) bool {
	return d.HasPath(pred, id)
}

// reach walks edges from id with an explicit stack.
func (d *DAG) reach(id int, edges map[int]map[int]bool) []int {
	if !d.Has(id) {
		return nil
	}
	visited := make(map[int]bool)
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range edges[cur] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	if len(visited) == 0 {
		return nil
	}
	return sortedKeys(visited)
}

func sortedKeys[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
