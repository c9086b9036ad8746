package dag

import (
	"fmt"
	"sort"
)

// Track is an independent subset of the graph whose nodes share no
// dependency edges with nodes in other tracks.
type Track struct {
	// ID is the track's position in the ComputeTracks result, starting at 0.
	ID int

	// NodeIDs lists the track's nodes in topological order.
	NodeIDs []int
}

// ComputeTracks partitions the DAG into independent tracks using
// Union-Find. Tracks are ordered by size (largest first), then by their
// lowest node id. Returns ErrCycle from the underlying topological sort.
func (d *DAG) ComputeTracks() ([]Track, error) {
	if len(d.adjacency) == 0 {
		return nil, nil
	}

	topoPos, err := d.Ranks()
	if err != nil {
		return nil, err
	}

	uf := NewUnionFind()
	for id := range d.adjacency {
		uf.Add(id)
	}
	for from, deps := range d.adjacency {
		for to := range deps {
			uf.Union(from, to)
		}
	}

	components := uf.Components()
	tracks := make([]Track, 0, len(components))
	for _, members := range components {
		sort.Slice(members, func(i, j int) bool {
			return topoPos[members[i]] < topoPos[members[j]]
		})
		tracks = append(tracks, Track{NodeIDs: members})
	}

	sort.Slice(tracks, func(i, j int) bool {
		if len(tracks[i].NodeIDs) != len(tracks[j].NodeIDs) {
			return len(tracks[i].NodeIDs) > len(tracks[j].NodeIDs)
		}
		return minID(tracks[i].NodeIDs) < minID(tracks[j].NodeIDs)
	})
	for i := range tracks {
		tracks[i].ID = i
	}
	return tracks, nil
}

// Wave is a group of nodes whose dependencies all sit in earlier waves.
type Wave struct {
	Number  int   // 1-based wave number
	NodeIDs []int // ascending
}

// ComputeWaves groups nodes into dependency waves using Kahn's algorithm.
// Wave 1 holds nodes without dependencies, wave 2 those whose dependencies
// are all in wave 1, and so on.
func (d *DAG) ComputeWaves() ([]Wave, error) {
	inDegree := make(map[int]int, len(d.adjacency))
	var current []int
	for id, deps := range d.adjacency {
		inDegree[id] = len(deps)
		if len(deps) == 0 {
			current = append(current, id)
		}
	}

	var waves []Wave
	visited := 0
	for len(current) > 0 {
		sort.Ints(current)
		waves = append(waves, Wave{Number: len(waves) + 1, NodeIDs: current})
		visited += len(current)

		var next []int
		for _, id := range current {
			for dependent := range d.reverse[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		current = next
	}

	if visited != len(d.adjacency) {
		return nil, fmt.Errorf("%w: not all nodes could be grouped into waves", ErrCycle)
	}
	return waves, nil
}

func minID(ids []int) int {
	m := ids[0]
	for _, id := range ids[1:] {
		m = min(m, id)
	}
	return m
}
