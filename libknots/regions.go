package libknots

import (
	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// RegionGraph is the global adjacency graph of the triangles of a Map.
//
// Node i is triangle i - Base[ti] of tile ti (a zero-based slot index); two nodes are joined if their triangles share
// a plain edge inside a tile or share a boundary segment across neighbouring tiles.
type RegionGraph struct {
	Base []int32   // tile slot index => first node of that tile's triangles
	Adj  [][]int32 // node => adjacent nodes
	Tile []int32   // node => tile slot index
}

func (rg *RegionGraph) link(a, b int32) {
	rg.Adj[a] = append(rg.Adj[a], b)
	rg.Adj[b] = append(rg.Adj[b], a)
}

// BuildRegionGraph assembles the triangle graph of a map whose neighbours are resolved.
func (M *Map) BuildRegionGraph() (*RegionGraph, error) {
	if err := M.checkReady(); err != nil {
		return nil, err
	}

	rg := &RegionGraph{
		Base: make([]int32, len(M.tiles)),
	}
	Nn := int32(0)
	for ti, t := range M.tiles {
		rg.Base[ti] = Nn
		Nn += int32(len(t.triangles))
	}
	rg.Adj = make([][]int32, Nn)
	rg.Tile = make([]int32, Nn)

	for ti, t := range M.tiles {
		base := rg.Base[ti]
		for tri, links := range t.links {
			rg.Tile[base+int32(tri)] = int32(ti)

			// A connection between two triangles is a curve, so they lie in different regions.
			for _, link := range links {
				if !link.Conn && link.To > int32(tri) {
					rg.link(base+int32(tri), base+link.To)
				}
			}
		}
	}

	for ti, t := range M.tiles {
		for _, dir := range goknots.AllDirections {
			nb := M.Neighbour(t, dir)
			if nb == nil {
				continue
			}
			mine := t.sideTris[dir]
			theirs := nb.sideTris[dir.Opposite()]
			for k, triA := range mine {
				triB := theirs[k]
				if triA < 0 || triB < 0 {
					return nil, errors.Wrapf(goknots.ErrMalformedTemplate, "%v: %s boundary segment #%d has no triangle on one side", t, dir, k)
				}
				rg.link(rg.Base[ti]+triA, rg.Base[nb.ID-1]+triB)
			}
		}
	}

	return rg, nil
}

// Components labels each node with a component index and returns the number of components.
func (rg *RegionGraph) Components() (comp []int32, count int32) {
	comp = make([]int32, len(rg.Adj))
	for i := range comp {
		comp[i] = -1
	}

	queue := make([]int32, 0, len(rg.Adj))
	for start := range rg.Adj {
		if comp[start] != -1 {
			continue
		}
		comp[start] = count
		queue = append(queue[:0], int32(start))
		for len(queue) > 0 {
			ni := queue[0]
			queue = queue[1:]
			for _, nj := range rg.Adj[ni] {
				if comp[nj] == -1 {
					comp[nj] = count
					queue = append(queue, nj)
				}
			}
		}
		count++
	}
	return comp, count
}

// CountRegions returns the number of water and land regions formed by the triangles of all tiles.
//
// Every triangle of a region must carry the same color in its own tile; a region that doesn't is reported as
// ErrInconsistentRegion.
func (M *Map) CountRegions() (goknots.RegionCounts, error) {
	rg, err := M.BuildRegionGraph()
	if err != nil {
		return goknots.RegionCounts{}, err
	}

	comp, Nc := rg.Components()
	colors := make([]goknots.Color, Nc)
	for i := range colors {
		colors[i] = uncolored
	}

	for ni, ci := range comp {
		ti := rg.Tile[ni]
		t := M.tiles[ti]
		c := t.colors[int32(ni)-rg.Base[ti]]
		switch colors[ci] {
		case uncolored:
			colors[ci] = c
		case c:
		default:
			return goknots.RegionCounts{}, errors.Wrapf(goknots.ErrInconsistentRegion, "region %d reaches %v as %v", ci, t, c)
		}
	}

	var counts goknots.RegionCounts
	for _, c := range colors {
		if c == goknots.Land {
			counts.Land++
		} else {
			counts.Water++
		}
	}
	klog.V(2).Infof("%v: %d water, %d land regions (%d triangles)", M, counts.Water, counts.Land, len(comp))
	return counts, nil
}
