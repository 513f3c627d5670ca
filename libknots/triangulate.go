package libknots

import (
	"sort"

	"github.com/2x3systems/goknots/goknots"
)

// Triangulate returns every triple of point indices (u, v, w) such that edges u-v, v-w, and u-w all exist.
//
// Each triangle is sorted and the returned list is in lexicographic order, so the result is unique for a given edge list.
func Triangulate(numPoints int, edges []goknots.Edge) []goknots.Triangle {
	adj := make([]map[int32]struct{}, numPoints)
	for i := range adj {
		adj[i] = make(map[int32]struct{}, 6)
	}
	for _, e := range edges {
		adj[e.A][e.B] = struct{}{}
		adj[e.B][e.A] = struct{}{}
	}

	seen := make(map[goknots.Triangle]struct{}, len(edges))
	tris := make([]goknots.Triangle, 0, len(edges))

	for _, e := range edges {
		u, v := e.A, e.B
		if len(adj[v]) < len(adj[u]) {
			u, v = v, u
		}
		for w := range adj[u] {
			if _, common := adj[v][w]; !common {
				continue
			}
			tri := sortedTriangle(u, v, w)
			if _, dupe := seen[tri]; !dupe {
				seen[tri] = struct{}{}
				tris = append(tris, tri)
			}
		}
	}

	sort.Slice(tris, func(i, j int) bool {
		a, b := tris[i], tris[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	return tris
}

func sortedTriangle(u, v, w int32) goknots.Triangle {
	if u > v {
		u, v = v, u
	}
	if v > w {
		v, w = w, v
	}
	if u > v {
		u, v = v, u
	}
	return goknots.Triangle{u, v, w}
}

// triLink is one side of an adjacency between two triangles of the same template.
type triLink struct {
	To   int32        // index of the adjacent triangle
	Edge goknots.Edge // shared edge (canonic)
	Conn bool         // set if the shared edge is a connection
}

// linkTriangles returns, for each triangle, the triangles it shares an edge with.
func linkTriangles(tris []goknots.Triangle, isConn map[goknots.Edge]bool) [][]triLink {
	byEdge := make(map[goknots.Edge][]int32, 3*len(tris))
	for ti, tri := range tris {
		for _, e := range [3]goknots.Edge{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[0], tri[2]}} {
			byEdge[e] = append(byEdge[e], int32(ti))
		}
	}

	links := make([][]triLink, len(tris))
	for ti, tri := range tris {
		for _, e := range [3]goknots.Edge{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[0], tri[2]}} {
			for _, tj := range byEdge[e] {
				if tj == int32(ti) {
					continue
				}
				links[ti] = append(links[ti], triLink{
					To:   tj,
					Edge: e,
					Conn: isConn[e],
				})
			}
		}
	}
	return links
}
