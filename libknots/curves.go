package libknots

import (
	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// CurveGraph is the global graph of curve segments of a Map.
//
// Vertices are global points; edges are tile connections plus bridges across wrapped boundaries.
// Two segments may join the same pair of points (a curve crossing a one-tile-wide wrapped map closes on itself),
// so segments are tracked by edge index rather than by vertex adjacency.
type CurveGraph struct {
	Vtx   []goknots.Point // vertex index => global point
	Edges [][2]int32      // edge index => its two vertex indices
	Inc   [][]int32       // vertex index => incident edge indices
	idx   map[goknots.Point]int32
}

func newCurveGraph() *CurveGraph {
	return &CurveGraph{
		idx: make(map[goknots.Point]int32),
	}
}

func (g *CurveGraph) vertex(p goknots.Point) int32 {
	vi, exists := g.idx[p]
	if !exists {
		vi = int32(len(g.Vtx))
		g.idx[p] = vi
		g.Vtx = append(g.Vtx, p)
		g.Inc = append(g.Inc, nil)
	}
	return vi
}

func (g *CurveGraph) addEdge(a, b goknots.Point) {
	va, vb := g.vertex(a), g.vertex(b)
	ei := int32(len(g.Edges))
	g.Edges = append(g.Edges, [2]int32{va, vb})
	g.Inc[va] = append(g.Inc[va], ei)
	g.Inc[vb] = append(g.Inc[vb], ei)
}

// Degree returns the number of curve segments meeting at the given vertex.
func (g *CurveGraph) Degree(vi int32) int {
	return len(g.Inc[vi])
}

// MaxDegree returns the largest number of segments meeting at any vertex.
func (g *CurveGraph) MaxDegree() int {
	deg := 0
	for _, inc := range g.Inc {
		deg = max(deg, len(inc))
	}
	return deg
}

// BuildCurveGraph assembles the curve graph of a map whose neighbours are resolved.
func (M *Map) BuildCurveGraph() (*CurveGraph, error) {
	if err := M.checkReady(); err != nil {
		return nil, err
	}

	g := newCurveGraph()

	// Each connection is a curve segment inside its tile.
	for _, t := range M.tiles {
		for _, ci := range t.connections {
			e := t.edges[ci]
			g.addEdge(t.GlobalPointAt(e.A), t.GlobalPointAt(e.B))
		}
	}

	// Bridge curve ends to the corresponding point of the facing boundary when the two don't already coincide,
	// as happens across a wrapped side.  Each glued pair of sides is visited once, from its Right or Top side.
	for _, t := range M.tiles {
		for _, dir := range [...]goknots.Direction{goknots.Right, goknots.Top} {
			nb := M.Neighbour(t, dir)
			if nb == nil {
				continue
			}
			theirs := nb.boundary[dir.Opposite()]
			for k, pi := range t.boundary[dir] {
				pj := theirs[k]
				if !t.endpoint[pi] && !nb.endpoint[pj] {
					continue
				}
				a := t.GlobalPointAt(pi)
				b := nb.GlobalPointAt(pj)
				if a != b {
					g.addEdge(a, b)
				}
			}
		}
	}

	for vi, inc := range g.Inc {
		if len(inc) > 2 {
			return nil, errors.Wrapf(goknots.ErrMalformedTemplate, "%d curve segments meet at %v", len(inc), g.Vtx[vi])
		}
	}
	return g, nil
}

// Classify counts the closed loops and open paths of this graph.
//
// Each open path is walked once from each of its two ends, so the tally of walks is halved.
// Segments left unvisited after that lie on loops.
func (g *CurveGraph) Classify() goknots.CurveCounts {
	visited := make([]bool, len(g.Edges))
	var counts goknots.CurveCounts

	openEnds := 0
	for vi, inc := range g.Inc {
		if len(inc) != 1 {
			continue
		}
		g.walk(int32(vi), inc[0], visited)
		openEnds++
	}

	for ei, visit := range visited {
		if visit {
			continue
		}
		g.walk(g.Edges[ei][0], int32(ei), visited)
		counts.Loops++
	}

	counts.Paths = openEnds / 2
	return counts
}

// walk leaves vertex vi along edge ei and keeps going, never taking the edge it arrived by,
// until it hits an end or an already visited edge.
func (g *CurveGraph) walk(vi, ei int32, visited []bool) {
	for !visited[ei] {
		visited[ei] = true
		if ends := g.Edges[ei]; ends[0] == vi {
			vi = ends[1]
		} else {
			vi = ends[0]
		}
		next := int32(-1)
		for _, ej := range g.Inc[vi] {
			if ej != ei {
				next = ej
				break
			}
		}
		if next < 0 {
			return
		}
		ei = next
	}
}

// CountCurves returns the number of closed loops and open paths formed by the curve segments of all tiles.
func (M *Map) CountCurves() (goknots.CurveCounts, error) {
	g, err := M.BuildCurveGraph()
	if err != nil {
		return goknots.CurveCounts{}, err
	}
	counts := g.Classify()
	klog.V(2).Infof("%v: %d loops, %d open paths (%d curve segments)", M, counts.Loops, counts.Paths, len(g.Edges))
	return counts, nil
}
