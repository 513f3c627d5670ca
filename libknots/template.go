package libknots

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
)

// Template is the immutable geometric definition of one tile type, shared read-only by every Tile placed from it.
type Template struct {
	Name string

	points      []goknots.Point
	edges       []goknots.Edge
	connections []int32
	size        float64

	isConn    map[goknots.Edge]bool // canonic edge => is a connection
	endpoint  []bool                // per point: is an end of some connection
	triangles []goknots.Triangle
	links     [][]triLink
	colors    []goknots.Color

	// boundary[dir] lists the point indices lying on that side, sorted along it.
	boundary [goknots.NumDirections][]int32

	// sideTris[dir][k] is the triangle holding the boundary segment boundary[dir][k] - boundary[dir][k+1] (or -1).
	sideTris [goknots.NumDirections][]int32
}

// NewTemplate validates the given geometry and derives its triangles, coloring, and boundaries.
//
// Edges are pairs of indices into points and connections are indices into edges.
// The tile side length is the largest x coordinate; the template must be square.
func NewTemplate(name string, points []goknots.Point, edges []goknots.Edge, connections []int32) (*Template, error) {
	T := &Template{
		Name:        name,
		points:      append([]goknots.Point(nil), points...),
		edges:       make([]goknots.Edge, len(edges)),
		connections: append([]int32(nil), connections...),
	}
	if err := T.init(edges); err != nil {
		return nil, errors.Wrapf(err, "template %q", name)
	}
	return T, nil
}

// MustNewTemplate is NewTemplate for static data known to be well-formed.
func MustNewTemplate(name string, points []goknots.Point, edges []goknots.Edge, connections []int32) *Template {
	T, err := NewTemplate(name, points, edges, connections)
	if err != nil {
		panic(err)
	}
	return T
}

func (T *Template) init(edges []goknots.Edge) error {
	Np := int32(len(T.points))
	if Np == 0 {
		return errors.Wrap(goknots.ErrMalformedTemplate, "no points")
	}

	for ei, e := range edges {
		if e.A < 0 || e.A >= Np || e.B < 0 || e.B >= Np || e.A == e.B {
			return errors.Wrapf(goknots.ErrMalformedTemplate, "edge %d (%d-%d) is not a pair of distinct point indices", ei, e.A, e.B)
		}
		T.edges[ei] = e
	}

	T.isConn = make(map[goknots.Edge]bool, len(T.connections))
	T.endpoint = make([]bool, Np)
	conns := T.connections[:0]
	for _, ci := range T.connections {
		if ci < 0 || int(ci) >= len(T.edges) {
			return errors.Wrapf(goknots.ErrMalformedTemplate, "connection %d is not an edge index", ci)
		}
		e := T.edges[ci]
		if T.isConn[e.Canonic()] {
			continue
		}
		conns = append(conns, ci)
		T.isConn[e.Canonic()] = true
		T.endpoint[e.A] = true
		T.endpoint[e.B] = true
	}
	T.connections = conns

	maxY := 0.0
	for _, p := range T.points {
		T.size = max(T.size, p.X)
		maxY = max(maxY, p.Y)
	}
	if T.size <= 0 || maxY != T.size {
		return errors.Wrapf(goknots.ErrMalformedTemplate, "not a square (max x %v, max y %v)", T.size, maxY)
	}
	for pi, p := range T.points {
		if p.X < 0 || p.Y < 0 || p.Y > T.size {
			return errors.Wrapf(goknots.ErrMalformedTemplate, "point %d %v lies outside the tile", pi, p)
		}
	}

	T.initBoundary()

	T.triangles = Triangulate(int(Np), T.edges)
	T.links = linkTriangles(T.triangles, T.isConn)

	seed, err := seedTriangle(T.points, T.triangles)
	if err != nil {
		return err
	}
	T.colors, err = colorTriangles(T.links, seed)
	if err != nil {
		return err
	}

	T.initSideTriangles()
	return nil
}

func (T *Template) initBoundary() {
	for pi, p := range T.points {
		if p.X == 0 {
			T.boundary[goknots.Left] = append(T.boundary[goknots.Left], int32(pi))
		}
		if p.X == T.size {
			T.boundary[goknots.Right] = append(T.boundary[goknots.Right], int32(pi))
		}
		if p.Y == T.size {
			T.boundary[goknots.Top] = append(T.boundary[goknots.Top], int32(pi))
		}
		if p.Y == 0 {
			T.boundary[goknots.Bottom] = append(T.boundary[goknots.Bottom], int32(pi))
		}
	}

	// Sort each side along its free coordinate so facing sides of two tiles pair up by position.
	for _, dir := range goknots.AllDirections {
		side := T.boundary[dir]
		sort.SliceStable(side, func(i, j int) bool {
			return freeCoord(T.points[side[i]], dir) < freeCoord(T.points[side[j]], dir)
		})
	}
}

func (T *Template) initSideTriangles() {
	for _, dir := range goknots.AllDirections {
		side := T.boundary[dir]
		if len(side) < 2 {
			continue
		}
		tris := make([]int32, len(side)-1)
		for k := range tris {
			tris[k] = -1
			for ti, tri := range T.triangles {
				if tri.Has(side[k]) && tri.Has(side[k+1]) {
					tris[k] = int32(ti)
					break
				}
			}
		}
		T.sideTris[dir] = tris
	}
}

// freeCoord returns the coordinate of p that varies along the given side.
func freeCoord(p goknots.Point, dir goknots.Direction) float64 {
	if dir == goknots.Left || dir == goknots.Right {
		return p.Y
	}
	return p.X
}

// Size returns the side length of this template's square.
func (T *Template) Size() float64 { return T.size }

func (T *Template) Points() []goknots.Point       { return T.points }
func (T *Template) Edges() []goknots.Edge         { return T.edges }
func (T *Template) Connections() []int32          { return T.connections }
func (T *Template) Triangles() []goknots.Triangle { return T.triangles }

// Colors returns the color of each triangle, index-aligned with Triangles().
func (T *Template) Colors() []goknots.Color { return T.colors }

// Boundary returns the point indices on the given side, sorted along it.
func (T *Template) Boundary(dir goknots.Direction) []int32 {
	return T.boundary[dir]
}

// IsConnection reports if the edge joining points a and b is a connection.
func (T *Template) IsConnection(a, b int32) bool {
	return T.isConn[goknots.Edge{a, b}.Canonic()]
}

// IsEndpoint reports if the given point is an end of some connection.
func (T *Template) IsEndpoint(pi int32) bool {
	return T.endpoint[pi]
}

// TriangleColor returns the color of the given triangle.
func (T *Template) TriangleColor(ti int32) goknots.Color {
	return T.colors[ti]
}

// Congruent checks that the given side of T pairs up, position by position, with the facing side of other.
func (T *Template) Congruent(dir goknots.Direction, other *Template) error {
	mine := T.boundary[dir]
	theirs := other.boundary[dir.Opposite()]
	if T.size != other.size {
		return errors.Wrapf(goknots.ErrIncongruentBoundary, "%s side of %q (size %v) faces %q (size %v)", dir, T.Name, T.size, other.Name, other.size)
	}
	if len(mine) != len(theirs) {
		return errors.Wrapf(goknots.ErrIncongruentBoundary, "%s side of %q has %d points, facing side of %q has %d", dir, T.Name, len(mine), other.Name, len(theirs))
	}
	for k := range mine {
		a := freeCoord(T.points[mine[k]], dir)
		b := freeCoord(other.points[theirs[k]], dir)
		if a != b {
			return errors.Wrapf(goknots.ErrIncongruentBoundary, "%s side of %q point #%d at %v faces %v on %q", dir, T.Name, k, a, b, other.Name)
		}
	}
	return nil
}

func (T *Template) String() string {
	b := strings.Builder{}
	b.Grow(256)
	T.WriteAsExpr(&b)
	return b.String()
}

// WriteAsExpr writes this template in the tile template grammar (see ParseTemplates).
func (T *Template) WriteAsExpr(out io.Writer) {
	name := T.Name
	if name == "" {
		name = "anon"
	}
	fmt.Fprintf(out, "tile %s {\n\tpoints:", name)
	for _, p := range T.points {
		fmt.Fprintf(out, " (%s, %s)", formatCoord(p.X), formatCoord(p.Y))
	}
	io.WriteString(out, ";\n\tedges:")
	for _, e := range T.edges {
		fmt.Fprintf(out, " %d-%d", e.A, e.B)
	}
	io.WriteString(out, ";\n")
	if len(T.connections) > 0 {
		io.WriteString(out, "\tconnections:")
		for _, ci := range T.connections {
			fmt.Fprintf(out, " %d", ci)
		}
		io.WriteString(out, ";\n")
	}
	io.WriteString(out, "}\n")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
