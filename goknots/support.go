package goknots

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{p.X + dx, p.Y + dy}
}

func (p Point) String() string {
	return "(" + strconv.FormatFloat(p.X, 'g', -1, 64) + ", " + strconv.FormatFloat(p.Y, 'g', -1, 64) + ")"
}

// Canonic returns the edge with A <= B.
func (e Edge) Canonic() Edge {
	if e.A > e.B {
		return Edge{e.B, e.A}
	}
	return e
}

// Has reports if the given point index is an end of this edge.
func (e Edge) Has(pi int32) bool {
	return e.A == pi || e.B == pi
}

// Has reports if the given point index is a corner of this triangle.
func (tri Triangle) Has(pi int32) bool {
	return tri[0] == pi || tri[1] == pi || tri[2] == pi
}

// SharedEdge returns the edge two triangles have in common, if any.
func (tri Triangle) SharedEdge(other Triangle) (Edge, bool) {
	var shared [3]int32
	n := 0
	for _, pi := range tri {
		if other.Has(pi) {
			shared[n] = pi
			n++
		}
	}
	if n != 2 {
		return Edge{}, false
	}
	return Edge{shared[0], shared[1]}, true
}

// Flip returns the opposite color.
func (c Color) Flip() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Land {
		return "land"
	}
	return "water"
}

var directionNames = [NumDirections]string{"left", "right", "top", "bottom"}

func (dir Direction) String() string {
	if int(dir) < NumDirections {
		return directionNames[dir]
	}
	return "Direction(" + strconv.Itoa(int(dir)) + ")"
}

// Opposite returns the side a neighbour in this direction faces back with.
func (dir Direction) Opposite() Direction {
	return [NumDirections]Direction{Right, Left, Bottom, Top}[dir]
}

// ParseDirection converts "left", "right", "top" or "bottom" into a Direction.
func ParseDirection(name string) (Direction, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, dirName := range directionNames {
		if dirName == name {
			return Direction(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownDirection, "%q", name)
}

var topologyNames = [...]string{"plane", "cylinder", "torus"}

func (kind TopologyKind) String() string {
	if int(kind) < len(topologyNames) {
		return topologyNames[kind]
	}
	return "TopologyKind(" + strconv.Itoa(int(kind)) + ")"
}

// ParseTopology converts "plane", "cylinder" or "torus" into a TopologyKind.
func ParseTopology(name string) (TopologyKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, kindName := range topologyNames {
		if kindName == name {
			return TopologyKind(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownTopology, "%q", name)
}

// WrapsX reports if this topology joins the left and right edges of the map.
func (kind TopologyKind) WrapsX() bool {
	return kind == Cylinder || kind == Torus
}

// WrapsY reports if this topology joins the top and bottom edges of the map.
func (kind TopologyKind) WrapsY() bool {
	return kind == Torus
}
