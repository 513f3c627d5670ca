package goknots

const (

	// NumDirections is the number of sides of a square tile.
	NumDirections = 4

	// NoTile is the TileID denoting an absent tile or neighbour.
	NoTile TileID = 0
)

// Point is a pair of coordinates, either local to a tile's [0, size] square or global (map-wide).
// Equality is exact; template coordinates are small rationals in practice.
type Point struct {
	X, Y float64
}

// Edge is an unordered pair of point indices into a template's point list.
type Edge struct {
	A, B int32
}

// Triangle is a sorted triple of point indices whose three pairwise edges exist in a template.
type Triangle [3]int32

// Color is the binary region color of a triangle: water (0) or land (1).
type Color byte

const (
	Water Color = 0
	Land  Color = 1
)

// Direction names one of the four sides of a square tile.
type Direction byte

const (
	Left Direction = iota
	Right
	Top
	Bottom
)

// AllDirections lists the four sides in canonical order.
var AllDirections = [NumDirections]Direction{Left, Right, Top, Bottom}

// TopologyKind selects the wraparound policy of a map.
type TopologyKind byte

const (
	Plane    TopologyKind = 0 // no wraparound
	Cylinder TopologyKind = 1 // left/right wrap
	Torus    TopologyKind = 2 // all four sides wrap
)

// TileID is a one-based index that identifies a tile slot in a map (row-major); 0 denotes none.
type TileID int32

// Topology resolves grid adjacency for an n x m map.
//
// Resolve returns the grid position of the neighbour of (x, y) in the given direction,
// or ok == false if that side of the tile faces the edge of the map.
type Topology interface {
	Kind() TopologyKind
	Resolve(x, y, n, m int, dir Direction) (nx, ny int, ok bool)
}

// TileView is the read-only surface a collaborator (e.g. a renderer) uses to draw a placed tile.
type TileView interface {
	Size() float64
	Points() []Point
	Edges() []Edge
	Connections() []int32
	Triangles() []Triangle
	Colors() []Color

	// GlobalPoint translates a local point into map-wide coordinates.
	GlobalPoint(p Point) Point
}

// CurveCounts is the result of classifying the components of a map's curve graph.
type CurveCounts struct {
	Loops int // closed curves
	Paths int // open curves, each counted once
}

// RegionCounts is the result of classifying the components of a map's triangle graph.
type RegionCounts struct {
	Water int
	Land  int
}

// Total returns the number of regions.
func (rc RegionCounts) Total() int {
	return rc.Water + rc.Land
}
