package libknots

import (
	"fmt"
	"strings"

	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Map is an n x m grid of tiles glued edge to edge under a Topology.
//
// Build a Map by placing a template in every cell (SetTile or Populate) then call UpdateNeighbours once.
// Analysis (CountCurves, CountRegions) only reads the map, so concurrent analysis of an unchanging Map is safe.
type Map struct {
	n, m     int // columns, rows
	topology goknots.Topology
	tiles    []*Tile // row-major: tiles[y*n + x]
	resolved bool    // set once neighbours are resolved for the current placement
}

// NewMap returns an empty n x m map using the given topology.
func NewMap(n, m int, topology goknots.Topology) (*Map, error) {
	if n <= 0 || m <= 0 {
		return nil, errors.Wrapf(goknots.ErrOutOfBounds, "map size %dx%d", n, m)
	}
	if topology == nil {
		return nil, errors.Wrap(goknots.ErrUnknownTopology, "nil topology")
	}
	return &Map{
		n:        n,
		m:        m,
		topology: topology,
		tiles:    make([]*Tile, n*m),
	}, nil
}

// NewMapOfKind returns an empty n x m map using the standard topology of the given kind.
func NewMapOfKind(n, m int, kind goknots.TopologyKind) (*Map, error) {
	topo, err := TopologyOf(kind)
	if err != nil {
		return nil, err
	}
	return NewMap(n, m, topo)
}

// Dims returns the number of columns and rows.
func (M *Map) Dims() (n, m int) {
	return M.n, M.m
}

func (M *Map) Topology() goknots.Topology {
	return M.topology
}

func (M *Map) String() string {
	return fmt.Sprintf("Map %dx%d %v", M.n, M.m, M.topology.Kind())
}

// SetTile places a new Tile of the given template at (x, y), replacing any tile already there.
// Neighbours must be resolved again (UpdateNeighbours) before analysis.
func (M *Map) SetTile(T *Template, x, y int) (*Tile, error) {
	if T == nil {
		return nil, goknots.ErrNilTemplate
	}
	if x < 0 || x >= M.n || y < 0 || y >= M.m {
		return nil, errors.Wrapf(goknots.ErrOutOfBounds, "(%d, %d) in %dx%d map", x, y, M.n, M.m)
	}
	idx := y*M.n + x
	t := &Tile{
		Template: T,
		ID:       goknots.TileID(idx + 1),
		X:        x,
		Y:        y,
	}
	M.tiles[idx] = t
	M.resolved = false
	return t, nil
}

// Tile returns the tile at (x, y), or nil if the position is empty or out of bounds.
func (M *Map) Tile(x, y int) *Tile {
	if x < 0 || x >= M.n || y < 0 || y >= M.m {
		return nil
	}
	return M.tiles[y*M.n+x]
}

// TileByID returns the tile having the given TileID, or nil.
func (M *Map) TileByID(id goknots.TileID) *Tile {
	if id <= goknots.NoTile || int(id) > len(M.tiles) {
		return nil
	}
	return M.tiles[id-1]
}

// Neighbour returns the neighbour of t on the given side, or nil.
func (M *Map) Neighbour(t *Tile, dir goknots.Direction) *Tile {
	return M.TileByID(t.Neighbour(dir))
}

// Tiles returns all tile slots in row-major order.
func (M *Map) Tiles() []*Tile {
	return M.tiles
}

// IsComplete reports if every cell holds a tile.
func (M *Map) IsComplete() bool {
	for _, t := range M.tiles {
		if t == nil {
			return false
		}
	}
	return true
}

// IsResolved reports if neighbours have been resolved since the last placement.
func (M *Map) IsResolved() bool {
	return M.resolved
}

// UpdateNeighbours wires every tile's four neighbour slots per the map's Topology and checks that facing boundaries
// of neighbouring tiles pair up point for point.  Re-running it yields the same wiring.
func (M *Map) UpdateNeighbours() error {
	if !M.IsComplete() {
		return errors.Wrap(goknots.ErrIncompleteMap, "every cell must hold a tile before neighbours are resolved")
	}

	for _, t := range M.tiles {
		for _, dir := range goknots.AllDirections {
			id := goknots.NoTile
			if nx, ny, ok := M.topology.Resolve(t.X, t.Y, M.n, M.m, dir); ok {
				id = M.tiles[ny*M.n+nx].ID
			}
			t.SetNeighbour(dir, id)
		}
	}

	for _, t := range M.tiles {
		for _, dir := range goknots.AllDirections {
			nb := M.Neighbour(t, dir)
			if nb == nil {
				continue
			}
			if err := t.Congruent(dir, nb.Template); err != nil {
				return errors.Wrapf(err, "%v and its %s neighbour", t, dir)
			}
		}
	}

	M.resolved = true
	klog.V(2).Infof("%v: neighbours resolved", M)
	return nil
}

func (M *Map) checkReady() error {
	if !M.IsComplete() {
		return errors.Wrap(goknots.ErrIncompleteMap, "map has empty cells")
	}
	if !M.resolved {
		return errors.Wrap(goknots.ErrIncompleteMap, "neighbours not resolved")
	}
	return nil
}

// LayoutKey returns a key identifying this map's dimensions, topology, and the template placed in each cell.
func (M *Map) LayoutKey() []byte {
	b := strings.Builder{}
	b.Grow(16 + 8*len(M.tiles))
	fmt.Fprintf(&b, "%d,%d,%d:", M.n, M.m, M.topology.Kind())
	for i, t := range M.tiles {
		if i > 0 {
			b.WriteByte(',')
		}
		if t != nil {
			b.WriteString(t.Name)
		}
	}
	return []byte(b.String())
}
