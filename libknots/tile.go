package libknots

import (
	"fmt"

	"github.com/2x3systems/goknots/goknots"
)

// Tile is a Template placed at grid position (X, Y) of a Map.
//
// Neighbours are held as TileIDs into the owning Map (never as pointers), assigned by Map.UpdateNeighbours.
type Tile struct {
	*Template

	ID   goknots.TileID // one-based slot index in the owning Map
	X, Y int

	neighbours [goknots.NumDirections]goknots.TileID
}

func (t *Tile) String() string {
	return fmt.Sprintf("Tile at (%d, %d)", t.X, t.Y)
}

// SetNeighbour assigns the neighbour on the given side (goknots.NoTile for none).
// No geometric validation is done here; see Map.UpdateNeighbours.
func (t *Tile) SetNeighbour(dir goknots.Direction, id goknots.TileID) {
	t.neighbours[dir] = id
}

// Neighbour returns the TileID of the neighbour on the given side, or goknots.NoTile.
func (t *Tile) Neighbour(dir goknots.Direction) goknots.TileID {
	return t.neighbours[dir]
}

// NumNeighbours returns how many sides of this tile have a neighbour.
func (t *Tile) NumNeighbours() int {
	count := 0
	for _, id := range t.neighbours {
		if id != goknots.NoTile {
			count++
		}
	}
	return count
}

// GlobalPoint translates a point local to this tile into map-wide coordinates.
func (t *Tile) GlobalPoint(p goknots.Point) goknots.Point {
	return p.Add(float64(t.X)*t.size, float64(t.Y)*t.size)
}

// GlobalPointAt returns the map-wide coordinates of the given template point.
func (t *Tile) GlobalPointAt(pi int32) goknots.Point {
	return t.GlobalPoint(t.points[pi])
}
