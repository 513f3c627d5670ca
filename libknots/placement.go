package libknots

import (
	"math/rand"

	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
)

// Populate places a template drawn from rng in every cell (rows outer, columns inner) then resolves neighbours.
// The same rng seed and template list always yield the same layout.
func Populate(M *Map, templates []*Template, rng *rand.Rand) error {
	if len(templates) == 0 {
		return errors.Wrap(goknots.ErrNilTemplate, "no templates to place")
	}
	for y := 0; y < M.m; y++ {
		for x := 0; x < M.n; x++ {
			T := templates[rng.Intn(len(templates))]
			if _, err := M.SetTile(T, x, y); err != nil {
				return err
			}
		}
	}
	return M.UpdateNeighbours()
}

// Layout places templates[layout[y][x]] at each (x, y) then resolves neighbours.
// Row 0 of layout is the bottom row of the map.
func Layout(M *Map, templates []*Template, layout [][]int) error {
	if len(layout) != M.m {
		return errors.Wrapf(goknots.ErrOutOfBounds, "layout has %d rows, map has %d", len(layout), M.m)
	}
	for y, row := range layout {
		if len(row) != M.n {
			return errors.Wrapf(goknots.ErrOutOfBounds, "layout row %d has %d cells, map has %d columns", y, len(row), M.n)
		}
		for x, ti := range row {
			if ti < 0 || ti >= len(templates) {
				return errors.Wrapf(goknots.ErrNilTemplate, "layout (%d, %d) names template %d of %d", x, y, ti, len(templates))
			}
			if _, err := M.SetTile(templates[ti], x, y); err != nil {
				return err
			}
		}
	}
	return M.UpdateNeighbours()
}
