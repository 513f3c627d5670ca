package libknots

import (
	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
)

const uncolored = goknots.Color(0xFF)

// colorTriangles assigns each triangle a color via a breadth-first flood from the seed triangle (colored Water).
// Crossing a connection edge flips the color; crossing a plain edge keeps it.
//
// A triangle that can't be reached from the seed, or that is reached with two different colors, leaves the coloring
// ill-defined and is reported as ErrMalformedTemplate.
func colorTriangles(links [][]triLink, seed int32) ([]goknots.Color, error) {
	colors := make([]goknots.Color, len(links))
	for i := range colors {
		colors[i] = uncolored
	}

	colors[seed] = goknots.Water
	queue := make([]int32, 0, len(links))
	queue = append(queue, seed)

	for len(queue) > 0 {
		ti := queue[0]
		queue = queue[1:]

		for _, link := range links[ti] {
			c := colors[ti]
			if link.Conn {
				c = c.Flip()
			}
			switch colors[link.To] {
			case uncolored:
				colors[link.To] = c
				queue = append(queue, link.To)
			case c:
			default:
				return nil, errors.Wrapf(goknots.ErrMalformedTemplate, "triangles %d and %d have conflicting colors across edge %d-%d", ti, link.To, link.Edge.A, link.Edge.B)
			}
		}
	}

	for ti, c := range colors {
		if c == uncolored {
			return nil, errors.Wrapf(goknots.ErrMalformedTemplate, "triangle %d is not reachable from the seed triangle", ti)
		}
	}
	return colors, nil
}

// seedTriangle returns the first triangle having the point (0,0) as a corner.
func seedTriangle(points []goknots.Point, tris []goknots.Triangle) (int32, error) {
	origin := int32(-1)
	for pi, p := range points {
		if p.X == 0 && p.Y == 0 {
			origin = int32(pi)
			break
		}
	}
	if origin < 0 {
		return -1, errors.Wrap(goknots.ErrMalformedTemplate, "no point at (0,0)")
	}
	for ti, tri := range tris {
		if tri.Has(origin) {
			return int32(ti), nil
		}
	}
	return -1, errors.Wrap(goknots.ErrMalformedTemplate, "no triangle contains (0,0)")
}
