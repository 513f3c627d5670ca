package libknots

import (
	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
)

// wrapTopology resolves neighbours on a grid whose sides wrap according to its kind:
// a plane wraps nothing, a cylinder wraps left/right, and a torus wraps all four sides.
type wrapTopology goknots.TopologyKind

// TopologyOf returns the Topology for the given kind.
func TopologyOf(kind goknots.TopologyKind) (goknots.Topology, error) {
	switch kind {
	case goknots.Plane, goknots.Cylinder, goknots.Torus:
		return wrapTopology(kind), nil
	}
	return nil, errors.Wrapf(goknots.ErrUnknownTopology, "%v", kind)
}

func (topo wrapTopology) Kind() goknots.TopologyKind {
	return goknots.TopologyKind(topo)
}

func (topo wrapTopology) Resolve(x, y, n, m int, dir goknots.Direction) (nx, ny int, ok bool) {
	kind := topo.Kind()
	nx, ny = x, y

	switch dir {
	case goknots.Left:
		nx, ok = step(x-1, n, kind.WrapsX())
	case goknots.Right:
		nx, ok = step(x+1, n, kind.WrapsX())
	case goknots.Bottom:
		ny, ok = step(y-1, m, kind.WrapsY())
	case goknots.Top:
		ny, ok = step(y+1, m, kind.WrapsY())
	}
	return nx, ny, ok
}

// step returns i if it lies in [0, n), else its wrapped value if wrap is set.
func step(i, n int, wrap bool) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	if !wrap || n <= 0 {
		return 0, false
	}
	return ((i % n) + n) % n, true
}
