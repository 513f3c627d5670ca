package libknots_test

import (
	"testing"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// layoutOf places Arcs for each '1' and Caps for each '2' of cells, listed row by row from the bottom row.
func layoutOf(t *testing.T, cells string, n, m int, kind goknots.TopologyKind) *libknots.Map {
	t.Helper()
	if len(cells) != n*m {
		t.Fatalf("layout %q is not %dx%d", cells, n, m)
	}
	M, err := libknots.NewMapOfKind(n, m, kind)
	if err != nil {
		t.Fatal(err)
	}
	layout := make([][]int, m)
	for y := range layout {
		layout[y] = make([]int, n)
		for x := range layout[y] {
			layout[y][x] = int(cells[y*n+x] - '1')
		}
	}
	if err := libknots.Layout(M, libknots.StandardTemplates(), layout); err != nil {
		t.Fatalf("layout %q: %v", cells, err)
	}
	return M
}

func fill(t *testing.T, T *libknots.Template, n, m int, kind goknots.TopologyKind) *libknots.Map {
	t.Helper()
	M, err := libknots.NewMapOfKind(n, m, kind)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < m; y++ {
		for x := 0; x < n; x++ {
			if _, err := M.SetTile(T, x, y); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := M.UpdateNeighbours(); err != nil {
		t.Fatalf("UpdateNeighbours: %v", err)
	}
	return M
}

func TestTopologyResolve(t *testing.T) {
	type hop struct {
		kind   goknots.TopologyKind
		x, y   int
		dir    goknots.Direction
		nx, ny int
		ok     bool
	}
	hops := []hop{
		{goknots.Plane, 0, 0, goknots.Left, 0, 0, false},
		{goknots.Plane, 0, 0, goknots.Right, 1, 0, true},
		{goknots.Plane, 0, 0, goknots.Top, 0, 1, true},
		{goknots.Plane, 2, 1, goknots.Top, 0, 0, false},
		{goknots.Cylinder, 0, 0, goknots.Left, 2, 0, true},
		{goknots.Cylinder, 2, 1, goknots.Right, 0, 1, true},
		{goknots.Cylinder, 1, 0, goknots.Bottom, 0, 0, false},
		{goknots.Torus, 1, 0, goknots.Bottom, 1, 1, true},
		{goknots.Torus, 1, 1, goknots.Top, 1, 0, true},
		{goknots.Torus, 0, 1, goknots.Left, 2, 1, true},
	}
	for _, h := range hops {
		topo, err := libknots.TopologyOf(h.kind)
		if err != nil {
			t.Fatal(err)
		}
		nx, ny, ok := topo.Resolve(h.x, h.y, 3, 2, h.dir)
		if ok != h.ok || (ok && (nx != h.nx || ny != h.ny)) {
			t.Fatalf("%v (%d, %d) %v: got (%d, %d, %v)", h.kind, h.x, h.y, h.dir, nx, ny, ok)
		}
	}

	if _, err := libknots.TopologyOf(goknots.TopologyKind(7)); !errors.Is(err, goknots.ErrUnknownTopology) {
		t.Fatalf("expected ErrUnknownTopology, got %v", err)
	}
}

func TestNeighbourCounts(t *testing.T) {
	counts := func(M *libknots.Map) []int {
		var out []int
		for _, tile := range M.Tiles() {
			out = append(out, tile.NumNeighbours())
		}
		return out
	}

	plane := fill(t, libknots.Arcs, 3, 3, goknots.Plane)
	if diff := cmp.Diff([]int{2, 3, 2, 3, 4, 3, 2, 3, 2}, counts(plane)); diff != "" {
		t.Fatalf("plane neighbours (-want +got):\n%s", diff)
	}

	cyl := fill(t, libknots.Arcs, 3, 3, goknots.Cylinder)
	if diff := cmp.Diff([]int{3, 3, 3, 4, 4, 4, 3, 3, 3}, counts(cyl)); diff != "" {
		t.Fatalf("cylinder neighbours (-want +got):\n%s", diff)
	}

	for _, dims := range [][2]int{{1, 1}, {1, 3}, {3, 3}, {4, 2}} {
		torus := fill(t, libknots.Caps, dims[0], dims[1], goknots.Torus)
		for _, tile := range torus.Tiles() {
			if tile.NumNeighbours() != 4 {
				t.Fatalf("%v: %v has %d neighbours", torus, tile, tile.NumNeighbours())
			}
		}
	}

	// A 1x1 torus is its own neighbour on every side.
	one := fill(t, libknots.Arcs, 1, 1, goknots.Torus)
	self := one.Tile(0, 0)
	for _, dir := range goknots.AllDirections {
		if one.Neighbour(self, dir) != self {
			t.Fatalf("1x1 torus: %s neighbour is not itself", dir)
		}
	}
}

func TestNeighbourSymmetry(t *testing.T) {
	for _, kind := range []goknots.TopologyKind{goknots.Plane, goknots.Cylinder, goknots.Torus} {
		M := layoutOf(t, "121221", 3, 2, kind)
		for _, tile := range M.Tiles() {
			for _, dir := range goknots.AllDirections {
				nb := M.Neighbour(tile, dir)
				if nb == nil {
					continue
				}
				if back := M.Neighbour(nb, dir.Opposite()); back != tile {
					t.Fatalf("%v: %v's %s neighbour %v points back to %v", M, tile, dir, nb, back)
				}
			}
		}
	}
}

func TestUpdateNeighboursIdempotent(t *testing.T) {
	M := layoutOf(t, "12211221", 4, 2, goknots.Torus)
	wiring := func() [][goknots.NumDirections]goknots.TileID {
		var out [][goknots.NumDirections]goknots.TileID
		for _, tile := range M.Tiles() {
			var ids [goknots.NumDirections]goknots.TileID
			for _, dir := range goknots.AllDirections {
				ids[dir] = tile.Neighbour(dir)
			}
			out = append(out, ids)
		}
		return out
	}

	before := wiring()
	if err := M.UpdateNeighbours(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, wiring()); diff != "" {
		t.Fatalf("re-resolve changed wiring (-before +after):\n%s", diff)
	}
}

func TestIncompleteMap(t *testing.T) {
	M, err := libknots.NewMapOfKind(2, 2, goknots.Plane)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = M.SetTile(libknots.Arcs, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err = M.UpdateNeighbours(); !errors.Is(err, goknots.ErrIncompleteMap) {
		t.Fatalf("expected ErrIncompleteMap, got %v", err)
	}
	if _, err = M.CountCurves(); !errors.Is(err, goknots.ErrIncompleteMap) {
		t.Fatalf("expected ErrIncompleteMap, got %v", err)
	}

	for _, pos := range [][2]int{{1, 0}, {0, 1}, {1, 1}} {
		if _, err = M.SetTile(libknots.Caps, pos[0], pos[1]); err != nil {
			t.Fatal(err)
		}
	}
	if _, err = M.CountRegions(); !errors.Is(err, goknots.ErrIncompleteMap) {
		t.Fatalf("unresolved map: expected ErrIncompleteMap, got %v", err)
	}
	if err = M.UpdateNeighbours(); err != nil {
		t.Fatal(err)
	}
	if _, err = M.CountRegions(); err != nil {
		t.Fatal(err)
	}

	// Replacing a tile requires neighbours to be resolved again.
	if _, err = M.SetTile(libknots.Arcs, 1, 1); err != nil {
		t.Fatal(err)
	}
	if M.IsResolved() {
		t.Fatal("map still resolved after SetTile")
	}
}

func TestMapBounds(t *testing.T) {
	if _, err := libknots.NewMapOfKind(0, 3, goknots.Plane); !errors.Is(err, goknots.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	M, err := libknots.NewMapOfKind(2, 3, goknots.Cylinder)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = M.SetTile(libknots.Arcs, 2, 0); !errors.Is(err, goknots.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err = M.SetTile(nil, 0, 0); !errors.Is(err, goknots.ErrNilTemplate) {
		t.Fatalf("expected ErrNilTemplate, got %v", err)
	}
	if M.Tile(-1, 0) != nil || M.TileByID(goknots.NoTile) != nil {
		t.Fatal("lookup out of bounds returned a tile")
	}

	tile, err := M.SetTile(libknots.Caps, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if tile.ID != 6 || M.TileByID(6) != tile || tile.String() != "Tile at (1, 2)" {
		t.Fatalf("tile %v has ID %d", tile, tile.ID)
	}
	if got := tile.GlobalPoint(goknots.Point{X: 1.5, Y: 0.5}); got != (goknots.Point{X: 4.5, Y: 6.5}) {
		t.Fatalf("GlobalPoint: %v", got)
	}
}

func TestIncongruentBoundary(t *testing.T) {
	// A unit square can't sit next to a side-3 tile.
	M, err := libknots.NewMapOfKind(2, 1, goknots.Plane)
	if err != nil {
		t.Fatal(err)
	}
	M.SetTile(libknots.Arcs, 0, 0)
	M.SetTile(mustParse(t, squareExpr), 1, 0)
	if err = M.UpdateNeighbours(); !errors.Is(err, goknots.ErrIncongruentBoundary) {
		t.Fatalf("expected ErrIncongruentBoundary, got %v", err)
	}
	if !errors.Is(err, goknots.ErrMalformedTemplate) {
		t.Fatalf("incongruent boundary is not a malformed template: %v", err)
	}

	// Same side length but the ring has no points part way along its sides.
	M.SetTile(mustParse(t, ringExpr), 1, 0)
	if err = M.UpdateNeighbours(); !errors.Is(err, goknots.ErrIncongruentBoundary) {
		t.Fatalf("expected ErrIncongruentBoundary, got %v", err)
	}
	if !errors.Is(err, goknots.ErrMalformedTemplate) || errors.Is(err, goknots.ErrIncompleteMap) {
		t.Fatalf("ring beside arcs: %v", err)
	}

	// Stacked vertically, only top and bottom sides face each other.
	M, _ = libknots.NewMapOfKind(1, 2, goknots.Plane)
	M.SetTile(libknots.Arcs, 0, 0)
	M.SetTile(libknots.Caps, 0, 1)
	if err = M.UpdateNeighbours(); err != nil {
		t.Fatal(err)
	}
}

func TestLayoutKey(t *testing.T) {
	M := layoutOf(t, "1221", 2, 2, goknots.Cylinder)
	if got, want := string(M.LayoutKey()), "2,2,1:arcs,caps,caps,arcs"; got != want {
		t.Fatalf("LayoutKey %q, want %q", got, want)
	}
	if got := M.String(); got != "Map 2x2 cylinder" {
		t.Fatalf("String %q", got)
	}
}
