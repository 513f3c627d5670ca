package libknots_test

import (
	"math/rand"
	"testing"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots"
	"github.com/pkg/errors"
)

type analysisCase struct {
	cells   string
	n, m    int
	curves  goknots.CurveCounts
	regions goknots.RegionCounts
}

var analysisCases = map[goknots.TopologyKind][]analysisCase{
	goknots.Plane: {
		{"1", 1, 1, goknots.CurveCounts{0, 4}, goknots.RegionCounts{4, 1}},
		{"2", 1, 1, goknots.CurveCounts{0, 4}, goknots.RegionCounts{2, 3}},
		{"11", 2, 1, goknots.CurveCounts{0, 6}, goknots.RegionCounts{6, 1}},
		{"12", 2, 1, goknots.CurveCounts{0, 6}, goknots.RegionCounts{4, 3}},
		{"122", 3, 1, goknots.CurveCounts{0, 8}, goknots.RegionCounts{4, 5}},
		{"1111", 2, 2, goknots.CurveCounts{1, 8}, goknots.RegionCounts{9, 1}},
		{"2222", 2, 2, goknots.CurveCounts{2, 8}, goknots.RegionCounts{3, 8}},
		{"1221", 2, 2, goknots.CurveCounts{0, 8}, goknots.RegionCounts{5, 4}},
		{"121212", 3, 2, goknots.CurveCounts{0, 10}, goknots.RegionCounts{6, 5}},
		{"11111111111111", 7, 2, goknots.CurveCounts{6, 18}, goknots.RegionCounts{24, 1}},
		{"12211221122112", 7, 2, goknots.CurveCounts{3, 18}, goknots.RegionCounts{12, 10}},
	},
	goknots.Cylinder: {
		{"1", 1, 1, goknots.CurveCounts{0, 2}, goknots.RegionCounts{2, 1}},
		{"2", 1, 1, goknots.CurveCounts{2, 2}, goknots.RegionCounts{2, 3}},
		{"11", 2, 1, goknots.CurveCounts{0, 4}, goknots.RegionCounts{4, 1}},
		{"12", 2, 1, goknots.CurveCounts{0, 4}, goknots.RegionCounts{2, 3}},
		{"122", 3, 1, goknots.CurveCounts{0, 6}, goknots.RegionCounts{2, 5}},
		{"11", 1, 2, goknots.CurveCounts{1, 2}, goknots.RegionCounts{3, 1}},
		{"22", 1, 2, goknots.CurveCounts{5, 2}, goknots.RegionCounts{3, 5}},
		{"1111", 2, 2, goknots.CurveCounts{2, 4}, goknots.RegionCounts{6, 1}},
		{"2222", 2, 2, goknots.CurveCounts{6, 4}, goknots.RegionCounts{3, 8}},
		{"1221", 2, 2, goknots.CurveCounts{2, 4}, goknots.RegionCounts{3, 4}},
		{"121212", 3, 2, goknots.CurveCounts{2, 6}, goknots.RegionCounts{4, 5}},
		{"11111111111111", 7, 2, goknots.CurveCounts{7, 14}, goknots.RegionCounts{21, 1}},
		{"12211221122112", 7, 2, goknots.CurveCounts{4, 14}, goknots.RegionCounts{9, 10}},
	},
	goknots.Torus: {
		{"1", 1, 1, goknots.CurveCounts{1, 0}, goknots.RegionCounts{1, 1}},
		{"2", 1, 1, goknots.CurveCounts{3, 0}, goknots.RegionCounts{1, 2}},
		{"11", 2, 1, goknots.CurveCounts{2, 0}, goknots.RegionCounts{2, 1}},
		{"12", 2, 1, goknots.CurveCounts{2, 0}, goknots.RegionCounts{1, 2}},
		{"122", 3, 1, goknots.CurveCounts{3, 0}, goknots.RegionCounts{1, 3}},
		{"11", 1, 2, goknots.CurveCounts{2, 0}, goknots.RegionCounts{2, 1}},
		{"22", 1, 2, goknots.CurveCounts{6, 0}, goknots.RegionCounts{2, 4}},
		{"1111", 2, 2, goknots.CurveCounts{4, 0}, goknots.RegionCounts{4, 1}},
		{"2222", 2, 2, goknots.CurveCounts{8, 0}, goknots.RegionCounts{2, 6}},
		{"1221", 2, 2, goknots.CurveCounts{4, 0}, goknots.RegionCounts{2, 2}},
		{"121212", 3, 2, goknots.CurveCounts{4, 0}, goknots.RegionCounts{2, 2}},
		{"11111111111111", 7, 2, goknots.CurveCounts{14, 0}, goknots.RegionCounts{14, 1}},
		{"12211221122112", 7, 2, goknots.CurveCounts{8, 0}, goknots.RegionCounts{4, 5}},
	},
}

func TestStandardLayouts(t *testing.T) {
	for kind, cases := range analysisCases {
		for _, tc := range cases {
			M := layoutOf(t, tc.cells, tc.n, tc.m, kind)

			curves, err := M.CountCurves()
			if err != nil {
				t.Fatalf("%v %q: CountCurves: %v", M, tc.cells, err)
			}
			if curves != tc.curves {
				t.Errorf("%v %q: curves %+v, want %+v", M, tc.cells, curves, tc.curves)
			}

			regions, err := M.CountRegions()
			if err != nil {
				t.Fatalf("%v %q: CountRegions: %v", M, tc.cells, err)
			}
			if regions != tc.regions {
				t.Errorf("%v %q: regions %+v, want %+v", M, tc.cells, regions, tc.regions)
			}
		}
	}
}

func TestPlainSquare(t *testing.T) {
	M := fill(t, mustParse(t, squareExpr), 1, 1, goknots.Plane)
	curves, err := M.CountCurves()
	if err != nil || curves != (goknots.CurveCounts{}) {
		t.Fatalf("curves %+v, %v", curves, err)
	}
	regions, err := M.CountRegions()
	if err != nil || regions != (goknots.RegionCounts{Water: 1}) {
		t.Fatalf("regions %+v, %v", regions, err)
	}
}

func TestDiagonalCurve(t *testing.T) {
	sash := mustParse(t, sashExpr)

	M := fill(t, sash, 1, 1, goknots.Plane)
	curves, err := M.CountCurves()
	if err != nil || curves != (goknots.CurveCounts{Loops: 0, Paths: 1}) {
		t.Fatalf("curves %+v, %v", curves, err)
	}
	regions, err := M.CountRegions()
	if err != nil || regions != (goknots.RegionCounts{Water: 1, Land: 1}) {
		t.Fatalf("regions %+v, %v", regions, err)
	}

	// Wrapped onto itself, three segments meet at each corner.
	M = fill(t, sash, 1, 1, goknots.Torus)
	if _, err = M.CountCurves(); !errors.Is(err, goknots.ErrMalformedTemplate) {
		t.Fatalf("expected ErrMalformedTemplate, got %v", err)
	}
}

func TestInteriorLoops(t *testing.T) {
	ring := mustParse(t, ringExpr)
	for _, kind := range []goknots.TopologyKind{goknots.Plane, goknots.Cylinder, goknots.Torus} {
		M := fill(t, ring, 2, 2, kind)
		curves, err := M.CountCurves()
		if err != nil || curves != (goknots.CurveCounts{Loops: 4}) {
			t.Fatalf("%v: curves %+v, %v", M, curves, err)
		}
		regions, err := M.CountRegions()
		if err != nil || regions != (goknots.RegionCounts{Water: 1, Land: 4}) {
			t.Fatalf("%v: regions %+v, %v", M, regions, err)
		}
	}
}

func TestWrappedStripe(t *testing.T) {
	stripe := mustParse(t, stripeExpr)

	// Stacked, the two halves form one line; wrapped top to bottom it closes.
	M := fill(t, stripe, 1, 2, goknots.Plane)
	curves, err := M.CountCurves()
	if err != nil || curves != (goknots.CurveCounts{Paths: 1}) {
		t.Fatalf("plane: curves %+v, %v", curves, err)
	}
	regions, err := M.CountRegions()
	if err != nil || regions != (goknots.RegionCounts{Water: 1, Land: 1}) {
		t.Fatalf("plane: regions %+v, %v", regions, err)
	}

	M = fill(t, stripe, 1, 2, goknots.Torus)
	curves, err = M.CountCurves()
	if err != nil || curves != (goknots.CurveCounts{Loops: 1}) {
		t.Fatalf("torus: curves %+v, %v", curves, err)
	}

	// Glued left to right, the water side of the line meets the land side.
	for _, kind := range []goknots.TopologyKind{goknots.Cylinder, goknots.Torus} {
		M = fill(t, stripe, 1, 2, kind)
		if _, err = M.CountRegions(); !errors.Is(err, goknots.ErrInconsistentRegion) {
			t.Fatalf("%v: expected ErrInconsistentRegion, got %v", M, err)
		}
	}
}

// Random placements of the standard tiles keep the curve and region graphs well-formed.
func TestRandomMaps(t *testing.T) {
	rng := rand.New(rand.NewSource(2207))
	for i := 0; i < 60; i++ {
		n, m := 1+rng.Intn(6), 1+rng.Intn(6)
		kind := goknots.TopologyKind(i % 3)
		M, err := libknots.NewMapOfKind(n, m, kind)
		if err != nil {
			t.Fatal(err)
		}
		if err = libknots.Populate(M, libknots.StandardTemplates(), rng); err != nil {
			t.Fatal(err)
		}

		g, err := M.BuildCurveGraph()
		if err != nil {
			t.Fatalf("%v: %v", M, err)
		}
		if g.MaxDegree() > 2 {
			t.Fatalf("%v: curve degree %d", M, g.MaxDegree())
		}
		ends := 0
		for vi := range g.Vtx {
			if g.Degree(int32(vi)) == 1 {
				ends++
			}
		}
		curves := g.Classify()
		if 2*curves.Paths != ends {
			t.Fatalf("%v: %d paths for %d curve ends", M, curves.Paths, ends)
		}
		if kind == goknots.Torus && curves.Paths != 0 {
			t.Fatalf("%v: open paths on a torus", M)
		}

		rg, err := M.BuildRegionGraph()
		if err != nil {
			t.Fatal(err)
		}
		comp, Nc := rg.Components()
		for ni, ci := range comp {
			if ci < 0 || ci >= Nc {
				t.Fatalf("%v: triangle node %d in no region", M, ni)
			}
		}
		regions, err := M.CountRegions()
		if err != nil {
			t.Fatalf("%v: %v", M, err)
		}
		if regions.Total() != int(Nc) {
			t.Fatalf("%v: %d regions, %d components", M, regions.Total(), Nc)
		}
	}
}
