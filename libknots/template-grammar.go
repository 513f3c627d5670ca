package libknots

import (
	"github.com/2x3systems/goknots/goknots"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// TemplatesExpr is a sequence of tile template definitions:
//
//	tile arcs {
//	    points: (0, 0) (3, 0) (3, 3) (0, 3) (1.5, 1.5) ... ;
//	    edges: 0-4 4~6 ... ;     // "~" marks a connection edge
//	    connections: 18 17;      // optional, edge indices
//	}
type TemplatesExpr struct {
	Tiles []*TileExpr `@@*`
}

type TileExpr struct {
	Name        string       `"tile" @Ident "{"`
	Points      []*PointExpr `"points" ":" @@+ ";"`
	Edges       []*EdgeExpr  `"edges" ":" @@+ ";"`
	Connections []int32      `( "connections" ":" @Int* ";" )? "}"`
}

type PointExpr struct {
	X float64 `"(" @(Float | Int) ","`
	Y float64 `@(Float | Int) ")"`
}

type EdgeExpr struct {
	A    int32  `@Int`
	Kind string `@( "-" | "~" )`
	B    int32  `@Int`
}

var sTemplateLexer = lexer.MustSimple([]lexer.SimpleRule{
	{"comment", `//[^\n]*`},
	{"Float", `[0-9]*\.[0-9]+`},
	{"Int", `[0-9]+`},
	{"Ident", `[A-Za-z_][A-Za-z0-9_]*`},
	{"Punct", `[(){},:;~-]`},
	{"whitespace", `[ \t\r\n]+`},
})

var parseTemplatesExpr = participle.MustBuild[TemplatesExpr](
	participle.Lexer(sTemplateLexer),
	participle.Elide("comment", "whitespace"),
)

// ParseTemplates reads one or more templates from the tile template grammar.
func ParseTemplates(src string) ([]*Template, error) {
	expr, err := parseTemplatesExpr.ParseString("", src)
	if err != nil {
		return nil, errors.Wrap(goknots.ErrBadTemplateExpr, err.Error())
	}

	templates := make([]*Template, 0, len(expr.Tiles))
	for _, tile := range expr.Tiles {
		T, err := tile.Build()
		if err != nil {
			return nil, err
		}
		templates = append(templates, T)
	}
	return templates, nil
}

// ParseTemplate reads exactly one template from the tile template grammar.
func ParseTemplate(src string) (*Template, error) {
	templates, err := ParseTemplates(src)
	if err != nil {
		return nil, err
	}
	if len(templates) != 1 {
		return nil, errors.Wrapf(goknots.ErrBadTemplateExpr, "expected 1 tile, got %d", len(templates))
	}
	return templates[0], nil
}

// Build forms a Template from this expression.
// Connections are the explicitly listed edge indices followed by the edges marked with "~".
func (tile *TileExpr) Build() (*Template, error) {
	points := make([]goknots.Point, len(tile.Points))
	for i, p := range tile.Points {
		points[i] = goknots.Point{X: p.X, Y: p.Y}
	}

	edges := make([]goknots.Edge, len(tile.Edges))
	conns := append([]int32(nil), tile.Connections...)
	listed := make(map[int32]struct{}, len(conns))
	for _, ci := range conns {
		listed[ci] = struct{}{}
	}
	for ei, e := range tile.Edges {
		edges[ei] = goknots.Edge{A: e.A, B: e.B}
		if e.Kind == "~" {
			if _, dupe := listed[int32(ei)]; !dupe {
				conns = append(conns, int32(ei))
			}
		}
	}

	return NewTemplate(tile.Name, points, edges, conns)
}
