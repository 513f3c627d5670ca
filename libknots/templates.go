package libknots

import (
	_ "embed"
)

//go:embed standard.tiles
var standardTilesExpr string

// The standard tiles of side 3: Arcs (four corner arcs) and Caps (two bars and two caps).
var (
	Arcs *Template
	Caps *Template
)

func init() {
	templates, err := ParseTemplates(standardTilesExpr)
	if err != nil {
		panic(err)
	}
	Arcs, Caps = templates[0], templates[1]
}

// StandardTemplates returns the standard tiles (Arcs, Caps) in that order.
func StandardTemplates() []*Template {
	return []*Template{Arcs, Caps}
}
