package pyknots

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots"
	"github.com/2x3systems/goknots/libknots/census"
	"github.com/2x3systems/goknots/libknots/render"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyTemplateType = py.NewType("Template", "an immutable tile template: points, edges, and connections in a square")
	pyMapType      = py.NewType("Map", "an n x m grid of tiles glued under a topology")
	pyTileType     = py.NewType("Tile", "a template placed in a map cell")
)

type pyTemplate struct {
	*libknots.Template
}

func (T pyTemplate) Type() *py.Type {
	return pyTemplateType
}

func (T pyTemplate) M__str__() (py.Object, error) {
	return py.String(T.String()), nil
}

func (T pyTemplate) M__repr__() (py.Object, error) {
	return py.String("<Template " + T.Name + ">"), nil
}

func getTemplate(obj py.Object) (pyTemplate, error) {
	T, ok := obj.(pyTemplate)
	if !ok {
		return T, py.ExceptionNewf(py.TypeError, "expected Template object (got %v)", obj.Type().Name)
	}
	return T, nil
}

type pyMap struct {
	*libknots.Map
}

func (M pyMap) Type() *py.Type {
	return pyMapType
}

func (M pyMap) M__str__() (py.Object, error) {
	return py.String(M.String()), nil
}

func (M pyMap) M__repr__() (py.Object, error) {
	return M.M__str__()
}

type pyTile struct {
	*libknots.Tile
	M *libknots.Map
}

func (t pyTile) Type() *py.Type {
	return pyTileType
}

func (t pyTile) M__str__() (py.Object, error) {
	return py.String(t.String()), nil
}

func (t pyTile) M__repr__() (py.Object, error) {
	return t.M__str__()
}

// toError converts a library error into a Python exception.
func toError(err error) error {
	return py.ExceptionNewf(py.ValueError, "%v", err)
}

// items returns the elements of a Python tuple or list.
func items(obj py.Object) ([]py.Object, error) {
	switch seq := obj.(type) {
	case py.Tuple:
		return seq, nil
	case *py.List:
		return seq.Items, nil
	}
	return nil, py.ExceptionNewf(py.TypeError, "expected tuple or list (got %v)", obj.Type().Name)
}

func number(obj py.Object) (float64, error) {
	switch v := obj.(type) {
	case py.Int:
		return float64(v), nil
	case py.Float:
		return float64(v), nil
	}
	return 0, py.ExceptionNewf(py.TypeError, "expected a number (got %v)", obj.Type().Name)
}

func intPair(obj py.Object) (a, b int32, err error) {
	pair, err := items(obj)
	if err != nil {
		return
	}
	if len(pair) != 2 {
		err = py.ExceptionNewf(py.ValueError, "expected a pair (got %d items)", len(pair))
		return
	}
	var ai, bi py.Int
	if ai, err = py.GetInt(pair[0]); err != nil {
		return
	}
	if bi, err = py.GetInt(pair[1]); err != nil {
		return
	}
	return int32(ai), int32(bi), nil
}

// NewTemplate(name, points, edges, connections)
//
//	points: sequence of (x, y); edges: sequence of (a, b); connections: sequence of edge indices
func py_NewTemplate(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) != 4 {
		return nil, py.ExceptionNewf(py.TypeError, "NewTemplate takes 4 arguments (%d given)", len(args))
	}
	name, ok := args[0].(py.String)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "template name must be a str")
	}

	ptObjs, err := items(args[1])
	if err != nil {
		return nil, err
	}
	points := make([]goknots.Point, len(ptObjs))
	for i, ptObj := range ptObjs {
		xy, err := items(ptObj)
		if err != nil {
			return nil, err
		}
		if len(xy) != 2 {
			return nil, py.ExceptionNewf(py.ValueError, "point %d is not an (x, y) pair", i)
		}
		if points[i].X, err = number(xy[0]); err != nil {
			return nil, err
		}
		if points[i].Y, err = number(xy[1]); err != nil {
			return nil, err
		}
	}

	edgeObjs, err := items(args[2])
	if err != nil {
		return nil, err
	}
	edges := make([]goknots.Edge, len(edgeObjs))
	for i, edgeObj := range edgeObjs {
		if edges[i].A, edges[i].B, err = intPair(edgeObj); err != nil {
			return nil, err
		}
	}

	connObjs, err := items(args[3])
	if err != nil {
		return nil, err
	}
	conns := make([]int32, len(connObjs))
	for i, connObj := range connObjs {
		ci, err := py.GetInt(connObj)
		if err != nil {
			return nil, err
		}
		conns[i] = int32(ci)
	}

	T, err := libknots.NewTemplate(string(name), points, edges, conns)
	if err != nil {
		return nil, toError(err)
	}
	return pyTemplate{T}, nil
}

// ParseTemplate(src)
func py_ParseTemplate(module py.Object, args py.Tuple) (py.Object, error) {
	var src string
	if err := py.LoadTuple(args, []interface{}{&src}); err != nil {
		return nil, err
	}
	T, err := libknots.ParseTemplate(src)
	if err != nil {
		return nil, toError(err)
	}
	return pyTemplate{T}, nil
}

func py_Template_NumTriangles(self py.Object, args py.Tuple) (py.Object, error) {
	T := self.(pyTemplate)
	return py.Int(len(T.Triangles())), nil
}

func py_Template_Size(self py.Object, args py.Tuple) (py.Object, error) {
	T := self.(pyTemplate)
	return py.Float(T.Size()), nil
}

func py_Template_Name(self py.Object, args py.Tuple) (py.Object, error) {
	T := self.(pyTemplate)
	return py.String(T.Name), nil
}

// NewMap(n, m, topology="plane")
func py_NewMap(module py.Object, args py.Tuple) (py.Object, error) {
	var n, m int32
	topology := "plane"
	if err := py.LoadTuple(args, []interface{}{&n, &m, &topology}); err != nil {
		return nil, err
	}
	kind, err := goknots.ParseTopology(topology)
	if err != nil {
		return nil, toError(err)
	}
	M, err := libknots.NewMapOfKind(int(n), int(m), kind)
	if err != nil {
		return nil, toError(err)
	}
	return pyMap{M}, nil
}

// Map.SetTile(template, x, y)
func py_Map_SetTile(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMap)
	if len(args) != 3 {
		return nil, py.ExceptionNewf(py.TypeError, "SetTile takes 3 arguments (%d given)", len(args))
	}
	T, err := getTemplate(args[0])
	if err != nil {
		return nil, err
	}
	x, err := py.GetInt(args[1])
	if err != nil {
		return nil, err
	}
	y, err := py.GetInt(args[2])
	if err != nil {
		return nil, err
	}
	t, err := M.SetTile(T.Template, int(x), int(y))
	if err != nil {
		return nil, toError(err)
	}
	return pyTile{t, M.Map}, nil
}

// Map.GetTile(x, y)
func py_Map_GetTile(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMap)
	var x, y int32
	if err := py.LoadTuple(args, []interface{}{&x, &y}); err != nil {
		return nil, err
	}
	t := M.Tile(int(x), int(y))
	if t == nil {
		return py.None, nil
	}
	return pyTile{t, M.Map}, nil
}

func py_Map_UpdateNeighbours(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMap)
	if err := M.UpdateNeighbours(); err != nil {
		return nil, toError(err)
	}
	return py.None, nil
}

// Map.Populate(seed, templates=(Arcs, Caps))
func py_Map_Populate(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMap)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Populate takes a seed")
	}
	seed, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}

	templates := libknots.StandardTemplates()
	if len(args) > 1 {
		objs, err := items(args[1])
		if err != nil {
			return nil, err
		}
		templates = templates[:0:0]
		for _, obj := range objs {
			T, err := getTemplate(obj)
			if err != nil {
				return nil, err
			}
			templates = append(templates, T.Template)
		}
	}

	if err = libknots.Populate(M.Map, templates, rand.New(rand.NewSource(int64(seed)))); err != nil {
		return nil, toError(err)
	}
	return py.None, nil
}

// Map.CountCurves() -> (loops, paths)
func py_Map_CountCurves(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMap)
	curves, err := M.CountCurves()
	if err != nil {
		return nil, toError(err)
	}
	return py.Tuple{py.Int(curves.Loops), py.Int(curves.Paths)}, nil
}

// Map.CountRegions() -> (water, land)
func py_Map_CountRegions(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMap)
	regions, err := M.CountRegions()
	if err != nil {
		return nil, toError(err)
	}
	return py.Tuple{py.Int(regions.Water), py.Int(regions.Land)}, nil
}

// Map.Render(pathname, scale=24)
func py_Map_Render(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMap)
	var pathname string
	opts := render.DefaultOpts()
	scale := int32(opts.Scale)
	if err := py.LoadTuple(args, []interface{}{&pathname, &scale}); err != nil {
		return nil, err
	}
	if pathname == "" {
		return nil, py.ExceptionNewf(py.ValueError, "Render needs a file name")
	}
	opts.Scale = float64(scale)
	opts.Caption = M.String()

	os.MkdirAll(filepath.Dir(pathname), 0700)
	file, err := os.OpenFile(pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
	}
	err = render.WritePNG(file, M.Map, opts)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.None, nil
}

// Tile.Neighbour(direction) -> Tile or None
func py_Tile_Neighbour(self py.Object, args py.Tuple) (py.Object, error) {
	t := self.(pyTile)
	var dirName string
	if err := py.LoadTuple(args, []interface{}{&dirName}); err != nil {
		return nil, err
	}
	dir, err := goknots.ParseDirection(dirName)
	if err != nil {
		return nil, toError(err)
	}
	nb := t.M.Neighbour(t.Tile, dir)
	if nb == nil {
		return py.None, nil
	}
	return pyTile{nb, t.M}, nil
}

func py_Tile_X(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyTile).X), nil
}

func py_Tile_Y(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyTile).Y), nil
}

func py_Tile_Template(self py.Object, args py.Tuple) (py.Object, error) {
	return pyTemplate{self.(pyTile).Template}, nil
}

// Survey(n, m, topology, samples, seed=1) -> ((count, loops, paths, water, land), ...) most frequent first
func py_Survey(module py.Object, args py.Tuple) (py.Object, error) {
	opts := census.DefaultSurveyOpts()
	var n, m, samples int32
	var seed int32 = 1
	topology := "plane"
	if err := py.LoadTuple(args, []interface{}{&n, &m, &topology, &samples, &seed}); err != nil {
		return nil, err
	}
	kind, err := goknots.ParseTopology(topology)
	if err != nil {
		return nil, toError(err)
	}
	opts.N, opts.M, opts.Kind = int(n), int(m), kind
	opts.Samples, opts.Seed = int(samples), int64(seed)

	cen, err := census.Open(census.Opts{})
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	defer cen.Close()

	if _, err = cen.Survey(context.Background(), opts); err != nil {
		return nil, toError(err)
	}
	hist, err := cen.Histogram()
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}

	out := make(py.Tuple, len(hist))
	for i, entry := range hist {
		out[i] = py.Tuple{
			py.Int(entry.Count),
			py.Int(entry.Loops),
			py.Int(entry.Paths),
			py.Int(entry.Water),
			py.Int(entry.Land),
		}
	}
	return out, nil
}

func init() {

	/////////////////////////////////
	// Template
	{
		pyTemplateType.Dict["NumTriangles"] = py.MustNewMethod("NumTriangles", py_Template_NumTriangles, 0, "returns the number of triangles of this template")
		pyTemplateType.Dict["Size"] = py.MustNewMethod("Size", py_Template_Size, 0, "returns the side length of this template")
		pyTemplateType.Dict["Name"] = py.MustNewMethod("Name", py_Template_Name, 0, "")
	}

	/////////////////////////////////
	// Map
	{
		pyMapType.Dict["SetTile"] = py.MustNewMethod("SetTile", py_Map_SetTile, 0, "places a Template at (x, y) and returns the new Tile")
		pyMapType.Dict["GetTile"] = py.MustNewMethod("GetTile", py_Map_GetTile, 0, "")
		pyMapType.Dict["UpdateNeighbours"] = py.MustNewMethod("UpdateNeighbours", py_Map_UpdateNeighbours, 0, "resolves every tile's neighbours; call after placing tiles")
		pyMapType.Dict["Populate"] = py.MustNewMethod("Populate", py_Map_Populate, 0, "fills every cell with a random template then resolves neighbours")
		pyMapType.Dict["CountCurves"] = py.MustNewMethod("CountCurves", py_Map_CountCurves, 0, "returns (loops, paths)")
		pyMapType.Dict["CountRegions"] = py.MustNewMethod("CountRegions", py_Map_CountRegions, 0, "returns (water, land)")
		pyMapType.Dict["Render"] = py.MustNewMethod("Render", py_Map_Render, 0, "writes this map as a PNG file")
	}

	/////////////////////////////////
	// Tile
	{
		pyTileType.Dict["Neighbour"] = py.MustNewMethod("Neighbour", py_Tile_Neighbour, 0, "returns the neighbouring Tile in the given direction, or None")
		pyTileType.Dict["X"] = py.MustNewMethod("X", py_Tile_X, 0, "")
		pyTileType.Dict["Y"] = py.MustNewMethod("Y", py_Tile_Y, 0, "")
		pyTileType.Dict["Template"] = py.MustNewMethod("Template", py_Tile_Template, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("NewTemplate", py_NewTemplate, 0, "NewTemplate(name, points, edges, connections)"),
			py.MustNewMethod("ParseTemplate", py_ParseTemplate, 0, "ParseTemplate(src) reads a template in the tile grammar"),
			py.MustNewMethod("NewMap", py_NewMap, 0, "NewMap(n, m, topology='plane')"),
			py.MustNewMethod("Survey", py_Survey, 0, "Survey(n, m, topology, samples, seed=1)"),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"PY_VERSION":  py.String("v3.4.0"),
			"Arcs":        pyTemplate{libknots.Arcs},
			"Caps":        pyTemplate{libknots.Caps},
			"TOPOLOGIES":  py.Tuple{py.String("plane"), py.String("cylinder"), py.String("torus")},
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyknots",
				Doc:  "knot tiling gpython module",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
