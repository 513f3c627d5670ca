package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Opts sets the look of a rendered map.
type Opts struct {
	Scale      float64 // pixels per template unit
	Margin     int     // pixels around the map
	EdgeWidth  float64 // pixel width of plain edges
	CurveWidth float64 // pixel width of connection edges
	Water      color.RGBA
	Land       color.RGBA
	Edge       color.RGBA
	Curve      color.RGBA
	Background color.RGBA
	Caption    string // if set, written below the map
}

// DefaultOpts returns the usual rendering: blue water, green land, thin grey edges and thick black curves.
func DefaultOpts() Opts {
	return Opts{
		Scale:      24,
		Margin:     12,
		EdgeWidth:  1,
		CurveWidth: 4,
		Water:      color.RGBA{0x9c, 0xc9, 0xf0, 0xff},
		Land:       color.RGBA{0x8f, 0xc9, 0x7a, 0xff},
		Edge:       color.RGBA{0x80, 0x80, 0x80, 0xff},
		Curve:      color.RGBA{0x10, 0x10, 0x10, 0xff},
		Background: color.RGBA{0xff, 0xff, 0xff, 0xff},
	}
}

const captionHeight = 24

// Draw renders every tile of M.
func Draw(M *libknots.Map, opts Opts) *image.RGBA {
	tiles := M.Tiles()
	views := make([]goknots.TileView, 0, len(tiles))
	for _, t := range tiles {
		if t != nil {
			views = append(views, t)
		}
	}
	return DrawTiles(views, opts)
}

// DrawTiles renders the given tiles, each placed by its GlobalPoint.
// Triangles are filled by color, then plain edges are drawn, then connection edges on top.
func DrawTiles(tiles []goknots.TileView, opts Opts) *image.RGBA {
	if opts.Scale <= 0 {
		opts.Scale = DefaultOpts().Scale
	}

	var extent goknots.Point
	for _, t := range tiles {
		for _, p := range t.Points() {
			g := t.GlobalPoint(p)
			extent.X = math.Max(extent.X, g.X)
			extent.Y = math.Max(extent.Y, g.Y)
		}
	}

	mapH := int(math.Ceil(extent.Y*opts.Scale)) + 2*opts.Margin
	w := int(math.Ceil(extent.X*opts.Scale)) + 2*opts.Margin
	h := mapH
	if opts.Caption != "" {
		h += captionHeight
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	c := canvas{
		dst:    dst,
		z:      vector.NewRasterizer(w, h),
		scale:  opts.Scale,
		margin: float64(opts.Margin),
		top:    extent.Y,
	}

	for _, t := range tiles {
		pts := t.Points()
		colors := t.Colors()
		for ti, tri := range t.Triangles() {
			col := opts.Water
			if colors[ti] == goknots.Land {
				col = opts.Land
			}
			c.fillPolygon(col,
				c.pixel(t.GlobalPoint(pts[tri[0]])),
				c.pixel(t.GlobalPoint(pts[tri[1]])),
				c.pixel(t.GlobalPoint(pts[tri[2]])),
			)
		}
	}

	for _, t := range tiles {
		pts := t.Points()
		for _, e := range t.Edges() {
			c.line(opts.Edge, opts.EdgeWidth, c.pixel(t.GlobalPoint(pts[e.A])), c.pixel(t.GlobalPoint(pts[e.B])))
		}
	}

	for _, t := range tiles {
		pts := t.Points()
		edges := t.Edges()
		for _, ci := range t.Connections() {
			e := edges[ci]
			c.line(opts.Curve, opts.CurveWidth, c.pixel(t.GlobalPoint(pts[e.A])), c.pixel(t.GlobalPoint(pts[e.B])))
		}
	}

	if opts.Caption != "" {
		drawCaption(dst, opts.Caption, opts.Margin, mapH+captionHeight-8, opts.Curve)
	}
	return dst
}

// WritePNG renders M and encodes it as a PNG.
func WritePNG(out io.Writer, M *libknots.Map, opts Opts) error {
	if err := png.Encode(out, Draw(M, opts)); err != nil {
		return errors.Wrap(err, "render: encode png")
	}
	return nil
}

type canvas struct {
	dst    *image.RGBA
	z      *vector.Rasterizer
	scale  float64
	margin float64
	top    float64 // largest global y, drawn at the top margin
}

type pixel struct {
	X, Y float32
}

// pixel maps a global point to image space (y grows downward).
func (c *canvas) pixel(p goknots.Point) pixel {
	return pixel{
		X: float32(c.margin + p.X*c.scale),
		Y: float32(c.margin + (c.top-p.Y)*c.scale),
	}
}

func (c *canvas) fillPolygon(col color.RGBA, pts ...pixel) {
	b := c.dst.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	c.z.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.z.LineTo(p.X, p.Y)
	}
	c.z.ClosePath()
	c.z.Draw(c.dst, b, image.NewUniform(col), image.Point{})
}

// line strokes a segment as a quad of the given pixel width.
func (c *canvas) line(col color.RGBA, width float64, a, b pixel) {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	n := math.Hypot(dx, dy)
	if n == 0 || width <= 0 {
		return
	}
	ox := float32(-dy / n * width / 2)
	oy := float32(dx / n * width / 2)
	c.fillPolygon(col,
		pixel{a.X + ox, a.Y + oy},
		pixel{b.X + ox, b.Y + oy},
		pixel{b.X - ox, b.Y - oy},
		pixel{a.X - ox, a.Y - oy},
	)
}

var (
	captionFont     *opentype.Font
	captionFontErr  error
	captionFontOnce sync.Once
)

func drawCaption(dst draw.Image, text string, x, y int, col color.RGBA) {
	captionFontOnce.Do(func() {
		captionFont, captionFontErr = opentype.Parse(goregular.TTF)
	})
	if captionFontErr != nil {
		return
	}

	face, err := opentype.NewFace(captionFont, &opentype.FaceOptions{
		Size:    14,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
