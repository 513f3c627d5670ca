package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots"
	"github.com/2x3systems/goknots/libknots/census"
	"github.com/2x3systems/goknots/libknots/render"
	"github.com/plan-systems/klog"
)

var (
	flagN        = flag.Int("n", 7, "number of map columns")
	flagM        = flag.Int("m", 2, "number of map rows")
	flagTopology = flag.String("topology", "plane", "map topology: plane, cylinder, or torus")
	flagSeed     = flag.Int64("seed", 2, "random seed for tile placement")
	flagPNG      = flag.String("png", "", "if set, the map is rendered to this PNG file")
	flagScale    = flag.Float64("scale", render.DefaultOpts().Scale, "render scale (pixels per template unit)")
	flagTiles    = flag.String("tiles", "", "file of tile templates to place (default: the standard tiles)")
	flagCensus   = flag.Int("census", 0, "if > 0, survey this many random maps (seeds seed, seed+1, ...)")
	flagDb       = flag.String("db", "", "census catalog path (default: in-memory)")
	flagREPL     = flag.Bool("repl", false, "start a Python REPL with _pyknots loaded")
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "1")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	var err error
	switch pathname := flag.Arg(0); {
	case len(pathname) > 0:
		err = runPython(pathname)
	case *flagREPL:
		err = runPython("")
	case *flagCensus > 0:
		err = runCensus()
	default:
		err = runMap()
	}

	klog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadTemplates() ([]*libknots.Template, error) {
	if *flagTiles == "" {
		return libknots.StandardTemplates(), nil
	}
	src, err := os.ReadFile(*flagTiles)
	if err != nil {
		return nil, err
	}
	return libknots.ParseTemplates(string(src))
}

func runMap() error {
	kind, err := goknots.ParseTopology(*flagTopology)
	if err != nil {
		return err
	}
	templates, err := loadTemplates()
	if err != nil {
		return err
	}
	M, err := libknots.NewMapOfKind(*flagN, *flagM, kind)
	if err != nil {
		return err
	}
	if err = libknots.Populate(M, templates, rand.New(rand.NewSource(*flagSeed))); err != nil {
		return err
	}

	for _, pos := range [][2]int{{0, 0}, {0, 1}} {
		t := M.Tile(pos[0], pos[1])
		if t == nil {
			continue
		}
		fmt.Println(t)
		for _, dir := range goknots.AllDirections {
			nb := M.Neighbour(t, dir)
			if nb == nil {
				fmt.Printf("  %-7s None\n", dir)
			} else {
				fmt.Printf("  %-7s %v\n", dir, nb)
			}
		}
	}

	curves, err := M.CountCurves()
	if err != nil {
		return err
	}
	fmt.Printf("%v: %d closed loops, %d open paths\n", M, curves.Loops, curves.Paths)

	regions, err := M.CountRegions()
	if err != nil {
		return err
	}
	fmt.Printf("%v: %d water regions, %d land regions\n", M, regions.Water, regions.Land)

	if *flagPNG != "" {
		opts := render.DefaultOpts()
		opts.Scale = *flagScale
		opts.Caption = fmt.Sprintf("%v  seed %d  loops %d  paths %d", M, *flagSeed, curves.Loops, curves.Paths)

		file, err := os.Create(*flagPNG)
		if err != nil {
			return err
		}
		err = render.WritePNG(file, M, opts)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		klog.Infof("wrote %q", *flagPNG)
	}
	return nil
}

func runCensus() error {
	kind, err := goknots.ParseTopology(*flagTopology)
	if err != nil {
		return err
	}
	templates, err := loadTemplates()
	if err != nil {
		return err
	}

	cen, err := census.Open(census.Opts{
		DbPathName: *flagDb,
	})
	if err != nil {
		return err
	}
	defer cen.Close()

	opts := census.DefaultSurveyOpts()
	opts.N, opts.M, opts.Kind = *flagN, *flagM, kind
	opts.Templates = templates
	opts.Samples = *flagCensus
	opts.Seed = *flagSeed

	res, err := cen.Survey(context.Background(), opts)
	if err != nil {
		return err
	}
	hist, err := cen.Histogram()
	if err != nil {
		return err
	}

	fmt.Printf("%d %dx%d %v maps: %d distinct layouts, %d failed\n", res.Samples, opts.N, opts.M, kind, res.Distinct, res.Failed)
	fmt.Printf("census total: %d maps\n", cen.NumSamples())
	for _, entry := range hist {
		pct := 100 * float64(entry.Count) / float64(cen.NumSamples())
		fmt.Printf("%8d  %6.2f%%  %v\n", entry.Count, pct, entry.Signature)
	}
	return nil
}
