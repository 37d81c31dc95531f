// Package cli implements wtg's subcommand dispatch: --tiles, --index,
// --palette, and --serve, each with its own flag.FlagSet parsing the
// positional arguments that follow it.
package cli

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strings"

	"github.com/wangtiles/wangtiles"
	"github.com/wangtiles/wangtiles/internal/previewserver"
)

// Run parses args (typically os.Args[1:]), executes the selected
// subcommand, and returns the process exit code: 0 on success, -1 on
// any usage, I/O, precondition, or invariant error.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage())
		return -1
	}

	var err error
	switch args[0] {
	case "--tiles":
		err = runTiles(args[1:], stdout, stderr)
	case "--index":
		err = runIndex(args[1:], stdout, stderr)
	case "--palette":
		err = runPalette(args[1:], stdout, stderr)
	case "--serve":
		err = runServe(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s\n", args[0], usage())
		return -1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return -1
	}
	return 0
}

func usage() string {
	return "Usage:\n" +
		"  wtg --tiles <R> <in> <out_rgba> <out_constraints> [<debug_tile>] [--num-colors=N] [--mode=corner|edge] [--visual-scale=N] [--seed=N]\n" +
		"  wtg --index <R> <out_rgb> [--num-colors=N] [--mode=corner|edge] [--seed=N]\n" +
		"  wtg --palette <R> <out_rgb> [--num-colors=N] [--seed=N] [--auto-palette=<image>]\n" +
		"  wtg --serve <addr> <R> <in> [--num-colors=N] [--mode=corner|edge] [--seed=N]"
}

// sharedFlags holds the config knobs common to every subcommand.
type sharedFlags struct {
	numColors int
	mode      string
	seed      int64
}

func addSharedFlags(fs *flag.FlagSet, includeMode bool) *sharedFlags {
	sf := &sharedFlags{}
	fs.IntVar(&sf.numColors, "num-colors", 4, "number of corner or edge colors per side (2, 3, or 4)")
	if includeMode {
		fs.StringVar(&sf.mode, "mode", "edge", "tiling scheme: corner or edge")
	} else {
		sf.mode = "edge"
	}
	fs.Int64Var(&sf.seed, "seed", 1, "seed for the random source driving patch selection / index sampling")
	return sf
}

func (sf *sharedFlags) resolveMode() (wangtiles.Mode, error) {
	switch sf.mode {
	case "corner":
		return wangtiles.ModeCorner, nil
	case "edge":
		return wangtiles.ModeEdge, nil
	default:
		return 0, fmt.Errorf("--mode must be corner or edge, got %q", sf.mode)
	}
}

func (sf *sharedFlags) options() (wangtiles.Options, error) {
	mode, err := sf.resolveMode()
	if err != nil {
		return wangtiles.Options{}, err
	}
	if sf.numColors < 2 || sf.numColors > 4 {
		return wangtiles.Options{}, fmt.Errorf("--num-colors must be 2, 3, or 4, got %d", sf.numColors)
	}
	opts := wangtiles.DefaultOptions()
	opts.Mode = mode
	opts.NumColors = sf.numColors
	opts.Rand = rand.New(rand.NewSource(sf.seed))
	return opts, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// splitFlagArgs separates "--name" / "--name=value" tokens from
// positional tokens, so flags may appear anywhere on the command line
// instead of only before the first positional argument (the standard
// library flag package's default, which would otherwise be surprising
// given spec.md's positional-argument-first invocation style).
func splitFlagArgs(args []string) (flagArgs, positional []string) {
	for _, a := range args {
		if strings.HasPrefix(a, "--") {
			flagArgs = append(flagArgs, a)
		} else {
			positional = append(positional, a)
		}
	}
	return flagArgs, positional
}

func parsePositionalInt(positional []string, index int, name string) (int, error) {
	if len(positional) <= index {
		return 0, fmt.Errorf("missing %s argument", name)
	}
	var r int
	if _, err := fmt.Sscanf(positional[index], "%d", &r); err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, positional[index])
	}
	return r, nil
}

// runTiles implements: --tiles <R> <in> <out_rgba> <out_constraints> [<debug_tile>]
func runTiles(args []string, stdout, stderr io.Writer) error {
	flagArgs, positional := splitFlagArgs(args)
	fs := flag.NewFlagSet("--tiles", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addSharedFlags(fs, true)
	visualScale := fs.Int("visual-scale", 0, "graph-cut resolution (0 = pipeline default 128)")
	if err := fs.Parse(flagArgs); err != nil {
		return err
	}
	if len(positional) < 4 {
		return fmt.Errorf("--tiles requires <R> <in> <out_rgba> <out_constraints> [<debug_tile>]")
	}

	r, err := parsePositionalInt(positional, 0, "R")
	if err != nil {
		return err
	}
	if !isPowerOfTwo(r) {
		return fmt.Errorf("R must be a power of two, got %d", r)
	}
	inPath, outRGBA, outConstraints := positional[1], positional[2], positional[3]

	opts, err := sf.options()
	if err != nil {
		return err
	}
	opts.VisualScale = *visualScale
	opts.DebugTile = -1
	if len(positional) > 4 {
		var dt int
		if _, err := fmt.Sscanf(positional[4], "%d", &dt); err != nil {
			return fmt.Errorf("debug_tile must be an integer, got %q", positional[4])
		}
		opts.DebugTile = dt
	}

	numTiles := opts.NumColors * opts.NumColors
	if r%numTiles != 0 {
		return fmt.Errorf("R (%d) must be divisible by num_colors^2 (%d)", r, numTiles)
	}
	tileSize := r / numTiles

	fmt.Fprintf(stdout, "Loading source: %s\n", inPath)
	source, err := wangtiles.LoadRaw(inPath, r)
	if err != nil {
		return fmt.Errorf("loading source: %w", err)
	}

	progress := func(line string) { fmt.Fprintln(stdout, line) }
	result, err := wangtiles.GenerateTiles(source, tileSize, opts, progress)
	if err != nil {
		return fmt.Errorf("generating tiles: %w", err)
	}

	fmt.Fprintf(stdout, "Writing atlas+mask: %s\n", outRGBA)
	if err := wangtiles.SaveRawRGBA(outRGBA, result.Atlas, result.Mask); err != nil {
		return fmt.Errorf("writing atlas: %w", err)
	}
	fmt.Fprintf(stdout, "Writing constraints: %s\n", outConstraints)
	if err := wangtiles.SaveRawRGB(outConstraints, result.Constraints); err != nil {
		return fmt.Errorf("writing constraints: %w", err)
	}
	return nil
}

// runIndex implements: --index <R> <out_rgb>
func runIndex(args []string, stdout, stderr io.Writer) error {
	flagArgs, positional := splitFlagArgs(args)
	fs := flag.NewFlagSet("--index", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addSharedFlags(fs, true)
	if err := fs.Parse(flagArgs); err != nil {
		return err
	}
	if len(positional) < 2 {
		return fmt.Errorf("--index requires <R> <out_rgb>")
	}
	r, err := parsePositionalInt(positional, 0, "R")
	if err != nil {
		return err
	}
	if r <= 0 {
		return fmt.Errorf("R must be positive, got %d", r)
	}
	outPath := positional[1]

	opts, err := sf.options()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Generating index map (R=%d)\n", r)
	img, err := wangtiles.GenerateIndexMap(r, opts)
	if err != nil {
		return fmt.Errorf("generating index map: %w", err)
	}
	fmt.Fprintf(stdout, "Writing: %s\n", outPath)
	return wangtiles.SaveRawRGB(outPath, img)
}

// runPalette implements: --palette <R> <out_rgb>
func runPalette(args []string, stdout, stderr io.Writer) error {
	flagArgs, positional := splitFlagArgs(args)
	fs := flag.NewFlagSet("--palette", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addSharedFlags(fs, false)
	autoPaletteFrom := fs.String("auto-palette", "", "derive reference colors by clustering this image instead of using the fixed defaults")
	if err := fs.Parse(flagArgs); err != nil {
		return err
	}
	if len(positional) < 2 {
		return fmt.Errorf("--palette requires <R> <out_rgb>")
	}
	r, err := parsePositionalInt(positional, 0, "R")
	if err != nil {
		return err
	}
	outPath := positional[1]

	opts, err := sf.options()
	if err != nil {
		return err
	}
	opts.Mode = wangtiles.ModeEdge

	numTiles := opts.NumColors * opts.NumColors
	if r%numTiles != 0 {
		return fmt.Errorf("R (%d) must be divisible by num_colors^2 (%d)", r, numTiles)
	}
	tileSize := r / numTiles

	refs := wangtiles.DefaultReferenceColors()
	if *autoPaletteFrom != "" {
		fmt.Fprintf(stdout, "Deriving reference colors from: %s\n", *autoPaletteFrom)
		srcImg, err := wangtiles.LoadImage(*autoPaletteFrom)
		if err != nil {
			return fmt.Errorf("loading auto-palette source: %w", err)
		}
		refs, err = wangtiles.DeriveReferenceColors(srcImg, opts.NumColors)
		if err != nil {
			return fmt.Errorf("deriving reference colors: %w", err)
		}
	}

	fmt.Fprintf(stdout, "Generating palette (R=%d)\n", r)
	img, err := wangtiles.GeneratePalette(r, tileSize, opts, refs)
	if err != nil {
		return fmt.Errorf("generating palette: %w", err)
	}
	fmt.Fprintf(stdout, "Writing: %s\n", outPath)
	return wangtiles.SaveRawRGB(outPath, img)
}

// runServe implements: --serve <addr> <R> <in>
//
// It runs the full tile/index/palette pipeline once against the given
// source, publishes the results to a previewserver.Server, and then
// blocks serving HTTP on addr.
func runServe(args []string, stdout, stderr io.Writer) error {
	srv, addr, err := prepareServer(args, stdout, stderr)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Serving preview on %s\n", addr)
	return http.ListenAndServe(addr, srv)
}

// prepareServer holds the argument parsing and pipeline run shared by
// runServe, split out so it can be exercised by a test without
// blocking on http.ListenAndServe.
func prepareServer(args []string, stdout, stderr io.Writer) (*previewserver.Server, string, error) {
	flagArgs, positional := splitFlagArgs(args)
	fs := flag.NewFlagSet("--serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sf := addSharedFlags(fs, true)
	if err := fs.Parse(flagArgs); err != nil {
		return nil, "", err
	}
	if len(positional) < 3 {
		return nil, "", fmt.Errorf("--serve requires <addr> <R> <in>")
	}
	addr := positional[0]
	r, err := parsePositionalInt(positional, 1, "R")
	if err != nil {
		return nil, "", err
	}
	if !isPowerOfTwo(r) {
		return nil, "", fmt.Errorf("R must be a power of two, got %d", r)
	}
	inPath := positional[2]

	opts, err := sf.options()
	if err != nil {
		return nil, "", err
	}
	numTiles := opts.NumColors * opts.NumColors
	if r%numTiles != 0 {
		return nil, "", fmt.Errorf("R (%d) must be divisible by num_colors^2 (%d)", r, numTiles)
	}
	tileSize := r / numTiles

	fmt.Fprintf(stdout, "Loading source: %s\n", inPath)
	source, err := wangtiles.LoadRaw(inPath, r)
	if err != nil {
		return nil, "", fmt.Errorf("loading source: %w", err)
	}

	progress := func(line string) { fmt.Fprintln(stdout, line) }
	result, err := wangtiles.GenerateTiles(source, tileSize, opts, progress)
	if err != nil {
		return nil, "", fmt.Errorf("generating tiles: %w", err)
	}

	indexImg, err := wangtiles.GenerateIndexMap(r, opts)
	if err != nil {
		return nil, "", fmt.Errorf("generating index map: %w", err)
	}

	snapshot := previewserver.Snapshot{
		Atlas:       result.Atlas,
		IndexMap:    indexImg,
		Constraints: result.Constraints,
		TileSize:    tileSize,
		NumColors:   opts.NumColors,
	}
	if opts.Mode == wangtiles.ModeEdge {
		paletteImg, err := wangtiles.GeneratePalette(r, tileSize, opts, wangtiles.DefaultReferenceColors())
		if err != nil {
			return nil, "", fmt.Errorf("generating palette: %w", err)
		}
		snapshot.Palette = paletteImg
	}

	srv := previewserver.New()
	srv.Update(snapshot)
	return srv, addr, nil
}
