// Package wangtiles synthesizes a Wang tile / corner tile atlas from a
// square example texture via per-tile graph-cut seam optimization,
// plus a companion index map and (edge mode only) a reference
// palette diagnostic.
//
// Usage as a library:
//
//	opts := wangtiles.DefaultOptions()
//	src, _ := wangtiles.LoadRaw("example.raw", 512)
//	result, _ := wangtiles.GenerateTiles(src, 32, opts, nil) // 512 / 4^2
//	wangtiles.SaveRawRGBA("atlas.raw", result.Atlas, result.Mask)
package wangtiles

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/wangtiles/wangtiles/internal/atlas"
	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/imaging"
	"github.com/wangtiles/wangtiles/internal/indexmap"
	"github.com/wangtiles/wangtiles/internal/packing"
	"github.com/wangtiles/wangtiles/internal/palette"
	"github.com/wangtiles/wangtiles/internal/paletteref"
	"github.com/wangtiles/wangtiles/internal/patch"
	"github.com/wangtiles/wangtiles/internal/pixel"
	"github.com/wangtiles/wangtiles/internal/rawcodec"
	"github.com/wangtiles/wangtiles/internal/seam"
)

// Mode selects which tiling scheme the pipeline operates in.
type Mode = patch.Mode

const (
	ModeCorner = patch.ModeCorner
	ModeEdge   = patch.ModeEdge
)

// Options configures every operation in this package.
type Options struct {
	// Mode selects corner-tile or edge-tile packing. Default: ModeEdge.
	Mode Mode

	// NumColors is the number of corner or edge colors per side, in
	// [2,4]. Default: 4. In ModeCorner only 2 is accepted: the corner
	// packing table has no permutation for 3 or 4, which return an error.
	NumColors int

	// VisualScale bounds the resolution at which the graph cut runs;
	// 0 means the pipeline default (128), clamped to the tile size.
	VisualScale int

	// DebugTile restricts GenerateTiles to a single tile index; -1
	// (the default) computes every tile.
	DebugTile int

	// RetryCap bounds edge-mode patch selection retries before giving
	// up with an error. 0 means the pipeline default.
	RetryCap int

	// Rand supplies randomness for patch selection and index-map
	// sampling. A caller who wants a particular stream supplies a
	// seeded *rand.Rand; nil gives each call a fresh source seeded
	// with 1.
	Rand *rand.Rand
}

const defaultRetryCap = 10000

// DefaultOptions returns Options with sensible defaults: edge mode,
// four colors, randomness from a source seeded with 1.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeEdge,
		NumColors: 4,
		DebugTile: -1,
		RetryCap:  defaultRetryCap,
		Rand:      rand.New(rand.NewSource(1)),
	}
}

func (o Options) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(1))
}

func (o Options) retryCap() int {
	if o.RetryCap > 0 {
		return o.RetryCap
	}
	return defaultRetryCap
}

// Result is everything GenerateTiles produces.
type Result struct {
	*seam.Result
	// Candidate is the pre-seam candidate atlas assembled from example
	// sub-patches, before graph-cut blending against the source.
	Candidate *imagebuf.RGBImage
}

// GenerateTiles runs the full pipeline against a square example
// texture: patch selection, candidate atlas composition, and the
// seam-optimization graph cut. source.Resolution must equal
// tileSize * numColors^2. progress, if non-nil, receives one line per
// pipeline stage.
func GenerateTiles(source *imagebuf.RGBImage, tileSize int, opts Options, progress func(string)) (*Result, error) {
	if opts.NumColors < 2 || opts.NumColors > 4 {
		return nil, errors.New("wangtiles: NumColors must be 2, 3, or 4")
	}
	numTiles := opts.NumColors * opts.NumColors
	resolution := tileSize * numTiles
	if source.Resolution != resolution {
		return nil, fmt.Errorf("wangtiles: source resolution %d must equal tileSize*numColors^2 (%d)", source.Resolution, resolution)
	}
	if progress == nil {
		progress = func(string) {}
	}

	var candidate *imagebuf.RGBImage
	switch opts.Mode {
	case ModeCorner:
		rho, err := packing.NewCornerRho(opts.NumColors)
		if err != nil {
			return nil, err
		}
		progress("selecting corner patches")
		patches, err := patch.SelectCorner(resolution, tileSize, opts.NumColors)
		if err != nil {
			return nil, err
		}
		progress("composing candidate atlas")
		candidate, err = atlas.ComposeCorner(source, patches, rho)
		if err != nil {
			return nil, err
		}
	case ModeEdge:
		rho := packing.NewEdgeRho(opts.NumColors)
		progress("selecting edge patches")
		sel, err := patch.SelectEdge(opts.rng(), resolution, tileSize, opts.NumColors, opts.retryCap())
		if err != nil {
			return nil, err
		}
		progress("composing candidate atlas")
		candidate, err = atlas.ComposeEdge(source, sel, rho)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("wangtiles: unknown Mode")
	}

	seamOpts := seam.Options{VisualScale: opts.VisualScale, DebugTile: opts.DebugTile}
	res, err := seam.Run(opts.Mode, source, candidate, tileSize, opts.NumColors, seamOpts, progress)
	if err != nil {
		return nil, err
	}
	return &Result{Result: res, Candidate: candidate}, nil
}

// GenerateIndexMap renders a resolution x resolution index map whose
// red channel carries the tile index at that cell.
func GenerateIndexMap(resolution int, opts Options) (*imagebuf.RGBImage, error) {
	if opts.NumColors < 2 || opts.NumColors > 4 {
		return nil, errors.New("wangtiles: NumColors must be 2, 3, or 4")
	}
	switch opts.Mode {
	case ModeCorner:
		rho, err := packing.NewCornerRho(opts.NumColors)
		if err != nil {
			return nil, err
		}
		return indexmap.GenerateCorner(opts.rng(), resolution, rho)
	case ModeEdge:
		rho := packing.NewEdgeRho(opts.NumColors)
		return indexmap.GenerateEdge(opts.rng(), resolution, rho)
	default:
		return nil, errors.New("wangtiles: unknown Mode")
	}
}

// GeneratePalette renders the edge-mode reference palette diagnostic:
// resolution x resolution, tileSize per tile. Returns
// palette.ErrCornerModeUnsupported for ModeCorner. refs supplies the
// per-label reference colors; DefaultReferenceColors or
// DeriveReferenceColors both produce a usable set.
func GeneratePalette(resolution, tileSize int, opts Options, refs paletteref.Set) (*imagebuf.RGBImage, error) {
	pixels := make([]pixel.Pixel, len(refs))
	copy(pixels, refs)
	rho := packing.NewEdgeRho(opts.NumColors)
	return palette.Generate(opts.Mode, resolution, tileSize, opts.NumColors, pixels, rho)
}

// DefaultReferenceColors returns the fixed reference colors used by
// GeneratePalette when no example-derived palette is requested.
func DefaultReferenceColors() paletteref.Set {
	return paletteref.DefaultSet()
}

// DeriveReferenceColors extracts numColors representative colors from
// an example texture via k-means clustering, for use with
// GeneratePalette.
func DeriveReferenceColors(img image.Image, numColors int) (paletteref.Set, error) {
	return paletteref.DeriveFromImage(img, numColors)
}

// LoadRaw reads a resolution x resolution headerless raw RGB image
// from disk — the format every CLI subcommand's positional arguments
// name.
func LoadRaw(path string, resolution int) (*imagebuf.RGBImage, error) {
	return rawcodec.ReadRGB(path, resolution)
}

// SaveRawRGB writes img to disk in the headerless raw RGB format.
func SaveRawRGB(path string, img *imagebuf.RGBImage) error {
	return rawcodec.WriteRGB(path, img)
}

// SaveRawRGBA writes img and mask interleaved to disk in the
// headerless raw RGBA format, mask supplying the alpha channel.
func SaveRawRGBA(path string, img *imagebuf.RGBImage, mask *imagebuf.Mask) error {
	return rawcodec.WriteRGBA(path, img, mask)
}

// LoadImage reads an example texture from disk for authoring
// convenience. Supports PNG, JPEG, and WEBP.
func LoadImage(path string) (image.Image, error) {
	return imaging.Load(path)
}

// LoadRawFromImage decodes an authoring-convenience image format
// (PNG/JPEG/WEBP) from disk and converts it into the square RGBImage
// the pipeline operates on, without going through the raw codec.
func LoadRawFromImage(path string) (*imagebuf.RGBImage, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.ToRGBImage(img)
}

// SavePNG writes an image to disk as PNG, for authoring convenience or
// preview.
func SavePNG(path string, img image.Image) error {
	return imaging.SavePNG(path, img)
}
