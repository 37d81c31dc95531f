// Package seam orchestrates the seam-optimization pipeline: mip
// pyramid construction, the shared per-tile constraint image, per-tile
// graph-cut dispatch over the worker pool, mask upsampling, and the
// final alpha blend between the candidate atlas and the example
// texture.
package seam

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wangtiles/wangtiles/internal/graphcut"
	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/patch"
	"github.com/wangtiles/wangtiles/internal/pixel"
	"github.com/wangtiles/wangtiles/internal/workerpool"
)

const defaultVisualScale = 128

// Options configures one Run.
type Options struct {
	// VisualScale bounds the resolution at which graph cuts are
	// computed; it is clamped to tileSize. Zero means defaultVisualScale.
	VisualScale int
	// DebugTile restricts computation to a single tile index; -1 means
	// every tile.
	DebugTile int
}

// Result is everything a Run produces.
type Result struct {
	// Atlas is the final resolution x resolution blend of candidate and
	// source, per-pixel alpha = mask/255.
	Atlas *imagebuf.RGBImage
	// Mask is the upsampled cut mask at full resolution, usable as an
	// alpha channel by a downstream consumer instead of pre-blending.
	Mask *imagebuf.Mask
	// Constraints is the shared per-tile constraint image at
	// visual-scale resolution.
	Constraints *imagebuf.RGBImage
	// Stats holds one entry per tile, in row-major tile order.
	Stats []graphcut.Stats
}

var (
	ErrResolutionMismatch = errors.New("seam: source and candidate resolution must equal tileSize * numColors^2")
	ErrPyramidInvariant   = errors.New("seam: pyramid bottom resolution does not match visual_scale * numTiles")
)

// Run executes the full pipeline. progress, if non-nil, receives one
// line per pipeline stage and one line per completed tile, exactly
// like a caller would print to stdout.
func Run(mode patch.Mode, source, candidate *imagebuf.RGBImage, tileSize, numColors int, opts Options, progress func(string)) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}
	numTiles := numColors * numColors
	resolution := tileSize * numTiles
	if source.Resolution != resolution || candidate.Resolution != resolution {
		return nil, ErrResolutionMismatch
	}

	visualScale := opts.VisualScale
	if visualScale <= 0 {
		visualScale = defaultVisualScale
	}
	if visualScale > tileSize {
		visualScale = tileSize
	}

	progress("building mip pyramids")
	sourceMip, candidateMip := source, candidate
	scale := tileSize
	for scale > visualScale {
		sourceMip = imagebuf.DownsampleRGB(sourceMip)
		candidateMip = imagebuf.DownsampleRGB(candidateMip)
		scale /= 2
	}
	if sourceMip.Resolution != visualScale*numTiles {
		return nil, ErrPyramidInvariant
	}

	constraints := buildConstraints(mode, visualScale)

	mask := imagebuf.New[uint8](visualScale * numTiles)
	stats := make([]graphcut.Stats, numTiles*numTiles)

	var mu sync.Mutex
	var firstErr error
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	var jobs []workerpool.Job
	for row := 0; row < numTiles; row++ {
		for col := 0; col < numTiles; col++ {
			row, col := row, col
			tileIndex := row*numTiles + col
			if opts.DebugTile != -1 && tileIndex != opts.DebugTile {
				continue
			}
			jobs = append(jobs, func() {
				at := patch.Patch{X: col * visualScale, Y: row * visualScale, Size: visualScale}
				g, err := graphcut.Build(candidateMip, at, sourceMip, at, constraints)
				if err != nil {
					setErr(fmt.Errorf("tile %d: %w", tileIndex, err))
					return
				}
				st, err := g.Solve()
				if err != nil {
					setErr(fmt.Errorf("tile %d: %w", tileIndex, err))
					return
				}
				stats[tileIndex] = st
				g.ExtractCutMask(mask, at)

				mu.Lock()
				progress(fmt.Sprintf("tile %d/%d: max-flow %.3f after %d iterations", tileIndex+1, numTiles*numTiles, st.MaxFlow, st.Iterations))
				mu.Unlock()
			})
		}
	}
	workerpool.Run(jobs)
	if firstErr != nil {
		return nil, firstErr
	}

	progress("upsampling mask")
	for mask.Resolution < resolution {
		mask = imagebuf.UpsampleMask(mask)
	}

	progress("blending layers")
	atlas := imagebuf.New[pixel.Pixel](resolution)
	for i := range atlas.Pixels {
		alpha := float64(mask.Pixels[i]) / 255.0
		atlas.Pixels[i] = pixel.Lerp(source.Pixels[i], candidate.Pixels[i], alpha)
	}

	return &Result{
		Atlas:       atlas,
		Mask:        mask,
		Constraints: constraints,
		Stats:       stats,
	}, nil
}

// buildConstraints produces the shared per-tile constraint image: FREE
// everywhere, a mode-specific SINK region (edge mode: the two
// diagonals; corner mode: the inner cross at tile/2 and tile/2-1), a
// SINK-overwritten inner square at inset tile/7, and SOURCE on the
// whole perimeter. The perimeter is written last, so it stays SOURCE
// where a SINK region reaches the tile border.
func buildConstraints(mode patch.Mode, tileSize int) *imagebuf.RGBImage {
	img := imagebuf.New[pixel.Pixel](tileSize)
	for i := range img.Pixels {
		img.Pixels[i] = pixel.Free
	}

	half := tileSize / 2
	switch mode {
	case patch.ModeCorner:
		for p := 0; p < tileSize; p++ {
			img.Set(p, half-1, pixel.Sink)
			img.Set(p, half, pixel.Sink)
			img.Set(half-1, p, pixel.Sink)
			img.Set(half, p, pixel.Sink)
		}
	case patch.ModeEdge:
		for p := 0; p < tileSize; p++ {
			img.Set(p, p, pixel.Sink)
			img.Set(p, tileSize-1-p, pixel.Sink)
		}
	}

	padding := tileSize / 7
	for y := padding; y < tileSize-padding; y++ {
		for x := padding; x < tileSize-padding; x++ {
			img.Set(x, y, pixel.Sink)
		}
	}

	for p := 0; p < tileSize; p++ {
		img.Set(p, 0, pixel.Source)
		img.Set(p, tileSize-1, pixel.Source)
		img.Set(0, p, pixel.Source)
		img.Set(tileSize-1, p, pixel.Source)
	}

	return img
}
