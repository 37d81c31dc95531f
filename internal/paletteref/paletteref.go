// Package paletteref supplies the fixed reference colors consumed by
// internal/palette, plus an opt-in derivation of a reference set from
// the actual example texture via dominant-color extraction and
// k-means clustering in CIELAB space.
package paletteref

import (
	"errors"
	"image"
	"math"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/wangtiles/wangtiles/internal/pixel"
)

// Set is an ordered collection of reference colors indexed by edge
// label.
type Set []pixel.Pixel

// DefaultSet returns spec.md 4.8's fixed reference constants: four
// perceptually distinct colors, enough for numColors up to 4.
func DefaultSet() Set {
	return Set{
		{R: 220, G: 50, B: 47},  // red
		{R: 38, G: 139, B: 210}, // blue
		{R: 133, G: 153, B: 0},  // green
		{R: 181, G: 137, B: 0},  // yellow
	}
}

// DeriveFromImage extracts numColors representative colors from img
// via k-means clustering over its pixels in CIELAB space; the k-means
// package chooses its own initial centroids. Lab space is used so that
// Euclidean cluster distance tracks perceptual color difference
// instead of raw channel difference. A dominant-color pass runs first
// and is used only as the fallback: if there are no opaque samples or
// clustering returns an error or no clusters, the result is the
// dominant colors, padded with DefaultSet entries. If clustering yields
// fewer than numColors usable centers, the result is padded with
// DefaultSet entries.
func DeriveFromImage(img image.Image, numColors int) (Set, error) {
	if numColors < 1 {
		return nil, errors.New("paletteref: numColors must be >= 1")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.New("paletteref: empty image")
	}

	seeds := dominantcolor.FindWeight(img, max(24, numColors*8))

	const maxSamples = 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			col := colorful.Color{R: float64(r) / 65535.0, G: float64(g) / 65535.0, B: float64(b) / 65535.0}
			l, aStar, bStar := col.Clamped().Lab()
			dataset = append(dataset, clusters.Coordinates{l, aStar, bStar})
		}
	}
	if len(dataset) == 0 {
		return fallback(seeds, numColors), nil
	}

	workK := numColors
	if workK > len(dataset) {
		workK = len(dataset)
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return fallback(seeds, numColors), nil
	}

	sort.Slice(cc, func(i, j int) bool {
		return len(cc[i].Observations) > len(cc[j].Observations)
	})

	out := make(Set, 0, numColors)
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Lab(c.Center[0], c.Center[1], c.Center[2]).Clamped()
		out = append(out, colorfulToPixel(col))
		if len(out) == numColors {
			break
		}
	}
	for len(out) < numColors {
		def := DefaultSet()
		out = append(out, def[len(out)%len(def)])
	}
	return out, nil
}

func fallback(seeds []dominantcolor.Color, numColors int) Set {
	out := make(Set, 0, numColors)
	for _, c := range seeds {
		out = append(out, pixel.Pixel{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B})
		if len(out) == numColors {
			return out
		}
	}
	def := DefaultSet()
	for len(out) < numColors {
		out = append(out, def[len(out)%len(def)])
	}
	return out
}

func colorfulToPixel(c colorful.Color) pixel.Pixel {
	r, g, b := c.RGB255()
	return pixel.Pixel{R: r, G: g, B: b}
}
