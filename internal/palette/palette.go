// Package palette renders the edge-mode reference palette: a
// diagnostic atlas showing, for every (n,e,s,w) label tuple, a tile
// blending horizontal (west/east) and vertical (north/south)
// reference-color gradients. Gradients are eased and blended in
// CIELAB space via go-colorful, so a cosine ramp between two visually
// distinct reference colors doesn't dip through a duller intermediate
// hue the way an RGB lerp does.
package palette

import (
	"errors"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/packing"
	"github.com/wangtiles/wangtiles/internal/patch"
	"github.com/wangtiles/wangtiles/internal/pixel"
)

// ErrCornerModeUnsupported is returned by Generate when mode is
// patch.ModeCorner: the palette diagnostic is edge-mode only.
var ErrCornerModeUnsupported = errors.New("palette: corner mode has no palette representation")

// Generate renders the resolution x resolution palette atlas: T = numColors^2
// tiles per side, each of side tileSize = resolution/T. Tiles are placed
// at rho.Index([n,e,s,w]), the same packing permutation the atlas and
// index-map generators use, so a given (n,e,s,w) cell of the palette
// lands at the same grid position as the corresponding tile everywhere
// else in the atlas.
func Generate(mode patch.Mode, resolution, tileSize, numColors int, refs []pixel.Pixel, rho packing.Rho) (*imagebuf.RGBImage, error) {
	if mode == patch.ModeCorner {
		return nil, ErrCornerModeUnsupported
	}
	if len(refs) < numColors {
		return nil, errors.New("palette: need at least numColors reference colors")
	}
	numTiles := numColors * numColors
	if resolution != tileSize*numTiles {
		return nil, errors.New("palette: resolution must equal tileSize * numColors^2")
	}

	out := imagebuf.New[pixel.Pixel](resolution)
	for n := 0; n < numColors; n++ {
		for e := 0; e < numColors; e++ {
			for s := 0; s < numColors; s++ {
				for w := 0; w < numColors; w++ {
					idx, err := rho.Index([4]int{n, e, s, w})
					if err != nil {
						return nil, err
					}
					row := idx / numTiles
					col := idx % numTiles
					fillPaletteTile(out, col*tileSize, row*tileSize, tileSize, refs[n], refs[e], refs[s], refs[w])
				}
			}
		}
	}
	return out, nil
}

// fillPaletteTile renders one tile: a cosine-eased horizontal gradient
// between west and east, a cosine-eased vertical gradient between
// north and south, blended by a weight that favors the horizontal
// gradient near the tile's vertical center and the vertical gradient
// near its top and bottom edges.
func fillPaletteTile(out *imagebuf.RGBImage, ox, oy, tileSize int, north, east, south, west pixel.Pixel) {
	denom := float64(tileSize)
	if denom <= 0 {
		denom = 1
	}
	for y := 0; y < tileSize; y++ {
		ty := float64(y) / denom
		vertical := cosineLerp(north, south, ty)
		// weight is 1 exactly at the vertical midline (y = tileSize/2,
		// ty = 0.5) and 0 at the top and bottom edges, so the tile's
		// exact midline row is a pure horizontal gradient.
		weight := math.Sin(math.Pi * ty)
		for x := 0; x < tileSize; x++ {
			tx := float64(x) / denom
			horizontal := cosineLerp(west, east, tx)
			blended := vertical.BlendLab(horizontal, weight).Clamped()
			out.Set(ox+x, oy+y, colorfulToPixel(blended))
		}
	}
}

// cosineLerp eases t through a cosine curve, then blends a and b in
// CIELAB space, giving a slow start and slow finish along a
// perceptually direct path instead of a linear RGB ramp.
func cosineLerp(a, b pixel.Pixel, t float64) colorful.Color {
	eased := (1 - math.Cos(t*math.Pi)) / 2
	return pixelToColorful(a).BlendLab(pixelToColorful(b), eased)
}

func pixelToColorful(p pixel.Pixel) colorful.Color {
	return colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
}

func colorfulToPixel(c colorful.Color) pixel.Pixel {
	r, g, b := c.RGB255()
	return pixel.Pixel{R: r, G: g, B: b}
}
