package atlas

import (
	"math"
	"testing"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/packing"
	"github.com/wangtiles/wangtiles/internal/patch"
	"github.com/wangtiles/wangtiles/internal/pixel"
)

func gradientImage(resolution int) *imagebuf.RGBImage {
	img := imagebuf.New[pixel.Pixel](resolution)
	for y := 0; y < resolution; y++ {
		for x := 0; x < resolution; x++ {
			img.Set(x, y, pixel.Pixel{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: 128,
			})
		}
	}
	return img
}

func TestComposeCornerFillsWholeAtlas(t *testing.T) {
	numColors := 2
	tileSize := 8
	resolution := tileSize * 4 // large enough example to hold corner patches
	source := gradientImage(resolution)
	patches, err := patch.SelectCorner(resolution, tileSize, numColors)
	if err != nil {
		t.Fatal(err)
	}
	rho, err := packing.NewCornerRho(numColors)
	if err != nil {
		t.Fatal(err)
	}
	out, err := ComposeCorner(source, patches, rho)
	if err != nil {
		t.Fatal(err)
	}
	wantResolution := tileSize * numColors * numColors
	if out.Resolution != wantResolution {
		t.Fatalf("got resolution %d, want %d", out.Resolution, wantResolution)
	}
}

// Property 8 (adapted): wedge coverage sums to 1.0 per pixel in edge
// mode. We verify this indirectly: composing a uniform-color source
// must reproduce that exact color everywhere in the tile, since a
// weighted sum of four identical colors with total weight 1.0 per
// pixel is that same color.
func TestComposeEdgeUniformSourceIsBitIdentical(t *testing.T) {
	numColors := 2
	tileSize := 8
	resolution := tileSize * 4
	c := pixel.Pixel{R: 77, G: 140, B: 200}
	source := imagebuf.New[pixel.Pixel](resolution)
	for i := range source.Pixels {
		source.Pixels[i] = c
	}

	sel := patch.EdgeSelectionResult{
		Horizontal: []patch.Patch{{X: 0, Y: 0, Size: tileSize}, {X: tileSize, Y: 0, Size: tileSize}},
		Vertical:   []patch.Patch{{X: 0, Y: tileSize, Size: tileSize}, {X: tileSize, Y: tileSize, Size: tileSize}},
	}
	rho := packing.NewEdgeRho(numColors)

	out, err := ComposeEdge(source, sel, rho)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range out.Pixels {
		if p != c {
			t.Fatalf("pixel %d = %+v, want %+v (uniform source must round-trip exactly)", i, p, c)
		}
	}
}

func TestComposeEdgeWedgeWeightsSumToOne(t *testing.T) {
	// Directly exercise fillEdgeTile's weight accounting by summing
	// contributions of four distinct unit-color patches; since Vec()
	// values are additive and clamped only on store, using small
	// values avoids the store-time clamp masking a coverage bug.
	tileSize := 8
	half := tileSize / 2
	source := imagebuf.New[pixel.Pixel](tileSize * 2)
	unit := pixel.Pixel{R: 40, G: 40, B: 40}
	for i := range source.Pixels {
		source.Pixels[i] = unit
	}
	out := imagebuf.New[pixel.Pixel](tileSize)
	north := patch.Patch{X: 0, Y: 0, Size: tileSize}
	south := patch.Patch{X: tileSize, Y: 0, Size: tileSize}
	east := patch.Patch{X: 0, Y: tileSize, Size: tileSize}
	west := patch.Patch{X: tileSize, Y: tileSize, Size: tileSize}
	fillEdgeTile(out, 0, 0, tileSize, half, source, north, south, east, west)

	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			got := out.Get(x, y).Vec()
			want := unit.Vec()
			for c := 0; c < 3; c++ {
				if math.Abs(got[c]-want[c]) > 1.0/255.0+1e-6 {
					t.Fatalf("pixel (%d,%d) channel %d = %v, want %v (coverage != 1.0)", x, y, c, got[c], want[c])
				}
			}
		}
	}
}

func TestComposeCornerRejectsTooFewPatches(t *testing.T) {
	rho, _ := packing.NewCornerRho(4)
	source := gradientImage(64)
	_, err := ComposeCorner(source, []patch.Patch{{X: 0, Y: 0, Size: 8}}, rho)
	if err != ErrTooFewPatches {
		t.Fatalf("got err=%v, want ErrTooFewPatches", err)
	}
}
