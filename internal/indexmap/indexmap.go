// Package indexmap generates the R x R index map whose red channel
// carries the tile index at that cell, for both corner and edge mode,
// with toroidal wraparound so the map itself tiles seamlessly.
package indexmap

import (
	"math/rand"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/packing"
	"github.com/wangtiles/wangtiles/internal/pixel"
)

// GenerateCorner samples an (R+1)x(R+1) label grid of uniform random
// labels in [0,numColors), enforces toroidal wrap by copying the first
// row/column onto the last, then looks up rho(cne, cse, csw, cnw) for
// every cell from its four surrounding grid corners.
func GenerateCorner(rng *rand.Rand, resolution int, rho packing.Rho) (*imagebuf.RGBImage, error) {
	numColors := rho.NumColors()
	corners := make([][]int, resolution+1)
	for y := range corners {
		corners[y] = make([]int, resolution+1)
		for x := 0; x < resolution; x++ {
			corners[y][x] = rng.Intn(numColors)
		}
		corners[y][resolution] = corners[y][0]
	}
	copy(corners[resolution], corners[0])

	out := imagebuf.New[pixel.Pixel](resolution)
	for y := 0; y < resolution; y++ {
		for x := 0; x < resolution; x++ {
			cne := corners[y+1][x+1]
			cse := corners[y][x+1]
			csw := corners[y][x]
			cnw := corners[y+1][x]
			idx, err := rho.Index([4]int{cne, cse, csw, cnw})
			if err != nil {
				return nil, err
			}
			out.Set(x, y, tileIndexColor(idx))
		}
	}
	return out, nil
}

// GenerateEdge samples edge labels on a torus. It keeps a rolling row
// of north labels (used as next row's south) and a leftmost-column
// label per row to close the horizontal wrap, drawing every other
// label fresh.
func GenerateEdge(rng *rand.Rand, resolution int, rho packing.Rho) (*imagebuf.RGBImage, error) {
	numColors := rho.NumColors()
	out := imagebuf.New[pixel.Pixel](resolution)

	southRow := make([]int, resolution)
	for x := 0; x < resolution; x++ {
		southRow[x] = rng.Intn(numColors)
	}
	firstSouthRow := append([]int(nil), southRow...)

	for y := 0; y < resolution; y++ {
		leftmostEast := rng.Intn(numColors)
		prevEast := leftmostEast

		var northRow []int
		if y == resolution-1 {
			northRow = firstSouthRow
		} else {
			northRow = make([]int, resolution)
			for x := 0; x < resolution; x++ {
				northRow[x] = rng.Intn(numColors)
			}
		}

		for x := 0; x < resolution; x++ {
			s := southRow[x]
			n := northRow[x]
			w := prevEast
			var e int
			if x == resolution-1 {
				e = leftmostEast
			} else {
				e = rng.Intn(numColors)
			}
			idx, err := rho.Index([4]int{n, e, s, w})
			if err != nil {
				return nil, err
			}
			out.Set(x, y, tileIndexColor(idx))
			prevEast = e
		}
		southRow = northRow
	}
	return out, nil
}

func tileIndexColor(idx int) pixel.Pixel {
	v := uint8(idx)
	return pixel.Pixel{R: v, G: v, B: v}
}
