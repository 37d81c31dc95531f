// Package atlas composes the candidate tile atlas from selected patches
// and a packing permutation, in both corner and edge mode. Composition
// is parallelized by tile: each tile job writes a disjoint destination
// region, so no lock is required for pixel writes.
package atlas

import (
	"errors"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/packing"
	"github.com/wangtiles/wangtiles/internal/patch"
	"github.com/wangtiles/wangtiles/internal/pixel"
	"github.com/wangtiles/wangtiles/internal/workerpool"
)

var (
	ErrTooFewPatches   = errors.New("atlas: need at least numColors patches per corner slot")
	ErrResolutionShape = errors.New("atlas: source resolution must be an exact multiple of tile_size * numColors^2")
)

// ComposeCorner produces the resolution x resolution candidate atlas for
// corner mode. patches must be in the order returned by
// patch.SelectCorner: top-left, bottom-right, [bottom-left, [top-right]].
func ComposeCorner(source *imagebuf.RGBImage, patches []patch.Patch, rho packing.Rho) (*imagebuf.RGBImage, error) {
	numColors := rho.NumColors()
	if len(patches) < numColors {
		return nil, ErrTooFewPatches
	}
	tileSize := patches[0].Size
	numTilesPerSide := numColors * numColors
	resolution := tileSize * numTilesPerSide
	if resolution%tileSize != 0 {
		return nil, ErrResolutionShape
	}

	out := imagebuf.New[pixel.Pixel](resolution)
	half := tileSize / 2

	var jobs []workerpool.Job
	for cne := 0; cne < numColors; cne++ {
		for cse := 0; cse < numColors; cse++ {
			for csw := 0; csw < numColors; csw++ {
				for cnw := 0; cnw < numColors; cnw++ {
					cne, cse, csw, cnw := cne, cse, csw, cnw
					jobs = append(jobs, func() {
						idx, err := rho.Index([4]int{cne, cse, csw, cnw})
						if err != nil {
							return
						}
						row := idx / numTilesPerSide
						col := idx - row*numTilesPerSide
						ox, oy := col*tileSize, row*tileSize
						corners := [4]patch.Patch{patches[csw], patches[cse], patches[cnw], patches[cne]}
						for y := 0; y < tileSize; y++ {
							northHalf := 0
							if y >= half {
								northHalf = 1
							}
							for x := 0; x < tileSize; x++ {
								eastHalf := 0
								if x >= half {
									eastHalf = 1
								}
								quadrant := corners[(northHalf<<1)|eastHalf]
								sampleY := y + (1-northHalf*2)*half + quadrant.Y
								sampleX := x + (1-eastHalf*2)*half + quadrant.X
								out.Set(ox+x, oy+y, source.Get(sampleX, sampleY))
							}
						}
					})
				}
			}
		}
	}
	workerpool.Run(jobs)
	return out, nil
}

// ComposeEdge produces the candidate atlas for edge mode: every tile is
// filled by four patches contributing to a diamond overlap, additively
// accumulated in normalized float space and clamped on store.
func ComposeEdge(source *imagebuf.RGBImage, sel patch.EdgeSelectionResult, rho packing.Rho) (*imagebuf.RGBImage, error) {
	numColors := rho.NumColors()
	if len(sel.Horizontal) < numColors || len(sel.Vertical) < numColors {
		return nil, ErrTooFewPatches
	}
	tileSize := sel.Horizontal[0].Size
	numTilesPerSide := numColors * numColors
	resolution := tileSize * numTilesPerSide

	out := imagebuf.New[pixel.Pixel](resolution)
	half := tileSize / 2

	var jobs []workerpool.Job
	for n := 0; n < numColors; n++ {
		for e := 0; e < numColors; e++ {
			for s := 0; s < numColors; s++ {
				for w := 0; w < numColors; w++ {
					n, e, s, w := n, e, s, w
					jobs = append(jobs, func() {
						idx, err := rho.Index([4]int{n, e, s, w})
						if err != nil {
							return
						}
						row := idx / numTilesPerSide
						col := idx - row*numTilesPerSide
						ox, oy := col*tileSize, row*tileSize
						fillEdgeTile(out, ox, oy, tileSize, half, source,
							sel.Horizontal[n], sel.Horizontal[s],
							sel.Vertical[e], sel.Vertical[w])
					})
				}
			}
		}
	}
	workerpool.Run(jobs)
	return out, nil
}

// fillEdgeTile fills one tile with the diamond-wedge overlap of its
// four edge patches: north/south contribute the horizontal edges,
// east/west the vertical edges. Iteration is over concentric diamond
// rings r in [0, half), each ring's scan line running from col=r to
// col=tileSize-1-r; the two boundary cells of each scan line are
// weighted 0.5 and the interior 1.0, so the four wedges sum to 1.0 per
// pixel without normalization.
func fillEdgeTile(out *imagebuf.RGBImage, ox, oy, tileSize, half int, source *imagebuf.RGBImage, north, south, east, west patch.Patch) {
	acc := make([][3]float64, tileSize*tileSize)

	add := func(x, y int, p patch.Patch, sx, sy int, weight float64) {
		v := source.Get(p.X+sx, p.Y+sy).Vec()
		i := y*tileSize + x
		acc[i][0] += v[0] * weight
		acc[i][1] += v[1] * weight
		acc[i][2] += v[2] * weight
	}

	for r := 0; r < half; r++ {
		for col := r; col < tileSize-r; col++ {
			weight := 1.0
			if col == r || col == tileSize-1-r {
				weight = 0.5
			}
			// North wedge: top row of the diamond ring, sampled from the
			// north patch's own row r.
			add(col, r, north, col, r, weight)
			// South wedge: bottom row of the ring, sampled from the
			// south patch's own row tileSize-1-r.
			add(col, tileSize-1-r, south, col, tileSize-1-r, weight)
			// West wedge: left column of the ring (transpose of north's
			// scan), sampled from the west patch.
			add(r, col, west, r, col, weight)
			// East wedge: right column of the ring, sampled from the east
			// patch.
			add(tileSize-1-r, col, east, tileSize-1-r, col, weight)
		}
	}

	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			v := acc[y*tileSize+x]
			out.Set(ox+x, oy+y, pixel.FromVec(v))
		}
	}
}
