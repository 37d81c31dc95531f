// Package patch selects the square sub-regions of the example texture
// that seed the candidate atlas, for both corner mode and edge mode.
package patch

import (
	"errors"
	"math/rand"
)

// Patch identifies an axis-aligned square subregion of an image.
type Patch struct {
	X, Y, Size int
}

// Mode selects which tiling scheme the pipeline operates in.
type Mode int

const (
	ModeCorner Mode = iota
	ModeEdge
)

// ErrPatchSelectionExhausted is returned by SelectEdge when no
// non-overlapping placement is found within the retry cap.
var ErrPatchSelectionExhausted = errors.New("patch: exhausted retries selecting non-overlapping patches")

// SelectCorner returns 2, 3, or 4 fixed patches of side tileSize taken
// from the corners of a resolution x resolution image, in the order
// top-left, bottom-right, bottom-left, top-right.
func SelectCorner(resolution, tileSize, numColors int) ([]Patch, error) {
	if numColors < 2 || numColors > 4 {
		return nil, errors.New("patch: numColors must be 2, 3, or 4")
	}
	patches := []Patch{
		{X: 0, Y: 0, Size: tileSize},
		{X: resolution - tileSize, Y: resolution - tileSize, Size: tileSize},
	}
	if numColors > 2 {
		patches = append(patches, Patch{X: 0, Y: resolution - tileSize, Size: tileSize})
	}
	if numColors > 3 {
		patches = append(patches, Patch{X: resolution - tileSize, Y: 0, Size: tileSize})
	}
	return patches, nil
}

// EdgeSelectionResult holds the two independently-sampled patch sets
// consumed by edge-mode atlas composition.
type EdgeSelectionResult struct {
	Horizontal []Patch
	Vertical   []Patch
}

// SelectEdge draws numColors horizontal-edge patches and numColors
// vertical-edge patches, each of side tileSize, uniformly at random
// within a resolution x resolution image. A candidate is rejected (and
// retried) if its axis-aligned bounding-box max-span against any
// already-accepted patch is less than the sum of the two patch sizes —
// the sufficient non-overlap test from spec.md 4.4. rng is caller
// supplied so selection is reproducible in tests. retryCap bounds the
// number of rejected draws per patch before giving up.
func SelectEdge(rng *rand.Rand, resolution, tileSize, numColors, retryCap int) (EdgeSelectionResult, error) {
	if numColors < 2 || numColors > 4 {
		return EdgeSelectionResult{}, errors.New("patch: numColors must be 2, 3, or 4")
	}
	if tileSize <= 0 || tileSize > resolution {
		return EdgeSelectionResult{}, errors.New("patch: invalid tileSize for resolution")
	}

	var accepted []Patch

	drawOne := func() (Patch, error) {
		maxOrigin := resolution - tileSize
		for attempt := 0; attempt < retryCap; attempt++ {
			var candidate Patch
			if maxOrigin == 0 {
				candidate = Patch{X: 0, Y: 0, Size: tileSize}
			} else {
				candidate = Patch{
					X:    rng.Intn(maxOrigin + 1),
					Y:    rng.Intn(maxOrigin + 1),
					Size: tileSize,
				}
			}
			if nonOverlapping(candidate, accepted) {
				accepted = append(accepted, candidate)
				return candidate, nil
			}
		}
		return Patch{}, ErrPatchSelectionExhausted
	}

	horizontal := make([]Patch, 0, numColors)
	for i := 0; i < numColors; i++ {
		p, err := drawOne()
		if err != nil {
			return EdgeSelectionResult{}, err
		}
		horizontal = append(horizontal, p)
	}

	vertical := make([]Patch, 0, numColors)
	for i := 0; i < numColors; i++ {
		p, err := drawOne()
		if err != nil {
			return EdgeSelectionResult{}, err
		}
		vertical = append(vertical, p)
	}

	return EdgeSelectionResult{Horizontal: horizontal, Vertical: vertical}, nil
}

// nonOverlapping reports whether candidate clears the bounding-box
// max-span test against every patch already accepted.
func nonOverlapping(candidate Patch, accepted []Patch) bool {
	for _, other := range accepted {
		if !separated(candidate, other) {
			return false
		}
	}
	return true
}

// separated implements the sufficient non-overlap test: the
// axis-aligned bounding box of the two patches must span at least the
// sum of their sizes on the x or the y axis.
func separated(a, b Patch) bool {
	minX, maxX := minInt(a.X, b.X), maxInt(a.X+a.Size, b.X+b.Size)
	minY, maxY := minInt(a.Y, b.Y), maxInt(a.Y+a.Size, b.Y+b.Size)
	spanX := maxX - minX
	spanY := maxY - minY
	sumSize := a.Size + b.Size
	return spanX >= sumSize || spanY >= sumSize
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
