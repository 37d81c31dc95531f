// Package packing implements the packing permutation rho: the
// bijection from a tile's per-corner or per-edge color labels to its
// linear index within the T x T atlas grid, for T = numColors^2.
package packing

import "errors"

// Rho maps a tile's label tuple to its linear atlas index.
//
// In corner mode labels are (cne, cse, csw, cnw). In edge mode labels
// are (n, e, s, w).
type Rho interface {
	Index(labels [4]int) (int, error)
	NumColors() int
}

// referencePackingTable is Figure 9 of "An Alternative for Wang Tiles:
// Colored Edges versus Colored Corners" — a fixed 4x4 table whose
// entries encode a corner 4-tuple as (cne<<6)|(cse<<4)|(csw<<2)|cnw.
var referencePackingTable = [16]int{
	0, 16, 68, 1,
	64, 65, 81, 5,
	17, 84, 85, 69,
	4, 80, 21, 20,
}

const referencePackingTableSize = 4

type cornerRho struct {
	numColors  int
	invPacking map[int]int
}

// NewCornerRho inverts the reference packing table against numColors,
// consulting only the numColors^2 x numColors^2 submatrix of the 4x4
// reference table. Values outside [2,4] are rejected. The 4x4 table
// holds exactly the 16 tiles of numColors = 2, so that is the only
// value it builds a permutation for: numColors = 3 or 4 returns the
// "reference packing table too small" error.
func NewCornerRho(numColors int) (Rho, error) {
	if numColors < 2 || numColors > 4 {
		return nil, errors.New("packing: numColors must be 2, 3, or 4")
	}
	tableSize := numColors * numColors
	if referencePackingTableSize < tableSize {
		return nil, errors.New("packing: reference packing table too small for numColors")
	}
	inv := make(map[int]int, tableSize*tableSize)
	for row := 0; row < tableSize; row++ {
		for col := 0; col < tableSize; col++ {
			refIndex := row*referencePackingTableSize + col
			actualIndex := row*tableSize + col
			inv[referencePackingTable[refIndex]] = actualIndex
		}
	}
	return &cornerRho{numColors: numColors, invPacking: inv}, nil
}

func (r *cornerRho) NumColors() int { return r.numColors }

// Index expects labels = [cne, cse, csw, cnw], each in [0, numColors).
func (r *cornerRho) Index(labels [4]int) (int, error) {
	for _, l := range labels {
		if l < 0 || l >= r.numColors {
			return 0, errors.New("packing: corner label out of range")
		}
	}
	cne, cse, csw, cnw := labels[0], labels[1], labels[2], labels[3]
	key := (cne << 6) | (cse << 4) | (csw << 2) | cnw
	idx, ok := r.invPacking[key]
	if !ok {
		return 0, errors.New("packing: no packing table entry for label tuple")
	}
	return idx, nil
}

type edgeRho struct {
	numColors int
}

// NewEdgeRho returns the edge-mode packing permutation:
// rho(n,e,s,w) = row(s,n)*numColors^2 + col(w,e), where row/col are
// both instances of the 1-D pair code pi(a,b) defined in spec.md 4.5.
func NewEdgeRho(numColors int) Rho {
	return &edgeRho{numColors: numColors}
}

func (r *edgeRho) NumColors() int { return r.numColors }

// Index expects labels = [n, e, s, w], each in [0, numColors).
func (r *edgeRho) Index(labels [4]int) (int, error) {
	for _, l := range labels {
		if l < 0 || l >= r.numColors {
			return 0, errors.New("packing: edge label out of range")
		}
	}
	n, e, s, w := labels[0], labels[1], labels[2], labels[3]
	row := pairCode(s, n, r.numColors)
	col := pairCode(w, e, r.numColors)
	tableSize := r.numColors * r.numColors
	return row*tableSize + col, nil
}

// pairCode is the bijection [0,C)^2 -> [0,C^2) from spec.md 4.5:
//
//	a == b:  b > 0 ? (a+1)^2 - 2 : 0
//	a >  b:  b > 0 ? a^2 + 2b - 1 : (a+1)^2 - 1
//	a <  b:  2a + b^2
func pairCode(a, b, numColors int) int {
	switch {
	case a == b:
		if b > 0 {
			return (a+1)*(a+1) - 2
		}
		return 0
	case a > b:
		if b > 0 {
			return a*a + 2*b - 1
		}
		return (a+1)*(a+1) - 1
	default: // a < b
		return 2*a + b*b
	}
}
