// Package imagebuf implements the fixed-resolution square pixel buffer
// used across the pipeline: RGB images and single-channel masks are the
// same generic buffer instantiated over different element types.
package imagebuf

import "github.com/wangtiles/wangtiles/internal/pixel"

// Buffer is a square, row-major pixel buffer with origin at (0,0).
// It is value-owned by whoever creates it; cloning is explicit.
type Buffer[T any] struct {
	Resolution int
	Pixels     []T
}

// New allocates a resolution x resolution buffer. Content is the zero
// value of T.
func New[T any](resolution int) *Buffer[T] {
	return &Buffer[T]{
		Resolution: resolution,
		Pixels:     make([]T, resolution*resolution),
	}
}

// Get returns the value at (x,y). x and y must be in [0, Resolution).
func (b *Buffer[T]) Get(x, y int) T {
	return b.Pixels[y*b.Resolution+x]
}

// Set stores v at (x,y). x and y must be in [0, Resolution).
func (b *Buffer[T]) Set(x, y int, v T) {
	b.Pixels[y*b.Resolution+x] = v
}

// WrapGet returns the value at (x,y) with both coordinates reduced
// modulo Resolution, negative-safe.
func (b *Buffer[T]) WrapGet(x, y int) T {
	r := b.Resolution
	x = ((x % r) + r) % r
	y = ((y % r) + r) % r
	return b.Get(x, y)
}

// Clone returns an independent copy of b.
func (b *Buffer[T]) Clone() *Buffer[T] {
	out := &Buffer[T]{
		Resolution: b.Resolution,
		Pixels:     make([]T, len(b.Pixels)),
	}
	copy(out.Pixels, b.Pixels)
	return out
}

// RGBImage is a buffer of RGB pixels.
type RGBImage = Buffer[pixel.Pixel]

// Mask is a buffer of single-channel (0..255) values.
type Mask = Buffer[uint8]

// DownsampleRGB produces a Resolution/2 image whose pixel (x,y) is the
// mean, in linear float space, of the 2x2 block at (2x,2y) in src.
// src.Resolution must be even.
func DownsampleRGB(src *RGBImage) *RGBImage {
	out := New[pixel.Pixel](src.Resolution / 2)
	for y := 0; y < out.Resolution; y++ {
		for x := 0; x < out.Resolution; x++ {
			var acc [3]float64
			for _, p := range [4]pixel.Pixel{
				src.Get(2*x, 2*y),
				src.Get(2*x+1, 2*y),
				src.Get(2*x, 2*y+1),
				src.Get(2*x+1, 2*y+1),
			} {
				v := p.Vec()
				acc[0] += v[0]
				acc[1] += v[1]
				acc[2] += v[2]
			}
			out.Set(x, y, pixel.FromVec([3]float64{acc[0] / 4, acc[1] / 4, acc[2] / 4}))
		}
	}
	return out
}

// UpsampleRGB replicates each source pixel into a 2x2 block, producing
// a 2*Resolution image.
func UpsampleRGB(src *RGBImage) *RGBImage {
	return upsample(src)
}

// DownsampleMask averages a 2x2 block of mask values (rounded to the
// nearest integer) into one output value.
func DownsampleMask(src *Mask) *Mask {
	out := New[uint8](src.Resolution / 2)
	for y := 0; y < out.Resolution; y++ {
		for x := 0; x < out.Resolution; x++ {
			sum := int(src.Get(2*x, 2*y)) + int(src.Get(2*x+1, 2*y)) +
				int(src.Get(2*x, 2*y+1)) + int(src.Get(2*x+1, 2*y+1))
			out.Set(x, y, uint8((sum+2)/4))
		}
	}
	return out
}

// UpsampleMask replicates each source value into a 2x2 block.
func UpsampleMask(src *Mask) *Mask {
	return upsample(src)
}

func upsample[T any](src *Buffer[T]) *Buffer[T] {
	out := New[T](src.Resolution * 2)
	for y := 0; y < src.Resolution; y++ {
		for x := 0; x < src.Resolution; x++ {
			v := src.Get(x, y)
			out.Set(2*x, 2*y, v)
			out.Set(2*x+1, 2*y, v)
			out.Set(2*x, 2*y+1, v)
			out.Set(2*x+1, 2*y+1, v)
		}
	}
	return out
}
