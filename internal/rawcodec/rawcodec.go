// Package rawcodec implements the header-less binary image format
// used by every CLI subcommand: row-major pixels with no metadata, row
// order reversed on disk relative to memory so files are compatible
// with tools that expect the first row on disk to be the image's top.
package rawcodec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/pixel"
)

var ErrShortRead = errors.New("rawcodec: file too short for the requested resolution")

// ReadRGB reads a resolution x resolution raw RGB image (3 bytes per
// pixel, R,G,B) from path. The file's first row on disk becomes the
// in-memory image's last row.
func ReadRGB(path string, resolution int) (*imagebuf.RGBImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rawcodec: open %s: %w", path, err)
	}
	defer f.Close()

	img := imagebuf.New[pixel.Pixel](resolution)
	r := bufio.NewReader(f)
	row := make([]byte, resolution*3)
	for fileRow := 0; fileRow < resolution; fileRow++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, fmt.Errorf("rawcodec: read %s: %w", path, ErrShortRead)
		}
		memRow := resolution - 1 - fileRow
		for x := 0; x < resolution; x++ {
			img.Set(x, memRow, pixel.Pixel{R: row[x*3], G: row[x*3+1], B: row[x*3+2]})
		}
	}
	return img, nil
}

// WriteRGB writes img as a raw RGB file, bottom-to-top so the on-disk
// row order matches ReadRGB's expectation.
func WriteRGB(path string, img *imagebuf.RGBImage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rawcodec: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	row := make([]byte, img.Resolution*3)
	for memRow := img.Resolution - 1; memRow >= 0; memRow-- {
		for x := 0; x < img.Resolution; x++ {
			p := img.Get(x, memRow)
			row[x*3], row[x*3+1], row[x*3+2] = p.R, p.G, p.B
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("rawcodec: write %s: %w", path, err)
		}
	}
	return w.Flush()
}

// WriteRGBA writes img and mask interleaved as a raw RGBA file (4
// bytes per pixel, R,G,B,A), bottom-to-top, mask supplying the alpha
// channel. Used by the --tiles command to carry the cut mask alongside
// the candidate atlas instead of pre-blending it.
func WriteRGBA(path string, img *imagebuf.RGBImage, mask *imagebuf.Mask) error {
	if img.Resolution != mask.Resolution {
		return errors.New("rawcodec: image and mask resolution must match")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rawcodec: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	row := make([]byte, img.Resolution*4)
	for memRow := img.Resolution - 1; memRow >= 0; memRow-- {
		for x := 0; x < img.Resolution; x++ {
			p := img.Get(x, memRow)
			row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = p.R, p.G, p.B, mask.Get(x, memRow)
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("rawcodec: write %s: %w", path, err)
		}
	}
	return w.Flush()
}
