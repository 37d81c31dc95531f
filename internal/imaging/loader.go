// Package imaging is the ambient convenience codec for artist-supplied
// example textures: PNG/JPEG/WEBP decode and PNG encode, sitting
// alongside internal/rawcodec's header-less binary format that the
// CLI's positional arguments actually name. A user with a PNG example
// texture converts it once through this package rather than hand
// producing a raw file.
package imaging

import (
	"fmt"
	"image"
	stdcolor "image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/pixel"
)

// Load reads an example texture from disk. Supports PNG, JPEG, and
// WEBP. The path is normalized: ~ is expanded to the user's home
// directory, and relative paths are resolved to absolute.
func Load(path string) (image.Image, error) {
	path = ExpandPath(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return png.Decode(f)
	case ".jpg", ".jpeg":
		return jpeg.Decode(f)
	case ".webp":
		// Decoded via the blank import of golang.org/x/image/webp
		img, _, err := image.Decode(f)
		return img, err
	default:
		return nil, fmt.Errorf("unsupported image format %q (supported: png, jpg, jpeg, webp)", ext)
	}
}

// ToRGBImage converts a decoded image.Image into the square
// imagebuf.RGBImage the pipeline operates on. A non-square image is
// rejected with an error; a non-power-of-two size is not checked here
// and is the caller's responsibility to reject.
func ToRGBImage(img image.Image) (*imagebuf.RGBImage, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w != h {
		return nil, fmt.Errorf("imaging: image is %dx%d, must be square", w, h)
	}
	out := imagebuf.New[pixel.Pixel](w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.Set(x, y, pixel.Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)})
		}
	}
	return out, nil
}

// FromRGBImage converts an imagebuf.RGBImage back into a standard
// image.Image for PNG encoding or HTTP preview serving.
func FromRGBImage(img *imagebuf.RGBImage) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, img.Resolution, img.Resolution))
	for y := 0; y < img.Resolution; y++ {
		for x := 0; x < img.Resolution; x++ {
			p := img.Get(x, y)
			out.SetRGBA(x, y, colorRGBA(p.R, p.G, p.B, 255))
		}
	}
	return out
}

func colorRGBA(r, g, b, a uint8) stdcolor.RGBA {
	return stdcolor.RGBA{R: r, G: g, B: b, A: a}
}

// SavePNG writes an image to disk as PNG.
// The path is normalized: ~ is expanded and relative paths are resolved.
func SavePNG(path string, img image.Image) error {
	path = ExpandPath(path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// homeTildePrefixes are the leading substrings that mean "relative to
// the user's home directory" on the platforms this codec runs on.
var homeTildePrefixes = []string{"~/", "~\\"}

// ExpandPath normalizes a file path by expanding a leading ~ to the
// user's home directory and resolving relative paths to absolute.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	} else {
		for _, prefix := range homeTildePrefixes {
			if !strings.HasPrefix(path, prefix) {
				continue
			}
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[len(prefix):])
			}
			break
		}
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return filepath.Clean(path)
}
