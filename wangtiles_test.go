package wangtiles

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/imaging"
	"github.com/wangtiles/wangtiles/internal/pixel"
)

func gradientSource(resolution int) *imagebuf.RGBImage {
	img := imagebuf.New[pixel.Pixel](resolution)
	for y := 0; y < resolution; y++ {
		for x := 0; x < resolution; x++ {
			img.Set(x, y, pixel.Pixel{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256)})
		}
	}
	return img
}

func TestGenerateTilesCornerMode(t *testing.T) {
	// tileSize 8, numColors 2 -> resolution 8*4=32.
	source := gradientSource(32)
	opts := DefaultOptions()
	opts.Mode = ModeCorner
	opts.NumColors = 2
	opts.VisualScale = 4

	res, err := GenerateTiles(source, 8, opts, nil)
	if err != nil {
		t.Fatalf("GenerateTiles: %v", err)
	}
	if res.Atlas.Resolution != 32 {
		t.Errorf("atlas resolution = %d, want 32", res.Atlas.Resolution)
	}
	if res.Candidate.Resolution != 32 {
		t.Errorf("candidate resolution = %d, want 32", res.Candidate.Resolution)
	}
}

func TestGenerateTilesEdgeMode(t *testing.T) {
	source := gradientSource(32)
	opts := DefaultOptions()
	opts.Mode = ModeEdge
	opts.NumColors = 2
	opts.VisualScale = 4
	opts.Rand = rand.New(rand.NewSource(7))

	res, err := GenerateTiles(source, 8, opts, nil)
	if err != nil {
		t.Fatalf("GenerateTiles: %v", err)
	}
	if len(res.Stats) != 16 {
		t.Errorf("got %d tile stats, want 16", len(res.Stats))
	}
}

func TestGenerateTilesRejectsResolutionMismatch(t *testing.T) {
	source := gradientSource(30)
	opts := DefaultOptions()
	if _, err := GenerateTiles(source, 8, opts, nil); err == nil {
		t.Fatal("expected error for resolution mismatch")
	}
}

func TestGenerateIndexMapBothModes(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeCorner
	opts.NumColors = 2
	if _, err := GenerateIndexMap(8, opts); err != nil {
		t.Fatalf("corner: %v", err)
	}
	opts.Mode = ModeEdge
	if _, err := GenerateIndexMap(8, opts); err != nil {
		t.Fatalf("edge: %v", err)
	}
}

func TestGeneratePaletteEdgeMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeEdge
	opts.NumColors = 2
	img, err := GeneratePalette(32, 8, opts, DefaultReferenceColors())
	if err != nil {
		t.Fatalf("GeneratePalette: %v", err)
	}
	if img.Resolution != 32 {
		t.Errorf("resolution = %d, want 32", img.Resolution)
	}
}

func TestGeneratePaletteRejectsCornerMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeCorner
	opts.NumColors = 2
	if _, err := GeneratePalette(32, 8, opts, DefaultReferenceColors()); err == nil {
		t.Fatal("expected error for corner mode")
	}
}

func TestRawRoundTrip(t *testing.T) {
	source := gradientSource(16)
	path := filepath.Join(t.TempDir(), "src.raw")
	if err := SaveRawRGB(path, source); err != nil {
		t.Fatalf("SaveRawRGB: %v", err)
	}
	got, err := LoadRaw(path, 16)
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	for i := range source.Pixels {
		if source.Pixels[i] != got.Pixels[i] {
			t.Fatalf("pixel %d mismatch", i)
		}
	}
}

func TestLoadRawFromImageAndSavePNG(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "src.png")

	// Build a tiny PNG via the imaging package's own encoder so this
	// test does not depend on an external fixture file.
	tmp := gradientSource(4)
	if err := SavePNG(pngPath, imaging.FromRGBImage(tmp)); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	rgb, err := LoadRawFromImage(pngPath)
	if err != nil {
		t.Fatalf("LoadRawFromImage: %v", err)
	}
	if rgb.Resolution != 4 {
		t.Errorf("resolution = %d, want 4", rgb.Resolution)
	}
	if _, err := os.Stat(pngPath); err != nil {
		t.Fatalf("png not written: %v", err)
	}
}
