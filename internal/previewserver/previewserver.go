// Package previewserver exposes the most recently generated tile set,
// index map, palette, and per-tile constraint image over HTTP for
// interactive inspection, using go-chi/chi for routing.
package previewserver

import (
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wangtiles/wangtiles/internal/imagebuf"
	"github.com/wangtiles/wangtiles/internal/imaging"
	"github.com/wangtiles/wangtiles/internal/pixel"
)

// Snapshot is the state a Server serves. All fields are optional; a
// nil field yields a 404 for the routes that depend on it.
type Snapshot struct {
	Atlas       *imagebuf.RGBImage
	IndexMap    *imagebuf.RGBImage
	Palette     *imagebuf.RGBImage
	Constraints *imagebuf.RGBImage
	TileSize    int
	NumColors   int
}

// Server holds the current Snapshot behind a mutex, so a caller can
// keep regenerating tiles on a schedule while requests are served
// against whatever was current at request time.
type Server struct {
	mu       sync.RWMutex
	snapshot Snapshot
	router   chi.Router
}

// New builds a Server with its routes registered.
func New() *Server {
	s := &Server{}
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/tiles", s.handleTilesInfo)
	r.Get("/tiles/{index}.png", s.handleTile)
	r.Get("/index-map.png", s.handleImage(func(snap Snapshot) *imagebuf.RGBImage { return snap.IndexMap }))
	r.Get("/palette.png", s.handleImage(func(snap Snapshot) *imagebuf.RGBImage { return snap.Palette }))
	// The constraint image is shared across every tile (seam.Run builds
	// one constraint image per pipeline run, not per tile), so the
	// {tile} segment is accepted for URL symmetry with /tiles/{index}.png
	// but does not select a different image.
	r.Get("/constraints/{tile}.png", s.handleImage(func(snap Snapshot) *imagebuf.RGBImage { return snap.Constraints }))
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Update replaces the served Snapshot. Safe to call concurrently with
// ServeHTTP.
func (s *Server) Update(snap Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

func (s *Server) current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Server) handleTilesInfo(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap.Atlas == nil {
		http.Error(w, "no atlas generated yet", http.StatusNotFound)
		return
	}
	numTiles := snap.NumColors * snap.NumColors
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"resolution": snap.Atlas.Resolution,
		"tileSize":   snap.TileSize,
		"numColors":  snap.NumColors,
		"tileCount":  numTiles * numTiles,
	})
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap.Atlas == nil || snap.TileSize == 0 {
		http.Error(w, "no atlas generated yet", http.StatusNotFound)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid tile index", http.StatusBadRequest)
		return
	}
	numTiles := snap.NumColors * snap.NumColors
	tilesPerSide := numTiles
	if index < 0 || index >= tilesPerSide*tilesPerSide {
		http.Error(w, fmt.Sprintf("tile index out of range [0,%d)", tilesPerSide*tilesPerSide), http.StatusNotFound)
		return
	}
	row, col := index/tilesPerSide, index%tilesPerSide
	crop := cropTile(snap.Atlas, row, col, snap.TileSize)
	writePNG(w, crop)
}

func (s *Server) handleImage(pick func(Snapshot) *imagebuf.RGBImage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img := pick(s.current())
		if img == nil {
			http.Error(w, "not generated yet", http.StatusNotFound)
			return
		}
		writePNG(w, img)
	}
}

// cropTile extracts one tileSize x tileSize tile from atlas at grid
// position (row, col).
func cropTile(atlas *imagebuf.RGBImage, row, col, tileSize int) *imagebuf.RGBImage {
	out := imagebuf.New[pixel.Pixel](tileSize)
	ox, oy := col*tileSize, row*tileSize
	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			out.Set(x, y, atlas.Get(ox+x, oy+y))
		}
	}
	return out
}

func writePNG(w http.ResponseWriter, img *imagebuf.RGBImage) {
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, imaging.FromRGBImage(img)); err != nil {
		log.Printf("previewserver: encoding PNG: %v", err)
	}
}
