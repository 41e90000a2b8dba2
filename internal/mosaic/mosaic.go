// Package mosaic composes cached posters into a single grid image.
package mosaic

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // poster decoders
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"time"

	"github.com/mamamia96/moviemosaic/internal/build"
	"github.com/mamamia96/moviemosaic/internal/poster"
)

var placeholder = color.RGBA{R: 0x22, G: 0x22, B: 0x26, A: 0xff}

// Renderer tiles poster cells into a grid, one cell per record.
// Cells without a cached poster get a flat placeholder.
type Renderer struct {
	store *poster.Store
	log   *slog.Logger
}

// New creates a renderer reading poster bytes from store.
func New(store *poster.Store, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{store: store, log: log}
}

// Render builds the mosaic for the given records in order.
func (r *Renderer) Render(ctx context.Context, records []build.Record, username string, lastWatched *time.Time) (image.Image, error) {
	if len(records) == 0 {
		return nil, errors.New("no records to render")
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(records)))))
	rows := (len(records) + cols - 1) / cols

	canvas := image.NewRGBA(image.Rect(0, 0, cols*poster.Width, rows*poster.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(placeholder), image.Point{}, draw.Src)

	for i, rec := range records {
		x := (i % cols) * poster.Width
		y := (i / cols) * poster.Height
		cell := image.Rect(x, y, x+poster.Width, y+poster.Height)

		img := r.posterImage(ctx, rec)
		if img == nil {
			continue
		}
		draw.Draw(canvas, cell, img, img.Bounds().Min, draw.Src)
	}

	r.log.Debug("mosaic rendered",
		"user", username,
		"cells", len(records),
		"cols", cols,
		"rows", rows,
	)
	return canvas, nil
}

func (r *Renderer) posterImage(ctx context.Context, rec build.Record) image.Image {
	if rec.PosterPath == "" {
		return nil
	}
	data, err := r.store.Get(ctx, rec.PosterPath)
	if err != nil {
		if !errors.Is(err, poster.ErrNotFound) {
			r.log.Warn("poster read failed", "filename", rec.PosterPath, "error", err)
		}
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		r.log.Warn("poster decode failed", "filename", rec.PosterPath, "error", err)
		return nil
	}
	return img
}
