// Package build assembles enriched movie records for one user's feed.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mamamia96/moviemosaic/internal/feed"
	"github.com/mamamia96/moviemosaic/internal/poster"
)

// Record is one enriched movie entry, in selection order.
// PosterPath is non-empty only when PosterURL is non-empty.
type Record struct {
	Title      string
	Director   string
	Rating     float64 // -1 = unknown
	PosterPath string
	PosterURL  string
}

// Source fetches raw feed bytes for a username.
type Source interface {
	Fetch(ctx context.Context, username string) ([]byte, error)
}

// Metadata resolves a feed key into director name and poster URL.
// Absent values are empty strings, not errors.
type Metadata interface {
	Director(ctx context.Context, key feed.Key) (string, error)
	PosterURL(ctx context.Context, key feed.Key) (string, error)
}

// Posters caches poster artwork for (filename, url) pairs.
type Posters interface {
	DownloadBatch(ctx context.Context, pairs []poster.Pair) error
}

// Deps are the collaborators a Builder orchestrates.
type Deps struct {
	Source    Source
	Metadata  Metadata
	Posters   Posters
	PosterDir string
	Now       func() time.Time
	Logger    *slog.Logger
}

// Builder drives the feed → records pipeline for one (username, mode).
type Builder struct {
	username string
	mode     feed.Mode
	deps     Deps

	built       bool
	status      Status
	records     []Record
	lastWatched *time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithStatus rehydrates a prior build outcome; Build becomes a no-op.
func WithStatus(st Status) Option {
	return func(b *Builder) {
		b.status = st
		b.built = true
	}
}

// WithRecords rehydrates previously assembled records; Build becomes a
// no-op and the status is success.
func WithRecords(records []Record, lastWatched *time.Time) Option {
	return func(b *Builder) {
		b.records = records
		b.lastWatched = lastWatched
		b.status = OKStatus()
		b.built = true
	}
}

// New creates a builder. No network work happens until Build.
func New(username string, mode feed.Mode, deps Deps, opts ...Option) *Builder {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	b := &Builder{
		username: username,
		mode:     mode,
		deps:     deps,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the fresh-build path unless the builder was rehydrated.
// Failures are reported through the returned Status, never panics or
// errors; per-entry enrichment faults degrade to absent values.
func (b *Builder) Build(ctx context.Context) Status {
	if b.built {
		return b.status
	}
	b.built = true

	raw, err := b.deps.Source.Fetch(ctx, b.username)
	if err != nil {
		b.status = Fail(KindFetchFailed, fmt.Sprintf("fetching feed for %s: %v", b.username, err))
		return b.status
	}
	if feed.NotFound(raw) {
		b.status = Fail(KindNoFeed, fmt.Sprintf("no feed for %s", b.username))
		return b.status
	}

	list, err := feed.Transform(raw, b.username, b.mode, b.deps.Now())
	if err != nil {
		b.status = Fail(KindFetchFailed, fmt.Sprintf("transforming feed for %s: %v", b.username, err))
		return b.status
	}
	if list.Empty() {
		b.status = Fail(KindNoEntries, fmt.Sprintf("no valid entries for %s", b.username))
		return b.status
	}

	titles := list.Titles()
	ratings := list.Ratings()
	keys := list.Keys()
	files := list.PosterFiles(b.deps.PosterDir)

	records := make([]Record, len(titles))
	for i := range titles {
		rec := Record{
			Title:      titles[i],
			Rating:     ratings[i],
			PosterPath: files[i],
		}
		if keys[i].ID != 0 {
			rec.Director = b.lookupDirector(ctx, keys[i], titles[i])
			rec.PosterURL = b.lookupPosterURL(ctx, keys[i], titles[i])
		}
		if rec.PosterURL == "" {
			rec.PosterPath = ""
		}
		records[i] = rec
	}

	b.records = records
	b.lastWatched = list.LastWatched()
	b.status = OKStatus()
	return b.status
}

// lookupDirector degrades a failed lookup to an absent director.
func (b *Builder) lookupDirector(ctx context.Context, key feed.Key, title string) string {
	director, err := b.deps.Metadata.Director(ctx, key)
	if err != nil {
		b.deps.Logger.Warn("director lookup failed", "title", title, "error", err)
		return ""
	}
	return director
}

func (b *Builder) lookupPosterURL(ctx context.Context, key feed.Key, title string) string {
	url, err := b.deps.Metadata.PosterURL(ctx, key)
	if err != nil {
		b.deps.Logger.Warn("poster url lookup failed", "title", title, "error", err)
		return ""
	}
	return url
}

// Status returns the build outcome. Zero value until Build runs.
func (b *Builder) Status() Status {
	return b.status
}

// Records downloads all posters for the build, blocking until every fetch
// settles, then returns the records in selection order.
func (b *Builder) Records(ctx context.Context) ([]Record, error) {
	if !b.built || !b.status.OK {
		return nil, fmt.Errorf("records for %s: build not successful", b.username)
	}

	pairs := make([]poster.Pair, 0, len(b.records))
	for _, rec := range b.records {
		pairs = append(pairs, poster.Pair{Filename: rec.PosterPath, URL: rec.PosterURL})
	}
	if err := b.deps.Posters.DownloadBatch(ctx, pairs); err != nil {
		return nil, fmt.Errorf("download posters: %w", err)
	}

	return b.records, nil
}

// LastWatched returns the oldest selected watched date, and only when the
// mode asked for the most-recent selection; nil otherwise.
func (b *Builder) LastWatched() *time.Time {
	if b.mode != feed.ModeRecent || len(b.records) == 0 {
		return nil
	}
	return b.lastWatched
}
