// Package server wires the background components of the daemon.
package server

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mamamia96/moviemosaic/internal/build"
	"github.com/mamamia96/moviemosaic/internal/feed"
	"github.com/mamamia96/moviemosaic/internal/mosaic"
	"github.com/mamamia96/moviemosaic/internal/poster"
	"github.com/mamamia96/moviemosaic/internal/task"
	"github.com/mamamia96/moviemosaic/internal/tmdb"
)

// Config for the background worker components.
type Config struct {
	PollInterval      time.Duration
	PosterDir         string
	PosterConcurrency int
}

// Runner manages the worker pipeline.
type Runner struct {
	db     *sql.DB
	source *feed.Source
	meta   *tmdb.Client
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(db *sql.DB, source *feed.Source, meta *tmdb.Client, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		db:     db,
		source: source,
		meta:   meta,
		config: cfg,
		logger: logger,
	}
}

// tmdbMetadata adapts the TMDB client to the builder's Metadata seam.
type tmdbMetadata struct {
	client *tmdb.Client
}

func (m tmdbMetadata) Director(ctx context.Context, key feed.Key) (string, error) {
	return m.client.Director(ctx, key.ID, tmdb.MediaType(key.Kind))
}

func (m tmdbMetadata) PosterURL(ctx context.Context, key feed.Key) (string, error) {
	return m.client.PosterURL(ctx, key.ID, tmdb.MediaType(key.Kind))
}

// Run starts the task worker and blocks until the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	posterStore := poster.NewStore(r.db)
	fetcher := poster.NewFetcher(posterStore, r.logger.With("component", "posters"),
		poster.WithConcurrency(r.config.PosterConcurrency))
	renderer := mosaic.New(posterStore, r.logger.With("component", "mosaic"))

	deps := build.Deps{
		Source:    r.source,
		Metadata:  tmdbMetadata{client: r.meta},
		Posters:   fetcher,
		PosterDir: r.config.PosterDir,
		Logger:    r.logger.With("component", "build"),
	}
	factory := func(username string, mode feed.Mode) task.Builder {
		return build.New(username, mode, deps)
	}

	worker := task.NewWorker(
		task.NewStore(r.db),
		task.NewResultStore(r.db),
		factory,
		renderer,
		r.config.PollInterval,
		r.logger.With("component", "worker"),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(ctx)
	})

	return g.Wait()
}
