package task

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/mamamia96/moviemosaic/internal/build"
	"github.com/mamamia96/moviemosaic/internal/feed"
)

// Builder runs one user's record build.
type Builder interface {
	Build(ctx context.Context) build.Status
	Records(ctx context.Context) ([]build.Record, error)
	LastWatched() *time.Time
}

// BuilderFactory creates a Builder for one task.
type BuilderFactory func(username string, mode feed.Mode) Builder

// Renderer composes the final image from assembled records.
type Renderer interface {
	Render(ctx context.Context, records []build.Record, username string, lastWatched *time.Time) (image.Image, error)
}

// Worker polls the task store and processes tasks strictly one at a time,
// in FIFO order. The in-memory queue only buffers arrival bursts; it never
// reorders. Failed tasks are not retried.
type Worker struct {
	tasks      *Store
	results    *ResultStore
	newBuilder BuilderFactory
	renderer   Renderer
	interval   time.Duration
	queue      []*Task
	log        *slog.Logger
}

// NewWorker creates a worker. interval is the poll period.
func NewWorker(tasks *Store, results *ResultStore, factory BuilderFactory,
	renderer Renderer, interval time.Duration, log *slog.Logger) *Worker {

	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Worker{
		tasks:      tasks,
		results:    results,
		newBuilder: factory,
		renderer:   renderer,
		interval:   interval,
		log:        log,
	}
}

// Run polls until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("worker started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce sweeps newly submitted tasks into the queue, then processes the
// head task to a terminal status.
func (w *Worker) runOnce(ctx context.Context) {
	ready, err := w.tasks.ListByStatus(StatusReady)
	if err != nil {
		w.log.Error("list ready tasks failed", "error", err)
	}
	for _, t := range ready {
		if err := w.tasks.Transition(t, StatusQueued); err != nil {
			w.log.Error("queue task failed", "task_id", t.ID, "error", err)
			continue
		}
		w.queue = append(w.queue, t)
	}

	if len(w.queue) == 0 {
		return
	}

	head := w.queue[0]
	w.queue = w.queue[1:]
	w.process(ctx, head)
}

func (w *Worker) process(ctx context.Context, t *Task) {
	if err := w.tasks.Transition(t, StatusCollecting); err != nil {
		w.log.Error("transition failed", "task_id", t.ID, "error", err)
		return
	}

	b := w.newBuilder(t.User, t.Mode)

	if st := b.Build(ctx); !st.OK {
		w.fail(t, st.Message)
		return
	}

	records, err := b.Records(ctx)
	if err != nil {
		w.fail(t, "assembling records: "+err.Error())
		return
	}

	img, err := w.renderer.Render(ctx, records, t.User, b.LastWatched())
	if err != nil {
		w.fail(t, "rendering image: "+err.Error())
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		w.fail(t, "encoding image: "+err.Error())
		return
	}

	if err := w.results.Add(t.ID, buf.Bytes(), time.Now()); err != nil {
		w.fail(t, "storing result: "+err.Error())
		return
	}

	if err := w.tasks.Transition(t, StatusComplete); err != nil {
		w.log.Error("complete transition failed", "task_id", t.ID, "error", err)
		return
	}

	w.log.Info("task complete", "task_id", t.ID, "user", t.User, "movies", len(records))
}

func (w *Worker) fail(t *Task, message string) {
	w.log.Warn("task failed", "task_id", t.ID, "user", t.User, "error", message)
	if err := w.tasks.Fail(t, message); err != nil {
		w.log.Error("error transition failed", "task_id", t.ID, "error", err)
	}
}
