package population

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/EmpoweredVote/EV-Population/internal/aspr"
	"github.com/EmpoweredVote/EV-Population/internal/logger"
	"github.com/EmpoweredVote/EV-Population/internal/metrics"
)

// Source is a set of dataset files that can be walked in parallel. Both
// *aspr.Dataset and *aspr.Archive implement it.
type Source interface {
	Walk(ctx context.Context, workers int, fn aspr.VisitFunc, opts ...aspr.Option) error
}

// Writer is the part of Store the importer needs.
type Writer interface {
	CopyPersons(ctx context.Context, persons []Person) (int64, error)
	Empty(ctx context.Context) (bool, error)
	Truncate(ctx context.Context) error
}

// Importer loads a dataset into the persons table.
type Importer struct {
	Writer    Writer
	Namespace uuid.UUID
	Workers   int
	BatchSize int
	Metrics   *metrics.Metrics

	// Wipe truncates the persons table first. Without it the import refuses to
	// run against a non-empty table.
	Wipe bool
}

type Result struct {
	Persons  int64         `json:"persons"`
	Copied   int64         `json:"copied"`
	Summary  aspr.Summary  `json:"summary"`
	Duration time.Duration `json:"duration"`
}

func (im *Importer) Import(ctx context.Context, src Source) (Result, error) {
	start := time.Now()
	lg := logger.Ctx(ctx)

	if im.Wipe {
		if err := im.Writer.Truncate(ctx); err != nil {
			return Result{}, fmt.Errorf("truncate persons: %w", err)
		}
	} else {
		empty, err := im.Writer.Empty(ctx)
		if err != nil {
			return Result{}, err
		}
		if !empty {
			return Result{}, fmt.Errorf("refusing to import: %w (set wipe to replace it)", ErrNotEmpty)
		}
	}

	ns := im.Namespace
	if ns == uuid.Nil {
		ns = DefaultNamespace
	}

	tally := aspr.NewTally()
	b := newBatcher(im.BatchSize, func(ctx context.Context, batch []Person) error {
		n, err := im.Writer.CopyPersons(ctx, batch)
		if err != nil {
			return err
		}
		im.Metrics.AddRowsCopied(n)
		return nil
	})

	err := src.Walk(ctx, im.Workers, func(file string, line int, rec aspr.PersonRecord) error {
		tally.Add(rec)
		return b.add(ctx, NewPerson(ns, file, line, rec))
	}, aspr.WithMetrics(im.Metrics), aspr.WithLogger(lg))
	if err == nil {
		err = b.flush(ctx)
	}

	res := Result{
		Persons:  tally.Total(),
		Copied:   b.copied.Load(),
		Summary:  tally.Summary(),
		Duration: time.Since(start),
	}
	if err != nil {
		return res, err
	}

	lg.Info().
		Int64("persons", res.Persons).
		Int64("copied", res.Copied).
		Dur("duration", res.Duration).
		Msg("import finished")
	return res, nil
}

// batcher collects persons from concurrent walkers and hands full batches to
// write outside the lock.
type batcher struct {
	mu     sync.Mutex
	buf    []Person
	size   int
	write  func(context.Context, []Person) error
	copied atomic.Int64
}

func newBatcher(size int, write func(context.Context, []Person) error) *batcher {
	if size < 1 {
		size = 1
	}
	return &batcher{buf: make([]Person, 0, size), size: size, write: write}
}

func (b *batcher) add(ctx context.Context, p Person) error {
	b.mu.Lock()
	b.buf = append(b.buf, p)
	if len(b.buf) < b.size {
		b.mu.Unlock()
		return nil
	}
	full := b.buf
	b.buf = make([]Person, 0, b.size)
	b.mu.Unlock()

	return b.send(ctx, full)
}

func (b *batcher) flush(ctx context.Context) error {
	b.mu.Lock()
	rest := b.buf
	b.buf = nil
	b.mu.Unlock()

	if len(rest) == 0 {
		return nil
	}
	return b.send(ctx, rest)
}

func (b *batcher) send(ctx context.Context, batch []Person) error {
	if err := b.write(ctx, batch); err != nil {
		return err
	}
	b.copied.Add(int64(len(batch)))
	return nil
}
