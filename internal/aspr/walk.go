package aspr

import (
	"context"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/EmpoweredVote/EV-Population/internal/logger"
)

// VisitFunc is called once per record. file is the slash-separated path of the
// data file relative to the dataset root or the archive, so the same file gives
// the same name either way. Calls for records of the same file are sequential and
// in file order; calls for different files run concurrently.
type VisitFunc func(file string, line int, rec PersonRecord) error

type openFunc func(name string, opts ...Option) (*Reader, error)

// Walk reads every all_states file with up to workers files in flight. The first
// error from fn or from a file cancels the rest and is returned.
func (d *Dataset) Walk(ctx context.Context, workers int, fn VisitFunc, opts ...Option) error {
	files, err := d.AllStatesFiles()
	if err != nil {
		return err
	}
	root := d.Root()
	rel := func(name string) string {
		r, err := filepath.Rel(root, name)
		if err != nil {
			return filepath.ToSlash(name)
		}
		return filepath.ToSlash(r)
	}
	return walk(ctx, files, workers, OpenFile, rel, fn, opts)
}

// Walk reads every .csv member of the archive, like Dataset.Walk.
func (a *Archive) Walk(ctx context.Context, workers int, fn VisitFunc, opts ...Option) error {
	return walk(ctx, a.names, workers, a.Open, func(name string) string { return name }, fn, opts)
}

func walk(ctx context.Context, names []string, workers int, open openFunc, rel func(string) string, fn VisitFunc, opts []Option) error {
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, name := range names {
		if gctx.Err() != nil {
			break
		}
		name := name
		g.Go(func() error {
			return walkFile(gctx, name, rel(name), open, fn, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func walkFile(ctx context.Context, name, visitName string, open openFunc, fn VisitFunc, opts []Option) error {
	start := time.Now()

	r, err := open(name, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	for r.Scan() {
		if r.Records()%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(visitName, r.Line(), r.Record()); err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	logger.LogFile(logger.Ctx(ctx), r.Name(), r.Records(), time.Since(start))
	return nil
}
