package population

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/EmpoweredVote/EV-Population/internal/aspr"
	"github.com/EmpoweredVote/EV-Population/internal/db"
	"github.com/EmpoweredVote/EV-Population/internal/logger"
	"github.com/EmpoweredVote/EV-Population/internal/metrics"
)

// Config configures a command-line import.
type Config struct {
	DatabaseURL string
	// DataPath is the dataset root. Archive, when set, is read instead.
	DataPath  string
	Archive   string
	Namespace string
	Workers   int
	BatchSize int
	Wipe      bool
	Metrics   *metrics.Metrics
}

// Run opens the database and the dataset named by cfg and imports it.
func Run(ctx context.Context, cfg Config) (Result, error) {
	ns := DefaultNamespace
	if cfg.Namespace != "" {
		var err error
		if ns, err = uuid.Parse(cfg.Namespace); err != nil {
			return Result{}, fmt.Errorf("invalid namespace uuid: %w", err)
		}
	}

	d, err := db.Open(cfg.DatabaseURL, logger.Ctx(ctx))
	if err != nil {
		return Result{}, err
	}
	if sqlDB, err := d.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := Init(d); err != nil {
		return Result{}, err
	}

	var src Source
	if cfg.Archive != "" {
		a, err := aspr.OpenArchive(cfg.Archive)
		if err != nil {
			return Result{}, err
		}
		defer a.Close()
		src = a
	} else {
		src = aspr.NewDataset(cfg.DataPath)
	}

	im := &Importer{
		Writer:    NewStore(d),
		Namespace: ns,
		Workers:   cfg.Workers,
		BatchSize: cfg.BatchSize,
		Metrics:   cfg.Metrics,
		Wipe:      cfg.Wipe,
	}
	return im.Import(ctx, src)
}
