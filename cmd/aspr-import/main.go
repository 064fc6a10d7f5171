package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/EmpoweredVote/EV-Population/internal/aspr"
	"github.com/EmpoweredVote/EV-Population/internal/config"
	"github.com/EmpoweredVote/EV-Population/internal/logger"
	"github.com/EmpoweredVote/EV-Population/internal/metrics"
	"github.com/EmpoweredVote/EV-Population/internal/population"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		configFile = flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
		dataPath   = flag.String("data", "", "dataset root (default: config data_path / ASPR_DATA_PATH)")
		archive    = flag.String("archive", "", "read a zipped dataset instead of the data directory")
		dbURL      = flag.String("db", "", "DATABASE_URL (default: config / env)")
		namespace  = flag.String("namespace", "", "UUID namespace for person ids (stable forever)")
		workers    = flag.Int("workers", 0, "files read in parallel (default: config)")
		batch      = flag.Int("batch", 0, "rows per COPY batch (default: config)")
		wipe       = flag.Bool("wipe", false, "DANGER: truncates population.persons before importing")
		dryRun     = flag.Bool("dry-run", false, "read and tally the dataset only; no DB writes")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	overrideString(&cfg.DataPath, *dataPath)
	overrideString(&cfg.DatabaseURL, *dbURL)
	overrideString(&cfg.Namespace, *namespace)
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *batch > 0 {
		cfg.BatchSize = *batch
	}
	cfg.Log.ServiceName = "aspr-import"

	logger.Init(cfg.Log)
	lg := logger.L()

	if err := cfg.Validate(); err != nil {
		lg.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, lg)

	m := metrics.New(prometheus.NewRegistry())
	p := message.NewPrinter(language.English)

	if *dryRun {
		sum, elapsed, err := tally(ctx, cfg, *archive, m)
		if err != nil {
			lg.Fatal().Err(err).Msg("dry run failed")
		}
		printSummary(p, sum, elapsed)
		p.Printf("Dry run complete. No changes made.\n")
		return
	}

	if err := cfg.RequireDatabase(); err != nil {
		lg.Fatal().Err(err).Msg("invalid configuration")
	}

	res, err := population.Run(ctx, population.Config{
		DatabaseURL: cfg.DatabaseURL,
		DataPath:    cfg.DataPath,
		Archive:     *archive,
		Namespace:   cfg.Namespace,
		Workers:     cfg.Workers,
		BatchSize:   cfg.BatchSize,
		Wipe:        *wipe,
		Metrics:     m,
	})
	if err != nil {
		lg.Fatal().Err(err).Msg("import failed")
	}
	printSummary(p, res.Summary, res.Duration)
	p.Printf("Copied %d rows.\n", res.Copied)
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func tally(ctx context.Context, cfg config.Config, archive string, m *metrics.Metrics) (aspr.Summary, time.Duration, error) {
	start := time.Now()
	t := aspr.NewTally()
	visit := func(_ string, _ int, rec aspr.PersonRecord) error {
		t.Add(rec)
		return nil
	}

	var err error
	if archive != "" {
		var a *aspr.Archive
		if a, err = aspr.OpenArchive(archive); err != nil {
			return aspr.Summary{}, 0, err
		}
		defer a.Close()
		err = a.Walk(ctx, cfg.Workers, visit, aspr.WithMetrics(m))
	} else {
		err = aspr.NewDataset(cfg.DataPath).Walk(ctx, cfg.Workers, visit, aspr.WithMetrics(m))
	}
	return t.Summary(), time.Since(start), err
}

func printSummary(p *message.Printer, sum aspr.Summary, elapsed time.Duration) {
	p.Printf("Read %d persons in %s\n", sum.Persons, elapsed.Round(time.Millisecond))

	states := make([]string, 0, len(sum.States))
	for s := range sum.States {
		states = append(states, s)
	}
	sort.Strings(states)
	for _, s := range states {
		p.Printf("  %-3s %12d\n", s, sum.States[s])
	}

	cats := make([]string, 0, len(sum.Categories))
	for c := range sum.Categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		p.Printf("  %-15s %12d\n", c, sum.Categories[c])
	}
}
