package population

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EmpoweredVote/EV-Population/internal/logger"
)

// ImportJob tracks an import started over HTTP.
type ImportJob struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"` // "running", "completed", "failed"
	Wipe        bool       `json:"wipe"`
	Persons     int64      `json:"persons"`
	Copied      int64      `json:"copied"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type jobRegistry struct {
	mu      sync.Mutex
	jobs    map[string]*ImportJob
	running string
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*ImportJob)}
}

// start registers a new running job, or returns false if one is already running.
func (r *jobRegistry) start(wipe bool) (*ImportJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running != "" {
		return nil, false
	}
	job := &ImportJob{
		ID:        uuid.New().String(),
		Status:    "running",
		Wipe:      wipe,
		StartedAt: time.Now(),
	}
	r.jobs[job.ID] = job
	r.running = job.ID
	return job, true
}

func (r *jobRegistry) finish(job *ImportJob, res Result, err error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	job.Persons = res.Persons
	job.Copied = res.Copied
	job.CompletedAt = &now
	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
	} else {
		job.Status = "completed"
	}
	r.running = ""
}

func (r *jobRegistry) get(id string) (ImportJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ImportJob{}, false
	}
	return *job, true
}

// list returns snapshots of every job, newest first.
func (r *jobRegistry) list() []ImportJob {
	r.mu.Lock()
	out := make([]ImportJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, *job)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// runImport imports the service dataset in the background and records the run.
func (s *Service) runImport(job *ImportJob) {
	ctx := logger.WithLogger(context.Background(),
		logger.L().With().Str("job", job.ID).Logger())
	lg := logger.Ctx(ctx)

	lg.Info().Str("root", s.Dataset.Root()).Bool("wipe", job.Wipe).Msg("import job starting")

	im := &Importer{
		Writer:    s.Writer,
		Namespace: s.Namespace,
		Workers:   s.Workers,
		BatchSize: s.BatchSize,
		Metrics:   s.Metrics,
		Wipe:      job.Wipe,
	}
	res, err := im.Import(ctx, s.Dataset)
	s.jobs.finish(job, res, err)
	if err != nil {
		logger.LogError(lg, "import job", err)
	}

	snap, _ := s.jobs.get(job.ID)
	run := &ImportRun{
		ID:          RunID(s.namespace(), s.Dataset.Root(), job.StartedAt.UnixNano()),
		Source:      s.Dataset.Root(),
		Status:      snap.Status,
		Persons:     snap.Persons,
		Error:       snap.Error,
		StartedAt:   snap.StartedAt,
		CompletedAt: snap.CompletedAt,
	}
	if files, err := s.Dataset.AllStatesFiles(); err == nil {
		for _, f := range files {
			run.Files = append(run.Files, filepath.Base(f))
		}
	}
	if err := s.Store.SaveRun(ctx, run); err != nil {
		logger.LogError(lg, "save import run", err)
	}
}
