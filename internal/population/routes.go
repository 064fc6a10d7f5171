package population

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/EmpoweredVote/EV-Population/internal/aspr"
	"github.com/EmpoweredVote/EV-Population/internal/fips"
	"github.com/EmpoweredVote/EV-Population/internal/metrics"
	"github.com/EmpoweredVote/EV-Population/internal/middleware"
)

// Querier is the read side of Store used by the HTTP handlers.
type Querier interface {
	PersonsInRegion(ctx context.Context, region fips.Code, level fips.Level, setting Setting, limit int) ([]Person, error)
	Stats(ctx context.Context, states []fips.State) (aspr.Summary, error)
	Runs(ctx context.Context, limit int) ([]ImportRun, error)
	SaveRun(ctx context.Context, run *ImportRun) error
}

// Service serves the population API.
type Service struct {
	Store     Querier
	Writer    Writer
	Dataset   *aspr.Dataset
	Namespace uuid.UUID
	Workers   int
	BatchSize int
	Metrics   *metrics.Metrics

	// AdminKeyHash guards the import endpoints. Empty disables them.
	AdminKeyHash string

	jobs *jobRegistry
}

// NewService wires a Service backed by store.
func NewService(store *Store, dataset *aspr.Dataset) *Service {
	return &Service{
		Store:   store,
		Writer:  store,
		Dataset: dataset,
		jobs:    newJobRegistry(),
	}
}

func (s *Service) namespace() uuid.UUID {
	if s.Namespace == uuid.Nil {
		return DefaultNamespace
	}
	return s.Namespace
}

func (s *Service) SetupRoutes() http.Handler {
	if s.jobs == nil {
		s.jobs = newJobRegistry()
	}
	r := chi.NewRouter()

	r.Get("/regions/{geoid}/persons", s.RegionPersonsHandler)
	r.Get("/stats", s.StatsHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminKeyMiddleware(s.AdminKeyHash))
		r.Post("/import", s.StartImportHandler)
		r.Get("/import", s.ListImportJobsHandler)
		r.Get("/import/runs", s.ImportRunsHandler)
		r.Get("/import/{jobID}", s.ImportStatusHandler)
	})

	return r
}
