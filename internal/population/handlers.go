package population

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
	"github.com/EmpoweredVote/EV-Population/internal/logger"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		lg := logger.L()
		lg.Warn().Err(err).Msg("encode response")
	}
}

type personView struct {
	ID         uuid.UUID `json:"id"`
	Age        int16     `json:"age"`
	State      string    `json:"state,omitempty"`
	HomeID     string    `json:"home_id,omitempty"`
	SchoolID   string    `json:"school_id,omitempty"`
	WorkID     string    `json:"work_id,omitempty"`
	SourceFile string    `json:"source_file"`
	Line       int       `json:"line"`
}

func datasetID(c fips.Code) string {
	if c.IsZero() {
		return ""
	}
	return c.DatasetID()
}

func viewPerson(p Person) personView {
	v := personView{
		ID:         p.ID,
		Age:        p.Age,
		HomeID:     datasetID(p.HomeID),
		SchoolID:   datasetID(p.SchoolID),
		WorkID:     datasetID(p.WorkID),
		SourceFile: p.SourceFile,
		Line:       p.Line,
	}
	if st := fips.State(p.State); st.Valid() {
		v.State = st.String()
	}
	return v
}

// RegionPersonsHandler handles GET /population/regions/{geoid}/persons
// ?setting=home|workplace|school|public_school|private_school&limit=N
func (s *Service) RegionPersonsHandler(w http.ResponseWriter, r *http.Request) {
	region, level, err := fips.ParseRegion(chi.URLParam(r, "geoid"))
	if err != nil {
		http.Error(w, "Invalid region: "+err.Error(), http.StatusBadRequest)
		return
	}

	setting, err := ParseSetting(r.URL.Query().Get("setting"))
	if err != nil {
		http.Error(w, "Invalid setting", http.StatusBadRequest)
		return
	}

	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		limit = n
	}

	persons, err := s.Store.PersonsInRegion(r.Context(), region, level, setting, limit)
	if err != nil {
		logger.LogError(logger.Ctx(r.Context()), "persons in region", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	out := make([]personView, len(persons))
	for i, p := range persons {
		out[i] = viewPerson(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"region":  region.Expand(),
		"level":   level,
		"setting": setting,
		"persons": out,
	})
}

// StatsHandler handles GET /population/stats?state=TX,AK
func (s *Service) StatsHandler(w http.ResponseWriter, r *http.Request) {
	var states []fips.State
	for _, raw := range r.URL.Query()["state"] {
		for _, abbr := range strings.Split(raw, ",") {
			if abbr = strings.TrimSpace(abbr); abbr == "" {
				continue
			}
			var st fips.State
			if err := st.UnmarshalText([]byte(abbr)); err != nil {
				http.Error(w, "Unknown state: "+abbr, http.StatusBadRequest)
				return
			}
			states = append(states, st)
		}
	}

	sum, err := s.Store.Stats(r.Context(), states)
	if err != nil {
		logger.LogError(logger.Ctx(r.Context()), "population stats", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// StartImportHandler handles POST /population/import
// Accepts {"wipe": true}
func (s *Service) StartImportHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Wipe bool `json:"wipe"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	job, ok := s.jobs.start(body.Wipe)
	if !ok {
		http.Error(w, "An import is already running", http.StatusConflict)
		return
	}

	go s.runImport(job)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// ImportStatusHandler handles GET /population/import/{jobID}
func (s *Service) ImportStatusHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.get(chi.URLParam(r, "jobID"))
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListImportJobsHandler handles GET /population/import
func (s *Service) ListImportJobsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobs.list())
}

// ImportRunsHandler handles GET /population/import/runs
func (s *Service) ImportRunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Store.Runs(r.Context(), 50)
	if err != nil {
		logger.LogError(logger.Ctx(r.Context()), "list import runs", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
