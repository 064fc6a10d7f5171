package population

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/EmpoweredVote/EV-Population/internal/aspr"
	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

type fakeQuerier struct {
	mu sync.Mutex

	persons []Person
	summary aspr.Summary
	runs    []ImportRun

	gotRegion  fips.Code
	gotLevel   fips.Level
	gotSetting Setting
	gotLimit   int
	gotStates  []fips.State
}

func (f *fakeQuerier) PersonsInRegion(_ context.Context, region fips.Code, level fips.Level, setting Setting, limit int) ([]Person, error) {
	f.gotRegion, f.gotLevel, f.gotSetting, f.gotLimit = region, level, setting, limit
	return f.persons, nil
}

func (f *fakeQuerier) Stats(_ context.Context, states []fips.State) (aspr.Summary, error) {
	f.gotStates = states
	return f.summary, nil
}

func (f *fakeQuerier) Runs(context.Context, int) ([]ImportRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ImportRun(nil), f.runs...), nil
}

func (f *fakeQuerier) SaveRun(_ context.Context, run *ImportRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, *run)
	return nil
}

type HandlersSuite struct {
	suite.Suite

	store  *fakeQuerier
	writer *fakeWriter
	svc    *Service
	h      http.Handler
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	s.Require().NoError(err)

	s.store = &fakeQuerier{}
	s.writer = &fakeWriter{}
	s.svc = &Service{
		Store:        s.store,
		Writer:       s.writer,
		Dataset:      aspr.NewDataset(writeDataset(s.T())),
		Workers:      2,
		BatchSize:    2,
		AdminKeyHash: string(hash),
	}
	s.h = s.svc.SetupRoutes()
}

func (s *HandlersSuite) do(method, target, body string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if admin {
		req.Header.Set("X-Admin-Key", "s3cret")
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *HandlersSuite) TestRegionPersons() {
	_, home, err := fips.ParseHomeCode("481559501000128")
	s.Require().NoError(err)
	s.store.persons = []Person{NewPerson(DefaultNamespace, "tx.csv", 2, aspr.PersonRecord{Age: 34, HomeID: home})}

	rec := s.do(http.MethodGet, "/regions/48155/persons?setting=home&limit=10", "", false)
	s.Require().Equal(http.StatusOK, rec.Code)

	s.Equal(fips.WithCounty(fips.TX, 155), s.store.gotRegion)
	s.Equal(fips.LevelCounty, s.store.gotLevel)
	s.Equal(SettingHome, s.store.gotSetting)
	s.Equal(10, s.store.gotLimit)

	var resp struct {
		Level   string       `json:"level"`
		Persons []personView `json:"persons"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("county", resp.Level)
	s.Require().Len(resp.Persons, 1)
	s.Equal("481559501000128", resp.Persons[0].HomeID)
	s.Equal("TX", resp.Persons[0].State)
	s.Empty(resp.Persons[0].WorkID)
}

func (s *HandlersSuite) TestRegionPersonsSchoolSettings() {
	for query, want := range map[string]Setting{
		"school":         SettingSchool,
		"public_school":  SettingPublicSchool,
		"private_school": SettingPrivateSchool,
		"work":           SettingWorkplace,
	} {
		rec := s.do(http.MethodGet, "/regions/24031/persons?setting="+query, "", false)
		s.Require().Equal(http.StatusOK, rec.Code, query)
		s.Equal(want, s.store.gotSetting, query)
	}
}

func (s *HandlersSuite) TestRegionPersonsBadInput() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/regions/4815/persons", "", false).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/regions/48/persons?setting=tract", "", false).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/regions/48/persons?limit=0", "", false).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/regions/48/persons?limit=5000", "", false).Code)
}

func (s *HandlersSuite) TestStats() {
	s.store.summary = aspr.Summary{Persons: 5, States: map[string]int64{"TX": 3, "AK": 2}}

	rec := s.do(http.MethodGet, "/stats?state=TX,ak&state=02", "", false)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal([]fips.State{fips.TX, fips.AK, fips.AK}, s.store.gotStates)
	s.Contains(rec.Body.String(), `"persons":5`)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/stats?state=ZZ", "", false).Code)
}

func (s *HandlersSuite) TestImportRequiresAdminKey() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/import", "", false).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/import", "", false).Code)
}

func (s *HandlersSuite) TestImportJob() {
	rec := s.do(http.MethodPost, "/import", `{"wipe": true}`, true)
	s.Require().Equal(http.StatusAccepted, rec.Code)

	var started map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &started))
	jobID := started["job_id"]
	s.Require().NotEmpty(jobID)

	var job ImportJob
	s.Require().Eventually(func() bool {
		rec := s.do(http.MethodGet, "/import/"+jobID, "", true)
		if rec.Code != http.StatusOK {
			return false
		}
		job = ImportJob{}
		return json.Unmarshal(rec.Body.Bytes(), &job) == nil && job.Status != "running"
	}, 5*time.Second, 10*time.Millisecond)

	s.Equal("completed", job.Status)
	s.Equal(int64(7), job.Copied)
	s.True(job.Wipe)
	s.True(s.writer.truncated)

	s.Require().Eventually(func() bool {
		runs, _ := s.store.Runs(context.Background(), 10)
		return len(runs) == 1
	}, 5*time.Second, 10*time.Millisecond)
	runs, _ := s.store.Runs(context.Background(), 10)
	s.Equal([]string{"ak.csv", "md.csv", "tx.csv"}, []string(runs[0].Files))

	rec = s.do(http.MethodGet, "/import", "", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	var jobs []ImportJob
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &jobs))
	s.Len(jobs, 1)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/import/nope", "", true).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/import/runs", "", true).Code)
}

func TestJobRegistryOneAtATime(t *testing.T) {
	r := newJobRegistry()

	job, ok := r.start(false)
	require.True(t, ok)
	_, ok = r.start(true)
	assert.False(t, ok)

	r.finish(job, Result{Persons: 3, Copied: 3}, nil)
	snap, found := r.get(job.ID)
	require.True(t, found)
	assert.Equal(t, "completed", snap.Status)
	assert.NotNil(t, snap.CompletedAt)

	_, ok = r.start(false)
	assert.True(t, ok)
}
