package aspr

import (
	"sync"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

// Tally counts persons per state and settings per category. It is safe to call
// Add from a VisitFunc.
type Tally struct {
	mu       sync.Mutex
	total    int64
	byState  map[fips.State]int64
	settings map[fips.SettingCategory]int64
}

func NewTally() *Tally {
	return &Tally{
		byState:  make(map[fips.State]int64),
		settings: make(map[fips.SettingCategory]int64),
	}
}

func (t *Tally) Add(rec PersonRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if s := rec.State(); s != 0 {
		t.byState[s]++
	}
	for _, c := range [...]fips.Code{rec.HomeID, rec.SchoolID, rec.WorkID} {
		if !c.IsZero() {
			t.settings[c.Category()]++
		}
	}
}

func (t *Tally) Total() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

func (t *Tally) State(s fips.State) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byState[s]
}

func (t *Tally) Category(c fips.SettingCategory) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings[c]
}

// Summary is a JSON-friendly copy of a Tally keyed by state abbreviation and
// category slug.
type Summary struct {
	Persons    int64            `json:"persons"`
	States     map[string]int64 `json:"states"`
	Categories map[string]int64 `json:"categories"`
}

func (t *Tally) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{
		Persons:    t.total,
		States:     make(map[string]int64, len(t.byState)),
		Categories: make(map[string]int64, len(t.settings)),
	}
	for st, n := range t.byState {
		s.States[st.String()] = n
	}
	for c, n := range t.settings {
		s.Categories[c.Slug()] = n
	}
	return s
}
