// Package aspr reads the ASPR synthetic population dataset.
//
// Each data file is a CSV with a header row followed by one row per person:
//
//	age,homeId,schoolId,workplaceId
//
// Home ids are an 11-digit tract followed by a 4-digit sequence. Public school ids
// are a tract followed by 3 digits, private school ids are a 5-digit county, the
// marker "xprvx" and 4 digits. Workplace ids are a tract followed by 5 digits.
package aspr

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

// AllStatesDir is the dataset subdirectory holding one file per state.
const AllStatesDir = "all_states"

// Dataset locates dataset files under a root directory. It is safe for concurrent
// use; SetRoot affects calls made after it returns.
type Dataset struct {
	mu   sync.RWMutex
	root string
}

func NewDataset(root string) *Dataset {
	return &Dataset{root: root}
}

func (d *Dataset) Root() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

func (d *Dataset) SetRoot(root string) {
	d.mu.Lock()
	d.root = root
	d.mu.Unlock()
}

// AllStatesFiles returns the regular files in the all_states directory, sorted by
// name.
func (d *Dataset) AllStatesFiles() ([]string, error) {
	dir := filepath.Join(d.Root(), AllStatesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioError(dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// StateFile returns the path of the file for state, e.g. all_states/tx.csv.
func (d *Dataset) StateFile(state fips.State) string {
	return filepath.Join(d.Root(), AllStatesDir, strings.ToLower(state.String())+".csv")
}

func (d *Dataset) OpenState(state fips.State, opts ...Option) (*Reader, error) {
	return OpenFile(d.StateFile(state), opts...)
}
