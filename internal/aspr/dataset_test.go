package aspr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

var sampleFiles = map[string]string{
	"tx.csv": header +
		"34,481559501000128,,4848795060000714\n" +
		"9,484879507000440,48155950100001,\n" +
		"51,484879506001139,,4848795050000091\n",
	"ak.csv": header +
		"27,021300003000173,,0213000020000291\n" +
		"6,021300002001412,02130000400002,\n",
	"md.csv": header +
		"15,240310101000001,24031xprvx0150,\n",
}

func writeDataset(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, AllStatesDir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for name, body := range sampleFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return root
}

func writeArchive(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "aspr.zip")
	f, err := os.Create(p)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for name, body := range sampleFiles {
		w, err := zw.Create("all_states/" + name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	w, err := zw.Create("README.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("not data"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestDatasetFiles(t *testing.T) {
	root := writeDataset(t)
	d := NewDataset(root)

	files, err := d.AllStatesFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, AllStatesDir, "ak.csv"),
		filepath.Join(root, AllStatesDir, "md.csv"),
		filepath.Join(root, AllStatesDir, "tx.csv"),
	}, files)

	assert.Equal(t, filepath.Join(root, AllStatesDir, "tx.csv"), d.StateFile(fips.TX))

	r, err := d.OpenState(fips.AK)
	require.NoError(t, err)
	defer r.Close()
	assert.Len(t, readAll(t, r), 2)
}

func TestDatasetSetRoot(t *testing.T) {
	d := NewDataset(t.TempDir())

	_, err := d.AllStatesFiles()
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, KindIO, aerr.Kind)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	root := writeDataset(t)
	d.SetRoot(root)
	assert.Equal(t, root, d.Root())

	files, err := d.AllStatesFiles()
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestOpenStateMissing(t *testing.T) {
	d := NewDataset(writeDataset(t))
	_, err := d.OpenState(fips.WY)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDatasetWalk(t *testing.T) {
	d := NewDataset(writeDataset(t))
	tally := NewTally()

	var mu sync.Mutex
	lines := map[string][]int{}

	err := d.Walk(context.Background(), 2, func(file string, line int, rec PersonRecord) error {
		tally.Add(rec)
		mu.Lock()
		lines[file] = append(lines[file], line)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6), tally.Total())
	assert.Equal(t, int64(3), tally.State(fips.TX))
	assert.Equal(t, int64(2), tally.State(fips.AK))
	assert.Equal(t, int64(1), tally.State(fips.MD))
	assert.Equal(t, int64(6), tally.Category(fips.Home))
	assert.Equal(t, int64(3), tally.Category(fips.Workplace))
	assert.Equal(t, int64(2), tally.Category(fips.PublicSchool))
	assert.Equal(t, int64(1), tally.Category(fips.PrivateSchool))

	assert.Equal(t, []int{2, 3, 4}, lines["all_states/tx.csv"])
	assert.Equal(t, []int{2, 3}, lines["all_states/ak.csv"])

	sum := tally.Summary()
	assert.Equal(t, int64(6), sum.Persons)
	assert.Equal(t, int64(3), sum.States["TX"])
	assert.Equal(t, int64(1), sum.Categories["private_school"])
}

func TestDatasetWalkStopsOnError(t *testing.T) {
	d := NewDataset(writeDataset(t))
	boom := errors.New("boom")

	err := d.Walk(context.Background(), 1, func(string, int, PersonRecord) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestDatasetWalkCanceled(t *testing.T) {
	d := NewDataset(writeDataset(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Walk(ctx, 4, func(string, int, PersonRecord) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArchive(t *testing.T) {
	a, err := OpenArchive(writeArchive(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"all_states/ak.csv", "all_states/md.csv", "all_states/tx.csv"}, a.Files())

	r, err := a.Open("all_states/md.csv")
	require.NoError(t, err)
	recs := readAll(t, r)
	require.NoError(t, r.Close())
	require.Len(t, recs, 1)
	assert.Equal(t, fips.PrivateSchool, recs[0].SchoolID.Category())

	_, err = a.Open("README.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	tally := NewTally()
	require.NoError(t, a.Walk(context.Background(), 3, func(_ string, _ int, rec PersonRecord) error {
		tally.Add(rec)
		return nil
	}))
	assert.Equal(t, int64(6), tally.Total())
}

func TestOpenArchiveMissing(t *testing.T) {
	_, err := OpenArchive(filepath.Join(t.TempDir(), "none.zip"))
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, KindIO, aerr.Kind)
}

func TestWalkNamesAreRelative(t *testing.T) {
	collect := func(walk func(VisitFunc) error) map[string]int {
		var mu sync.Mutex
		seen := map[string]int{}
		require.NoError(t, walk(func(file string, _ int, _ PersonRecord) error {
			mu.Lock()
			seen[file]++
			mu.Unlock()
			return nil
		}))
		return seen
	}

	d := NewDataset(writeDataset(t))
	fromDir := collect(func(fn VisitFunc) error { return d.Walk(context.Background(), 2, fn) })

	a, err := OpenArchive(writeArchive(t))
	require.NoError(t, err)
	defer a.Close()
	fromZip := collect(func(fn VisitFunc) error { return a.Walk(context.Background(), 2, fn) })

	assert.Equal(t, map[string]int{"all_states/ak.csv": 2, "all_states/md.csv": 1, "all_states/tx.csv": 3}, fromDir)
	assert.Equal(t, fromDir, fromZip)
}

func TestArchiveSameBaseNameInTwoDirs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "dup.zip")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range []string{"all_states/tx.csv", "extra/tx.csv"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(sampleFiles["tx.csv"]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	a, err := OpenArchive(p)
	require.NoError(t, err)
	defer a.Close()

	var mu sync.Mutex
	keys := map[string]bool{}
	require.NoError(t, a.Walk(context.Background(), 2, func(file string, line int, _ PersonRecord) error {
		mu.Lock()
		defer mu.Unlock()
		key := fmt.Sprintf("%s:%d", file, line)
		assert.False(t, keys[key], "duplicate %s", key)
		keys[key] = true
		return nil
	}))
	assert.Len(t, keys, 6)
}
