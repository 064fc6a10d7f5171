package aspr

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Archive reads dataset files packed in a zip archive, as the dataset is
// distributed.
type Archive struct {
	path    string
	zr      *zip.ReadCloser
	members map[string]*zip.File
	names   []string
}

// OpenArchive opens the zip archive at p and indexes its .csv members.
func OpenArchive(p string) (*Archive, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, ioError(p, err)
	}

	a := &Archive{path: p, zr: zr, members: make(map[string]*zip.File)}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".csv") {
			continue
		}
		// macOS archivers add resource forks under __MACOSX.
		if strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		a.members[f.Name] = f
		a.names = append(a.names, f.Name)
	}
	sort.Strings(a.names)
	return a, nil
}

// Files returns the names of the .csv members, sorted.
func (a *Archive) Files() []string {
	return append([]string(nil), a.names...)
}

// Open returns a Reader over the named member. Members may be read concurrently.
func (a *Archive) Open(name string, opts ...Option) (*Reader, error) {
	f, ok := a.members[name]
	if !ok {
		return nil, ioError(a.path+"!"+name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, ioError(a.path+"!"+name, err)
	}
	r, err := NewReader(rc, a.path+"!"+name, opts...)
	if err != nil {
		rc.Close()
		return nil, err
	}
	r.closer = rc
	return r, nil
}

func (a *Archive) Close() error {
	return a.zr.Close()
}
