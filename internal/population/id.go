package population

import (
	"path"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// DefaultNamespace seeds person ids when no namespace is configured.
var DefaultNamespace = uuid.MustParse("0aac5c9f-847b-431c-acf1-5c31575df704")

func v5(ns uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte(name))
}

// PersonID identifies a person by its source file and line. file is the path
// relative to the dataset root or archive, so the id does not depend on where the
// dataset is mounted, and files sharing a base name in different directories stay
// distinct.
func PersonID(ns uuid.UUID, file string, line int) uuid.UUID {
	return v5(ns, "person:"+path.Clean(filepath.ToSlash(file))+":"+strconv.Itoa(line))
}

func RunID(ns uuid.UUID, source string, startedUnixNano int64) uuid.UUID {
	return v5(ns, "run:"+source+":"+strconv.FormatInt(startedUnixNano, 10))
}
