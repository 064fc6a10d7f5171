package aspr

import (
	"strconv"
	"strings"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

// PersonRecord is one row of the synthetic population. A zero code means the
// person has no such setting or its id could not be parsed.
type PersonRecord struct {
	Age      uint8
	HomeID   fips.Code
	SchoolID fips.Code
	WorkID   fips.Code
}

// State returns the state of the home, falling back to school then work.
func (p PersonRecord) State() fips.State {
	for _, c := range [...]fips.Code{p.HomeID, p.SchoolID, p.WorkID} {
		if !c.IsZero() {
			return c.State()
		}
	}
	return 0
}

func (p PersonRecord) String() string {
	var b strings.Builder
	b.WriteString("Age: ")
	b.WriteString(strconv.Itoa(int(p.Age)))
	if !p.HomeID.IsZero() {
		b.WriteString(", Home: (" + p.HomeID.String() + ")")
	}
	if !p.SchoolID.IsZero() {
		b.WriteString(", School: (" + p.SchoolID.String() + ")")
	}
	if !p.WorkID.IsZero() {
		b.WriteString(", Work: (" + p.WorkID.String() + ")")
	}
	return b.String()
}
