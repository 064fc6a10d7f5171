package fips

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStateCode = errors.New("fips: unknown state code")

// State is a FIPS state or state-equivalent code. All codes fit in 6 bits.
type State uint8

// States, DC, the territories and the coastal codes below 64.
const (
	AL State = 1
	AK State = 2
	AS State = 3 // American Samoa, FIPS 5-1 reserved code
	AZ State = 4
	AR State = 5
	CA State = 6
	CO State = 8
	CT State = 9
	DE State = 10
	DC State = 11
	FL State = 12
	GA State = 13
	GU State = 14 // Guam, FIPS 5-1 reserved code
	HI State = 15
	ID State = 16
	IL State = 17
	IN State = 18
	IA State = 19
	KS State = 20
	KY State = 21
	LA State = 22
	ME State = 23
	MD State = 24
	MA State = 25
	MI State = 26
	MN State = 27
	MS State = 28
	MO State = 29
	MT State = 30
	NE State = 31
	NV State = 32
	NH State = 33
	NJ State = 34
	NM State = 35
	NY State = 36
	NC State = 37
	ND State = 38
	OH State = 39
	OK State = 40
	OR State = 41
	PA State = 42
	PR State = 43 // Puerto Rico, FIPS 5-1 reserved code
	RI State = 44
	SC State = 45
	SD State = 46
	TN State = 47
	TX State = 48
	UT State = 49
	VT State = 50
	VA State = 51
	VI State = 52 // Virgin Islands of the U.S., FIPS 5-1 reserved code
	WA State = 53
	WV State = 54
	WI State = 55
	WY State = 56

	// HawaiianCoast covers the coastal waters of Hawaii. It has no USPS
	// abbreviation, so it is labeled "HC".
	HawaiianCoast State = 59
)

type stateInfo struct {
	abbr string
	name string
}

var stateTable = [MaxState + 1]stateInfo{
	AL: {"AL", "Alabama"},
	AK: {"AK", "Alaska"},
	AS: {"AS", "American Samoa"},
	AZ: {"AZ", "Arizona"},
	AR: {"AR", "Arkansas"},
	CA: {"CA", "California"},
	CO: {"CO", "Colorado"},
	CT: {"CT", "Connecticut"},
	DE: {"DE", "Delaware"},
	DC: {"DC", "District of Columbia"},
	FL: {"FL", "Florida"},
	GA: {"GA", "Georgia"},
	GU: {"GU", "Guam"},
	HI: {"HI", "Hawaii"},
	ID: {"ID", "Idaho"},
	IL: {"IL", "Illinois"},
	IN: {"IN", "Indiana"},
	IA: {"IA", "Iowa"},
	KS: {"KS", "Kansas"},
	KY: {"KY", "Kentucky"},
	LA: {"LA", "Louisiana"},
	ME: {"ME", "Maine"},
	MD: {"MD", "Maryland"},
	MA: {"MA", "Massachusetts"},
	MI: {"MI", "Michigan"},
	MN: {"MN", "Minnesota"},
	MS: {"MS", "Mississippi"},
	MO: {"MO", "Missouri"},
	MT: {"MT", "Montana"},
	NE: {"NE", "Nebraska"},
	NV: {"NV", "Nevada"},
	NH: {"NH", "New Hampshire"},
	NJ: {"NJ", "New Jersey"},
	NM: {"NM", "New Mexico"},
	NY: {"NY", "New York"},
	NC: {"NC", "North Carolina"},
	ND: {"ND", "North Dakota"},
	OH: {"OH", "Ohio"},
	OK: {"OK", "Oklahoma"},
	OR: {"OR", "Oregon"},
	PA: {"PA", "Pennsylvania"},
	PR: {"PR", "Puerto Rico"},
	RI: {"RI", "Rhode Island"},
	SC: {"SC", "South Carolina"},
	SD: {"SD", "South Dakota"},
	TN: {"TN", "Tennessee"},
	TX: {"TX", "Texas"},
	UT: {"UT", "Utah"},
	VT: {"VT", "Vermont"},
	VA: {"VA", "Virginia"},
	VI: {"VI", "Virgin Islands of the U.S."},
	WA: {"WA", "Washington"},
	WV: {"WV", "West Virginia"},
	WI: {"WI", "Wisconsin"},
	WY: {"WY", "Wyoming"},

	HawaiianCoast: {"HC", "Hawaiian Coast"},
}

var stateByAbbr = func() map[string]State {
	m := make(map[string]State, len(stateTable))
	for code, info := range stateTable {
		if info.abbr != "" {
			m[info.abbr] = State(code)
		}
	}
	return m
}()

// LookupState returns the State for a numeric FIPS code.
func LookupState(code uint8) (State, bool) {
	s := State(code)
	return s, s.Valid()
}

// StateByAbbr looks up a USPS abbreviation, case-insensitively.
func StateByAbbr(abbr string) (State, bool) {
	s, ok := stateByAbbr[strings.ToUpper(strings.TrimSpace(abbr))]
	return s, ok
}

// AllStates returns every known state in code order.
func AllStates() []State {
	out := make([]State, 0, len(stateByAbbr))
	for code, info := range stateTable {
		if info.abbr != "" {
			out = append(out, State(code))
		}
	}
	return out
}

func (s State) Valid() bool {
	return int(s) < len(stateTable) && stateTable[s].abbr != ""
}

// Code returns the numeric FIPS code.
func (s State) Code() uint8 { return uint8(s) }

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", uint8(s))
	}
	return stateTable[s].abbr
}

// Name returns the full name, e.g. "District of Columbia".
func (s State) Name() string {
	if !s.Valid() {
		return ""
	}
	return stateTable[s].name
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStateCode, uint8(s))
	}
	return []byte(stateTable[s].abbr), nil
}

// UnmarshalText accepts an abbreviation or a numeric code.
func (s *State) UnmarshalText(b []byte) error {
	if v, ok := StateByAbbr(string(b)); ok {
		*s = v
		return nil
	}
	rest, v, err := ParseStateCode(string(b))
	if err != nil || rest != "" {
		return fmt.Errorf("%w: %q", ErrUnknownStateCode, b)
	}
	*s = v
	return nil
}
