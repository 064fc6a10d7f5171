package fips

import (
	"fmt"
	"strings"
)

// The ASPR synthetic population dataset prefixes its ids with a FIPS GEOID:
//
//	home id:      11-digit tract + 4-digit within-tract id            (15 chars)
//	public school 11-digit tract + 3-digit within-tract id            (14 chars)
//	private school 5-digit county + "xprvx" + 4-digit within-county id (14 chars)
//	workplace id: 11-digit tract + 5-digit within-tract id            (16 chars)

// pack assembles fields that the sub-parsers have already range checked. A failure
// here means the parsers and the packer disagree about a field width.
func pack(state State, county CountyCode, tract TractCode, category SettingCategory, id IDCode) Code {
	c, err := New(state, county, tract, category, id, 0)
	if err != nil {
		panic(fmt.Sprintf("fips: parsed %s id rejected by the packer, this is a parser bug: %v", category, err))
	}
	return c
}

func parseTractPrefix(input string) (string, State, CountyCode, TractCode, error) {
	rest, state, err := ParseStateCode(input)
	if err != nil {
		return "", 0, 0, 0, err
	}
	rest, county, err := ParseCountyCode(rest)
	if err != nil {
		return "", 0, 0, 0, err
	}
	rest, tract, err := ParseTractCode(rest)
	if err != nil {
		return "", 0, 0, 0, err
	}
	return rest, state, county, tract, nil
}

// ParseHomeCode parses a household id and returns the unconsumed input.
func ParseHomeCode(input string) (string, Code, error) {
	rest, state, county, tract, err := parseTractPrefix(input)
	if err != nil {
		return "", 0, err
	}
	rest, id, err := ParseHomeID(rest)
	if err != nil {
		return "", 0, err
	}
	return rest, pack(state, county, tract, Home, id), nil
}

// ParseWorkplaceCode parses a workplace id and returns the unconsumed input.
func ParseWorkplaceCode(input string) (string, Code, error) {
	rest, state, county, tract, err := parseTractPrefix(input)
	if err != nil {
		return "", 0, err
	}
	rest, id, err := ParseWorkplaceID(rest)
	if err != nil {
		return "", 0, err
	}
	return rest, pack(state, county, tract, Workplace, id), nil
}

// ParseSchoolCode parses a public or private school id. The two forms share the
// state and county prefix; an "x" after the county selects the private form, which
// has no tract.
func ParseSchoolCode(input string) (string, Code, error) {
	rest, state, err := ParseStateCode(input)
	if err != nil {
		return "", 0, err
	}
	rest, county, err := ParseCountyCode(rest)
	if err != nil {
		return "", 0, err
	}

	if strings.HasPrefix(rest, "x") {
		rest, id, err := ParsePrivateSchoolID(rest)
		if err != nil {
			return "", 0, err
		}
		return rest, pack(state, county, 0, PrivateSchool, id), nil
	}

	rest, tract, err := ParseTractCode(rest)
	if err != nil {
		return "", 0, err
	}
	rest, id, err := ParsePublicSchoolID(rest)
	if err != nil {
		return "", 0, err
	}
	return rest, pack(state, county, tract, PublicSchool, id), nil
}

// ParseTractGEOID parses an 11-digit census tract GEOID (state+county+tract).
func ParseTractGEOID(input string) (string, Code, error) {
	rest, state, county, tract, err := parseTractPrefix(input)
	if err != nil {
		return "", 0, err
	}
	return rest, pack(state, county, tract, CensusTract, 0), nil
}

// ParseForCategory dispatches to the parser for category. Both school categories
// use ParseSchoolCode, so the returned code may carry the other school category.
func ParseForCategory(category SettingCategory, input string) (string, Code, error) {
	switch category {
	case Home:
		return ParseHomeCode(input)
	case Workplace:
		return ParseWorkplaceCode(input)
	case PublicSchool, PrivateSchool:
		return ParseSchoolCode(input)
	case CensusTract:
		return ParseTractGEOID(input)
	}
	return "", 0, fmt.Errorf("%w: no id format for %s", ErrUnknownCategory, category)
}

// GEOID renders the state+county+tract prefix of c as an 11-digit string.
func (c Code) GEOID() string {
	return fmt.Sprintf("%02d%03d%06d", c.StateCode(), c.CountyCode(), c.TractCode())
}

// DatasetID renders c in the dataset's id format for its category. Codes whose
// category has no id format render as their GEOID.
func (c Code) DatasetID() string {
	switch c.Category() {
	case Home:
		return fmt.Sprintf("%s%04d", c.GEOID(), c.ID())
	case Workplace:
		return fmt.Sprintf("%s%05d", c.GEOID(), c.ID())
	case PublicSchool:
		return fmt.Sprintf("%s%03d", c.GEOID(), c.ID())
	case PrivateSchool:
		return fmt.Sprintf("%02d%03d%s%04d", c.StateCode(), c.CountyCode(), PrivateSchoolMarker, c.ID())
	}
	return c.GEOID()
}

// ParseRegion parses a whole state (2 digits), county (5 digits) or tract
// (11 digits) GEOID and returns the code with the matching Level.
func ParseRegion(geoid string) (Code, Level, error) {
	switch len(geoid) {
	case 11:
		_, code, err := ParseTractGEOID(geoid)
		if err != nil {
			return 0, 0, err
		}
		return code, LevelTract, nil
	case 5:
		rest, state, err := ParseStateCode(geoid)
		if err != nil {
			return 0, 0, err
		}
		_, county, err := ParseCountyCode(rest)
		if err != nil {
			return 0, 0, err
		}
		return WithCounty(state, county), LevelCounty, nil
	case 2:
		_, state, err := ParseStateCode(geoid)
		if err != nil {
			return 0, 0, err
		}
		return WithState(state), LevelState, nil
	}
	return 0, 0, &ParseError{Kind: InvalidLength, Field: "region", Input: geoid, Expected: 11, Found: len(geoid)}
}
