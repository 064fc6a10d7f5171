package population

import (
	"fmt"
	"strings"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

// Setting selects which person column a region query scans. SettingSchool
// matches both school categories; the two specific school settings also filter
// on school_category.
type Setting string

const (
	SettingHome          Setting = "home"
	SettingWorkplace     Setting = "workplace"
	SettingSchool        Setting = "school"
	SettingPublicSchool  Setting = "public_school"
	SettingPrivateSchool Setting = "private_school"
)

// ParseSetting accepts "school" or any person-bearing category slug. An empty
// string is SettingHome.
func ParseSetting(s string) (Setting, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "":
		return SettingHome, nil
	case string(SettingSchool):
		return SettingSchool, nil
	}

	c, err := fips.ParseCategory(v)
	if err != nil {
		return "", err
	}
	switch c {
	case fips.Home:
		return SettingHome, nil
	case fips.Workplace:
		return SettingWorkplace, nil
	case fips.PublicSchool:
		return SettingPublicSchool, nil
	case fips.PrivateSchool:
		return SettingPrivateSchool, nil
	}
	return "", fmt.Errorf("%w: no person column for %s", fips.ErrUnknownCategory, c)
}

// filter returns the code column and, for a specific school setting, the
// school_category the rows must carry. Unspecified means no category filter.
func (s Setting) filter() (string, fips.SettingCategory, error) {
	switch s {
	case SettingHome:
		return "home_id", fips.Unspecified, nil
	case SettingWorkplace:
		return "work_id", fips.Unspecified, nil
	case SettingSchool:
		return "school_id", fips.Unspecified, nil
	case SettingPublicSchool:
		return "school_id", fips.PublicSchool, nil
	case SettingPrivateSchool:
		return "school_id", fips.PrivateSchool, nil
	}
	return "", fips.Unspecified, fmt.Errorf("%w: setting %q", fips.ErrUnknownCategory, string(s))
}
