package fips

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("fips: unknown setting category")

// SettingCategory is not part of the FIPS standard. It distinguishes the household,
// workplace and school id spaces of the synthetic population dataset. Applications
// that do not use it leave it Unspecified.
type SettingCategory uint8

const (
	Unspecified SettingCategory = iota
	Home
	Workplace
	PublicSchool
	PrivateSchool
	CensusTract
)

// DecodeCategory maps an encoded category back to its variant.
func DecodeCategory(v uint8) (SettingCategory, bool) {
	switch v {
	case 0:
		return Unspecified, true
	case 1:
		return Home, true
	case 2:
		return Workplace, true
	case 3:
		return PublicSchool, true
	case 4:
		return PrivateSchool, true
	case 5:
		return CensusTract, true
	}
	return Unspecified, false
}

// Encode returns the 4-bit encoding of c.
func (c SettingCategory) Encode() uint8 { return uint8(c) }

func (c SettingCategory) Valid() bool {
	_, ok := DecodeCategory(uint8(c))
	return ok
}

func (c SettingCategory) String() string {
	switch c {
	case Unspecified:
		return "Unspecified"
	case Home:
		return "Home"
	case Workplace:
		return "Workplace"
	case PublicSchool:
		return "Public School"
	case PrivateSchool:
		return "Private School"
	case CensusTract:
		return "Census Tract"
	}
	return fmt.Sprintf("SettingCategory(%d)", uint8(c))
}

// Slug is the lower-case, underscore-separated name used in URLs and config.
func (c SettingCategory) Slug() string {
	return strings.ReplaceAll(strings.ToLower(c.String()), " ", "_")
}

// ParseCategory accepts a slug ("home", "public_school", ...) or one of the short
// aliases "work", "school" and "tract". "school" resolves to PublicSchool; the
// school id parser picks the real category from the id itself.
func ParseCategory(s string) (SettingCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unspecified":
		return Unspecified, nil
	case "home":
		return Home, nil
	case "work", "workplace":
		return Workplace, nil
	case "school", "public_school":
		return PublicSchool, nil
	case "private_school":
		return PrivateSchool, nil
	case "tract", "census_tract":
		return CensusTract, nil
	}
	return Unspecified, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c SettingCategory) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(c.Slug()), nil
}

func (c *SettingCategory) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
