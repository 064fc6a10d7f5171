package fips

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// signBit flips the top bit so that signed bigint order in Postgres matches the
// unsigned order of the packed value.
const signBit = uint64(1) << 63

// FromUint64 validates a raw packed value. Zero is rejected; it is the "absent"
// sentinel, not a code.
func FromUint64(v uint64) (Code, error) {
	c := Code(v)
	if c.IsZero() {
		return 0, fmt.Errorf("%w: 0", ErrUnknownStateCode)
	}
	if !c.State().Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStateCode, c.StateCode())
	}
	if !c.Category().Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, c.CategoryCode())
	}
	return c, nil
}

// ParseCode parses a packed value written in decimal. Zero is rejected.
func ParseCode(s string) (Code, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("fips: invalid code %q: %w", s, err)
	}
	return FromUint64(v)
}

// MarshalText renders the packed value in decimal. JSON therefore carries codes as
// strings, which survive JavaScript's 53-bit numbers. The zero code renders empty.
func (c Code) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return []byte{}, nil
	}
	return strconv.AppendUint(nil, uint64(c), 10), nil
}

// UnmarshalText reverses MarshalText. "" and "0" both decode to the zero code.
func (c *Code) UnmarshalText(b []byte) error {
	if len(b) == 0 || string(b) == "0" {
		*c = 0
		return nil
	}
	code, err := ParseCode(string(b))
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// Value stores c as an order-preserving bigint. The zero code is stored as NULL.
func (c Code) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	return int64(uint64(c) ^ signBit), nil
}

func (c *Code) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = 0
	case int64:
		*c = Code(uint64(v) ^ signBit)
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("fips: scan code: %w", err)
		}
		*c = Code(uint64(n) ^ signBit)
	default:
		return fmt.Errorf("fips: cannot scan %T into Code", src)
	}
	return nil
}

// SQLValue returns the stored bigint for c, for hand-written range predicates.
func (c Code) SQLValue() int64 {
	return int64(uint64(c) ^ signBit)
}

// GormDataType is the column type used by gorm migrations.
func (Code) GormDataType() string { return "bigint" }
