package fips

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrorKind classifies a ParseError.
type ErrorKind uint8

const (
	// InvalidLength: fewer leading decimal digits than the field requires.
	InvalidLength ErrorKind = iota + 1
	// InvalidDigit: the first character is not a decimal digit.
	InvalidDigit
	// ValueExceedsCapacity: the parsed value does not fit the field's bit width.
	ValueExceedsCapacity
	// UnknownState: a well-formed state code that is not in the state table.
	UnknownState
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidLength:
		return "invalid length"
	case InvalidDigit:
		return "invalid digit"
	case ValueExceedsCapacity:
		return "value exceeds capacity"
	case UnknownState:
		return "unknown state"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Sentinels for errors.Is; every *ParseError matches the one for its Kind.
var (
	ErrInvalidLength        = errors.New("fips: invalid length")
	ErrInvalidDigit         = errors.New("fips: invalid digit")
	ErrValueExceedsCapacity = errors.New("fips: value exceeds capacity")
)

// ErrInvalidWidth reports a field width that no digit field can have.
var ErrInvalidWidth = errors.New("fips: invalid field width")

// ParseError describes why a digit string could not be parsed. Only the fields
// relevant to Kind are set.
type ParseError struct {
	Kind ErrorKind
	// Field names the sub-field being parsed, e.g. "county" or "home id".
	Field string
	// Input is the unconsumed input at the point of failure.
	Input string

	Expected int
	Found    int
	Char     rune
	Value    uint64
	Capacity uint64
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("fips: ")
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	switch e.Kind {
	case InvalidLength:
		fmt.Fprintf(&b, "expected %d digits, found %d", e.Expected, e.Found)
	case InvalidDigit:
		fmt.Fprintf(&b, "invalid digit %q", e.Char)
	case ValueExceedsCapacity:
		fmt.Fprintf(&b, "value %d exceeds capacity %d", e.Value, e.Capacity)
	case UnknownState:
		fmt.Fprintf(&b, "unknown state code %d", e.Value)
	default:
		b.WriteString(e.Kind.String())
	}
	fmt.Fprintf(&b, " (input %q)", e.Input)
	return b.String()
}

func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrInvalidLength:
		return e.Kind == InvalidLength
	case ErrInvalidDigit:
		return e.Kind == InvalidDigit
	case ErrValueExceedsCapacity:
		return e.Kind == ValueExceedsCapacity
	case ErrUnknownStateCode:
		return e.Kind == UnknownState
	}
	return false
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	return n
}

// ParseDecimalDigitsToBits parses exactly the first digits characters of input as a
// decimal integer and requires it to fit in bits bits. A short input and a non-digit
// before the required count are both reported as InvalidLength. digits must be at
// least 1 and bits in 1..64, otherwise ErrInvalidWidth is returned.
func ParseDecimalDigitsToBits(digits, bits int, input string) (string, uint64, error) {
	if digits < 1 || bits < 1 || bits > 64 {
		return "", 0, fmt.Errorf("%w: %d digits into %d bits", ErrInvalidWidth, digits, bits)
	}
	if n := leadingDigits(input); n < digits {
		return "", 0, &ParseError{Kind: InvalidLength, Input: input, Expected: digits, Found: n}
	}

	value, err := strconv.ParseUint(input[:digits], 10, 64)
	capacity := uint64(1)<<bits - 1
	if err != nil {
		// Only a range error: digits >= 1 and all of them are decimal.
		return "", 0, &ParseError{Kind: ValueExceedsCapacity, Input: input, Value: math.MaxUint64, Capacity: capacity}
	}
	if value > capacity {
		return "", 0, &ParseError{Kind: ValueExceedsCapacity, Input: input, Value: value, Capacity: capacity}
	}

	return input[digits:], value, nil
}

func parseField(field string, digits, bits int, input string) (string, uint64, error) {
	rest, v, err := ParseDecimalDigitsToBits(digits, bits, input)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Field = field
		}
		return "", 0, err
	}
	return rest, v, nil
}

// ParseStateCode parses a two-digit state code and looks it up in the state table.
func ParseStateCode(input string) (string, State, error) {
	rest, v, err := parseField("state", 2, stateBits, input)
	if err != nil {
		return "", 0, err
	}
	s, ok := LookupState(uint8(v))
	if !ok {
		return "", 0, &ParseError{Kind: UnknownState, Field: "state", Input: input, Value: v, Capacity: MaxState}
	}
	return rest, s, nil
}

// ParseCountyCode parses a three-digit county code (10 bits, always fits).
func ParseCountyCode(input string) (string, CountyCode, error) {
	rest, v, err := parseField("county", 3, countyBits, input)
	return rest, CountyCode(v), err
}

// ParseTractCode parses a six-digit census tract code (20 bits, always fits).
func ParseTractCode(input string) (string, TractCode, error) {
	rest, v, err := parseField("tract", 6, tractBits, input)
	return rest, TractCode(v), err
}

// ParseHomeID parses the four-digit within-tract household id.
func ParseHomeID(input string) (string, IDCode, error) {
	rest, v, err := parseField("home id", 4, 14, input)
	return rest, IDCode(v), err
}

// ParsePublicSchoolID parses the three-digit within-tract public school id.
func ParsePublicSchoolID(input string) (string, IDCode, error) {
	rest, v, err := parseField("public school id", 3, 10, input)
	return rest, IDCode(v), err
}

// PrivateSchoolMarker precedes the private school id in a school identifier.
const PrivateSchoolMarker = "xprvx"

// ParsePrivateSchoolID strips an optional "xprvx" marker, then parses the
// four-digit within-county private school id. The id must fit in 11 bits.
func ParsePrivateSchoolID(input string) (string, IDCode, error) {
	input = strings.TrimPrefix(input, PrivateSchoolMarker)
	rest, v, err := parseField("private school id", 4, 11, input)
	return rest, IDCode(v), err
}

// ParseWorkplaceID parses the five-digit within-tract workplace id. Five
// digits can exceed the 14-bit id field.
func ParseWorkplaceID(input string) (string, IDCode, error) {
	rest, v, err := parseField("workplace id", 5, idBits, input)
	return rest, IDCode(v), err
}

// ParseInteger parses every leading decimal digit of input. Values that overflow a
// uint64 are reported as ValueExceedsCapacity with Value and Capacity both set to
// math.MaxUint64; the true value is not representable.
func ParseInteger(input string) (string, uint64, error) {
	end := leadingDigits(input)
	if end == 0 {
		return "", 0, &ParseError{Kind: InvalidLength, Input: input, Expected: 1, Found: 0}
	}

	value, err := strconv.ParseUint(input[:end], 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return "", 0, &ParseError{Kind: ValueExceedsCapacity, Input: input, Value: math.MaxUint64, Capacity: math.MaxUint64}
		}
		return "", 0, &ParseError{Kind: InvalidDigit, Input: input, Char: rune(input[0])}
	}

	return input[end:], value, nil
}
