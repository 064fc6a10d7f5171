// Package fips encodes hierarchical FIPS geographic region codes, augmented with a
// setting category and a monotonically increasing id, into a single uint64.
//
// The layout, most significant bits first:
//
//	| state | county | tract | category | id    | data |
//	| 63…58 | 57…48  | 47…28 | 27…24    | 23…10 | 9…0  |
//
// Fields are ordered by the geographic hierarchy, so comparing two codes as plain
// integers orders them state, then county, then tract, then category, then id.
// The low 10 data bits are free for application use and sort last.
//
// Nonhierarchical codes (places, congressional and state legislative districts,
// ZCTAs) are not represented.
package fips

import (
	"cmp"
	"fmt"
	"strings"
)

// Code is a packed FIPS region code. The zero value is never produced by a valid
// constructor and is used to mean "absent".
type Code uint64

type (
	CountyCode = uint16
	TractCode  = uint32
	IDCode     = uint16
	DataCode   = uint16
)

const (
	stateBits    = 6
	countyBits   = 10
	tractBits    = 20
	categoryBits = 4
	idBits       = 14
	dataBits     = 10

	dataOffset     = 0
	idOffset       = dataOffset + dataBits
	categoryOffset = idOffset + idBits
	tractOffset    = categoryOffset + categoryBits
	countyOffset   = tractOffset + tractBits
	stateOffset    = countyOffset + countyBits
)

// Field capacities, 2^bits - 1.
const (
	MaxState    = 1<<stateBits - 1
	MaxCounty   = 1<<countyBits - 1
	MaxTract    = 1<<tractBits - 1
	MaxCategory = 1<<categoryBits - 1
	MaxID       = 1<<idBits - 1
	MaxData     = 1<<dataBits - 1
)

const dataMask Code = MaxData

// CapacityError reports a field value that does not fit its bit width.
type CapacityError struct {
	Field    string
	Value    uint64
	Capacity uint64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("fips: %s value %d exceeds capacity %d", e.Field, e.Value, e.Capacity)
}

// New packs the six fields into a Code. It fails if any field exceeds its bit
// capacity, if the state is not a recognized code, or if the category is unknown.
func New(state State, county CountyCode, tract TractCode, category SettingCategory, id IDCode, data DataCode) (Code, error) {
	if !state.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStateCode, uint8(state))
	}
	if county > MaxCounty {
		return 0, &CapacityError{Field: "county", Value: uint64(county), Capacity: MaxCounty}
	}
	if tract > MaxTract {
		return 0, &CapacityError{Field: "tract", Value: uint64(tract), Capacity: MaxTract}
	}
	if uint8(category) > MaxCategory {
		return 0, &CapacityError{Field: "category", Value: uint64(category), Capacity: MaxCategory}
	}
	if !category.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(category))
	}
	if id > MaxID {
		return 0, &CapacityError{Field: "id", Value: uint64(id), Capacity: MaxID}
	}
	if data > MaxData {
		return 0, &CapacityError{Field: "data", Value: uint64(data), Capacity: MaxData}
	}

	return Code(uint64(state)<<stateOffset |
		uint64(county)<<countyOffset |
		uint64(tract)<<tractOffset |
		uint64(category)<<categoryOffset |
		uint64(id)<<idOffset |
		uint64(data)<<dataOffset), nil
}

// MustNew is like New but panics on invalid input.
func MustNew(state State, county CountyCode, tract TractCode, category SettingCategory, id IDCode, data DataCode) Code {
	c, err := New(state, county, tract, category, id, data)
	if err != nil {
		panic(err)
	}
	return c
}

func WithState(state State) Code {
	return MustNew(state, 0, 0, Unspecified, 0, 0)
}

func WithCounty(state State, county CountyCode) Code {
	return MustNew(state, county, 0, Unspecified, 0, 0)
}

func WithTract(state State, county CountyCode, tract TractCode) Code {
	return MustNew(state, county, tract, Unspecified, 0, 0)
}

func WithCategory(state State, county CountyCode, tract TractCode, category SettingCategory) Code {
	return MustNew(state, county, tract, category, 0, 0)
}

// IsZero reports whether c is the "absent" sentinel.
func (c Code) IsZero() bool { return c == 0 }

// Uint64 returns the raw packed value.
func (c Code) Uint64() uint64 { return uint64(c) }

func (c Code) State() State { return State(c.StateCode()) }

func (c Code) StateCode() uint8 {
	return uint8(c >> stateOffset)
}

func (c Code) CountyCode() CountyCode {
	return CountyCode(c>>countyOffset) & MaxCounty
}

func (c Code) TractCode() TractCode {
	return TractCode(c>>tractOffset) & MaxTract
}

func (c Code) CategoryCode() uint8 {
	return uint8(c>>categoryOffset) & MaxCategory
}

func (c Code) Category() SettingCategory { return SettingCategory(c.CategoryCode()) }

// ID returns the monotonically increasing id within the code's scope.
func (c Code) ID() IDCode {
	return IDCode(c>>idOffset) & MaxID
}

// Data returns the application data stored in the 10 least significant bits.
func (c Code) Data() DataCode {
	return DataCode(c & dataMask)
}

// WithData returns a copy of c whose 10 data bits are replaced by data. It panics if
// data does not fit in 10 bits.
func (c Code) WithData(data DataCode) Code {
	if data > MaxData {
		panic(&CapacityError{Field: "data", Value: uint64(data), Capacity: MaxData})
	}
	return c&^dataMask | Code(data)
}

// Compare orders codes by their full packed value.
func (c Code) Compare(other Code) int {
	return cmp.Compare(c, other)
}

// CompareNonData orders codes ignoring the data bits.
func (c Code) CompareNonData(other Code) int {
	return cmp.Compare(c&^dataMask, other&^dataMask)
}

// Level names a depth in the geographic hierarchy.
type Level uint8

const (
	LevelState Level = iota + 1
	LevelCounty
	LevelTract
	LevelCategory
	LevelID
)

func (l Level) String() string {
	switch l {
	case LevelState:
		return "state"
	case LevelCounty:
		return "county"
	case LevelTract:
		return "tract"
	case LevelCategory:
		return "category"
	case LevelID:
		return "id"
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l Level) offset() uint {
	switch l {
	case LevelState:
		return stateOffset
	case LevelCounty:
		return countyOffset
	case LevelTract:
		return tractOffset
	case LevelCategory:
		return categoryOffset
	case LevelID:
		return idOffset
	}
	panic(fmt.Sprintf("fips: unknown level %d", l))
}

// Range returns the inclusive bounds of every code that shares c's fields down to
// level. Because fields are ordered by the hierarchy, the bounds are contiguous.
func (c Code) Range(level Level) (lo, hi Code) {
	low := Code(1)<<level.offset() - 1
	return c &^ low, c | low
}

// Contains reports whether other lies in c's region at the given level.
func (c Code) Contains(level Level, other Code) bool {
	lo, hi := c.Range(level)
	return lo <= other && other <= hi
}

// Expand unpacks every field.
func (c Code) Expand() Expanded {
	return Expanded{
		State:    c.State(),
		County:   c.CountyCode(),
		Tract:    c.TractCode(),
		Category: c.Category(),
		ID:       c.ID(),
		Data:     c.Data(),
	}
}

func (c Code) String() string {
	return c.Expand().String()
}

// Expanded is the unpacked structural view of a Code.
type Expanded struct {
	State    State           `json:"state"`
	County   CountyCode      `json:"county"`
	Tract    TractCode       `json:"tract"`
	Category SettingCategory `json:"category"`
	ID       IDCode          `json:"id"`
	Data     DataCode        `json:"data"`
}

// Code packs e. It is the inverse of Code.Expand.
func (e Expanded) Code() (Code, error) {
	return New(e.State, e.County, e.Tract, e.Category, e.ID, e.Data)
}

// String renders the state and every non-default field. The output is for
// diagnostics and is not parsed back.
func (e Expanded) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "state: %s", e.State)
	if e.County != 0 {
		fmt.Fprintf(&b, ", county: %d", e.County)
	}
	if e.Tract != 0 {
		fmt.Fprintf(&b, ", tract: %d", e.Tract)
	}
	if e.Category != Unspecified {
		fmt.Fprintf(&b, ", setting: %s", e.Category)
	}
	if e.ID != 0 {
		fmt.Fprintf(&b, ", id: %d", e.ID)
	}
	if e.Data != 0 {
		fmt.Fprintf(&b, ", data field: %d", e.Data)
	}
	return b.String()
}
