package population

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/EmpoweredVote/EV-Population/internal/aspr"
	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

const Schema = "population"

// Person is one synthetic person. Absent settings are stored as NULL codes and a
// zero school category.
type Person struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	SourceFile     string    `gorm:"column:source_file;not null" json:"source_file"`
	Line           int       `gorm:"column:line;not null" json:"line"`
	Age            int16     `gorm:"column:age;not null" json:"age"`
	State          int16     `gorm:"column:state;not null;index" json:"state"`
	HomeID         fips.Code `gorm:"column:home_id;index" json:"home_id"`
	SchoolID       fips.Code `gorm:"column:school_id;index" json:"school_id"`
	SchoolCategory int16     `gorm:"column:school_category;not null;default:0" json:"school_category"`
	WorkID         fips.Code `gorm:"column:work_id;index" json:"work_id"`
}

func (Person) TableName() string { return Schema + ".persons" }

// NewPerson maps a dataset record to a row. The id is derived from the file name
// and line, so re-importing the same file yields the same ids.
func NewPerson(ns uuid.UUID, file string, line int, rec aspr.PersonRecord) Person {
	return Person{
		ID:             PersonID(ns, file, line),
		SourceFile:     file,
		Line:           line,
		Age:            int16(rec.Age),
		State:          int16(rec.State()),
		HomeID:         rec.HomeID,
		SchoolID:       rec.SchoolID,
		SchoolCategory: int16(rec.SchoolID.Category()),
		WorkID:         rec.WorkID,
	}
}

// ImportRun records one completed or failed import.
type ImportRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	Source      string         `gorm:"column:source" json:"source"`
	Status      string         `gorm:"column:status" json:"status"`
	Files       pq.StringArray `gorm:"type:text[];column:files" json:"files"`
	Persons     int64          `gorm:"column:persons" json:"persons"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	StartedAt   time.Time      `gorm:"column:started_at" json:"started_at"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (ImportRun) TableName() string { return Schema + ".import_runs" }
