package population

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/EmpoweredVote/EV-Population/internal/aspr"
	"github.com/EmpoweredVote/EV-Population/internal/fips"
	"github.com/EmpoweredVote/EV-Population/internal/logger"
)

var ErrNotEmpty = errors.New("population: persons table is not empty")

var personColumns = []string{
	"id", "source_file", "line", "age", "state",
	"home_id", "school_id", "school_category", "work_id",
}

// Store reads and writes the population tables.
type Store struct {
	db *gorm.DB
}

func NewStore(d *gorm.DB) *Store {
	return &Store{db: d}
}

func nullCode(c fips.Code) any {
	if c.IsZero() {
		return nil
	}
	return c.SQLValue()
}

// CopyPersons bulk loads persons with COPY. It needs the pgx driver, which is what
// gorm's postgres dialector uses.
func (s *Store) CopyPersons(ctx context.Context, persons []Person) (int64, error) {
	if len(persons) == 0 {
		return 0, nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return 0, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	start := time.Now()
	var n int64
	err = conn.Raw(func(driverConn any) error {
		pc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("population: copy needs the pgx driver, got %T", driverConn)
		}
		var err error
		n, err = pc.Conn().CopyFrom(ctx,
			pgx.Identifier{Schema, "persons"},
			personColumns,
			pgx.CopyFromSlice(len(persons), func(i int) ([]any, error) {
				p := persons[i]
				return []any{
					pgtype.UUID{Bytes: p.ID, Valid: true},
					p.SourceFile,
					int32(p.Line),
					p.Age,
					p.State,
					nullCode(p.HomeID),
					nullCode(p.SchoolID),
					p.SchoolCategory,
					nullCode(p.WorkID),
				}, nil
			}),
		)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("copy persons: %w", err)
	}

	logger.LogCopy(logger.Ctx(ctx), n, time.Since(start))
	return n, nil
}

func (s *Store) Empty(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS (SELECT 1 FROM ` + Schema + `.persons)`).
		Scan(&exists).Error
	return !exists, err
}

func (s *Store) Truncate(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec(`TRUNCATE TABLE ` + Schema + `.persons`).Error
}

// PersonsInRegion returns up to limit persons whose setting lies inside region at
// level, ordered by code. Codes sort by hierarchy, so this is one index range scan.
func (s *Store) PersonsInRegion(ctx context.Context, region fips.Code, level fips.Level, setting Setting, limit int) ([]Person, error) {
	col, category, err := setting.filter()
	if err != nil {
		return nil, err
	}
	lo, hi := region.Range(level)

	q := s.db.WithContext(ctx).Where(col+" BETWEEN ? AND ?", lo, hi)
	if category != fips.Unspecified {
		q = q.Where("school_category = ?", int16(category))
	}

	var out []Person
	err = q.
		Order(col).
		Order("id").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Stats counts persons per state and settings per category. An empty states list
// counts every state.
func (s *Store) Stats(ctx context.Context, states []fips.State) (aspr.Summary, error) {
	codes := make([]int64, len(states))
	for i, st := range states {
		codes[i] = int64(st)
	}
	filter := pq.Array(codes)
	where := `WHERE cardinality(?::smallint[]) = 0 OR state = ANY(?::smallint[])`

	var byState []struct {
		State int16
		N     int64
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT state, count(*) AS n FROM `+Schema+`.persons `+where+` GROUP BY state`,
		filter, filter,
	).Scan(&byState).Error; err != nil {
		return aspr.Summary{}, fmt.Errorf("count by state: %w", err)
	}

	var cat struct {
		Persons       int64
		Home          int64
		Workplace     int64
		PublicSchool  int64
		PrivateSchool int64
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT count(*) AS persons,
			count(home_id) AS home,
			count(work_id) AS workplace,
			count(*) FILTER (WHERE school_category = ?) AS public_school,
			count(*) FILTER (WHERE school_category = ?) AS private_school
		FROM `+Schema+`.persons `+where,
		fips.PublicSchool.Encode(), fips.PrivateSchool.Encode(), filter, filter,
	).Scan(&cat).Error; err != nil {
		return aspr.Summary{}, fmt.Errorf("count by category: %w", err)
	}

	sum := aspr.Summary{
		Persons:    cat.Persons,
		States:     make(map[string]int64, len(byState)),
		Categories: make(map[string]int64, 4),
	}
	for _, r := range byState {
		if st := fips.State(r.State); st.Valid() {
			sum.States[st.String()] = r.N
		}
	}
	for c, n := range map[fips.SettingCategory]int64{
		fips.Home:          cat.Home,
		fips.Workplace:     cat.Workplace,
		fips.PublicSchool:  cat.PublicSchool,
		fips.PrivateSchool: cat.PrivateSchool,
	} {
		if n > 0 {
			sum.Categories[c.Slug()] = n
		}
	}
	return sum, nil
}

func (s *Store) SaveRun(ctx context.Context, run *ImportRun) error {
	return s.db.WithContext(ctx).Save(run).Error
}

// Runs returns the most recent import runs first.
func (s *Store) Runs(ctx context.Context, limit int) ([]ImportRun, error) {
	var out []ImportRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
