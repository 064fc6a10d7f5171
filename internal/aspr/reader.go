package aspr

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
	"github.com/EmpoweredVote/EV-Population/internal/logger"
	"github.com/EmpoweredVote/EV-Population/internal/metrics"
)

// Column names, used as metric labels and in log entries.
const (
	ColumnHome   = "home_id"
	ColumnSchool = "school_id"
	ColumnWork   = "work_id"
)

type Option func(*Reader)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reader) { r.metrics = m }
}

func WithLogger(lg zerolog.Logger) Option {
	return func(r *Reader) { r.log = lg }
}

// Reader iterates over the person records of one dataset file:
//
//	for r.Scan() {
//		rec := r.Record()
//	}
//	if err := r.Err(); err != nil { ... }
//
// The header row is mandatory and skipped. An id column that fails to parse yields
// a zero code for that column and iteration continues. A row whose age cannot be
// parsed ends iteration without an error; Stopped reports the line.
type Reader struct {
	name    string
	csv     *csv.Reader
	closer  io.Closer
	metrics *metrics.Metrics
	log     zerolog.Logger

	rec     PersonRecord
	line    int
	records int
	skipped int
	stopped int
	err     error
	done    bool
}

// NewReader reads the header row of r and returns a Reader positioned before the
// first record. name is used in errors and logs.
func NewReader(r io.Reader, name string, opts ...Option) (*Reader, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	rd := &Reader{name: name, csv: cr, log: logger.L()}
	for _, opt := range opts {
		opt(rd)
	}

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Kind: KindEmptyFile, Path: name, Err: ErrEmptyFile}
		}
		return nil, ioError(name, err)
	}
	return rd, nil
}

// OpenFile opens a dataset CSV file. The returned Reader must be closed.
func OpenFile(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError(path, err)
	}
	r, err := NewReader(f, path, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

func (r *Reader) Scan() bool {
	if r.done {
		return false
	}

	row, err := r.csv.Read()
	if err != nil {
		r.done = true
		if !errors.Is(err, io.EOF) {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				r.err = &Error{Kind: KindParse, Path: r.name, Line: pe.Line, Err: err}
			} else {
				r.err = ioError(r.name, err)
			}
			return false
		}
		r.metrics.IncFilesRead()
		return false
	}
	r.line, _ = r.csv.FieldPos(0)

	age, err := strconv.ParseUint(strings.TrimSpace(row[0]), 10, 8)
	if err != nil {
		r.done = true
		r.stopped = r.line
		r.log.Warn().Str("file", r.name).Int("line", r.line).Err(err).Msg("invalid age, stopping")
		return false
	}

	r.rec = PersonRecord{
		Age:      uint8(age),
		HomeID:   r.column(row, 1, ColumnHome, fips.ParseHomeCode),
		SchoolID: r.column(row, 2, ColumnSchool, fips.ParseSchoolCode),
		WorkID:   r.column(row, 3, ColumnWork, fips.ParseWorkplaceCode),
	}
	r.records++
	r.metrics.IncRecordsRead()
	return true
}

func (r *Reader) column(row []string, i int, name string, parse func(string) (string, fips.Code, error)) fips.Code {
	if i >= len(row) {
		return 0
	}
	s := strings.TrimSpace(row[i])
	if s == "" {
		return 0
	}
	_, code, err := parse(s)
	if err != nil {
		r.skipped++
		r.metrics.IncIDParseFailure(name)
		logger.LogParseFailure(r.log, r.name, r.line, name, err)
		return 0
	}
	return code
}

// Record returns the record read by the last successful Scan.
func (r *Reader) Record() PersonRecord { return r.rec }

// Line returns the file line of the current record. The header is line 1.
func (r *Reader) Line() int { return r.line }

func (r *Reader) Name() string { return r.name }

// Records returns how many records have been read so far.
func (r *Reader) Records() int { return r.records }

// Skipped returns how many id columns failed to parse.
func (r *Reader) Skipped() int { return r.skipped }

// Stopped returns the line of the row with an invalid age that ended iteration,
// or 0.
func (r *Reader) Stopped() int { return r.stopped }

func (r *Reader) Err() error { return r.err }

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
