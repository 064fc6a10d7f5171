package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogFile logs that a dataset file finished reading.
func LogFile(lg zerolog.Logger, path string, records int, duration time.Duration) {
	lg.Info().
		Str("file", path).
		Int("records", records).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("dataset file read")
}

// LogParseFailure logs an id column that could not be parsed. These are expected in
// small numbers, so they go out at debug.
func LogParseFailure(lg zerolog.Logger, path string, line int, column string, err error) {
	lg.Debug().
		Str("file", path).
		Int("line", line).
		Str("column", column).
		Err(err).
		Msg("id column skipped")
}

// LogCopy logs a bulk insert batch.
func LogCopy(lg zerolog.Logger, rows int64, duration time.Duration) {
	lg.Info().
		Int64("rows", rows).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("copied batch")
}

// LogError logs a failed operation.
func LogError(lg zerolog.Logger, operation string, err error) {
	lg.Error().Str("op", operation).Err(err).Msg(operation + " failed")
}
