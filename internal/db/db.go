package db

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/EmpoweredVote/EV-Population/internal/logger"
)

var DB *gorm.DB

// gormWriter sends gorm's query log through zerolog.
type gormWriter struct {
	lg zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.lg.Debug().Msgf(format, args...)
}

// Open connects to Postgres. Queries slower than 100ms are logged at warn level
// through gorm's logger.
func Open(dsn string, lg zerolog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("db: DATABASE_URL is empty")
	}

	gl := gormlogger.New(
		gormWriter{lg: lg.With().Str("component", "gorm").Logger()},
		gormlogger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	d, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return d, nil
}

// Connect opens the database and stores it in DB.
func Connect(dsn string) error {
	d, err := Open(dsn, logger.L())
	if err != nil {
		return err
	}
	DB = d
	lg := logger.L()
	lg.Info().Msg("connected to database")
	return nil
}
