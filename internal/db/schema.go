package db

import (
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// EnsureSchema creates schema if it does not exist. The name is interpolated, so
// only lower-case identifiers are accepted.
func EnsureSchema(d *gorm.DB, schema string) error {
	if !identRe.MatchString(schema) {
		return fmt.Errorf("db: invalid schema name %q", schema)
	}
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}
