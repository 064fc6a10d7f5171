package population

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/EmpoweredVote/EV-Population/internal/db"
)

// Init creates the population schema and migrates its tables.
func Init(d *gorm.DB) error {
	if err := db.EnsureSchema(d, Schema); err != nil {
		return fmt.Errorf("ensure schema %s: %w", Schema, err)
	}
	if err := d.AutoMigrate(&Person{}, &ImportRun{}); err != nil {
		return fmt.Errorf("auto-migrate population tables: %w", err)
	}
	return nil
}
