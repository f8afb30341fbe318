package db

import (
	"fmt"

	"gorm.io/gorm"

	"learnhub/internal/model"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Course{},
		&model.Certificate{},
		&model.RetiredCertificateID{},
	}
}

// Migrate creates or updates tables, indexes and foreign keys for all models.
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table in reverse dependency order. Missing tables are ignored.
func DropAll(gormDB *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := gormDB.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
