//go:build sqlite

package main

// sqlite support

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newDialector(dsn string) gorm.Dialector {
	return &sqlite.Dialector{
		DSN: dsn,
	}
}

func configureDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// PRAGMA foreign_keys is per connection, so keep to one.
	sqlDB.SetMaxOpenConns(1)

	// enable foreign key constraints
	return db.Exec("PRAGMA foreign_keys = ON").Error
}
