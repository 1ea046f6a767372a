//go:build !sqlite

package main

import (
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dsnOptions are required for utf8mb4 tag names and time.Time columns.
const dsnOptions = "charset=utf8mb4&parseTime=True&loc=Local"

func newDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN: mergeOptions(dsn, dsnOptions),
	})
}

// mergeOptions appends each of options to dsn unless dsn already sets it.
func mergeOptions(dsn, options string) string {
	for _, opt := range strings.Split(options, "&") {
		key, _, _ := strings.Cut(opt, "=")
		if key == "" || strings.Contains(dsn, "?"+key+"=") || strings.Contains(dsn, "&"+key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + opt
	}
	return dsn
}

func configureDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// digest and housekeeping runs are short; serve holds the pool open.
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}
