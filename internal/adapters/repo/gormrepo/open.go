package gormrepo

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. driver is "postgres" (default)
// or "mysql".
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
}
