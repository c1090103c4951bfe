package database

import (
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options connection settings
type Options struct {
	Driver          string // mysql | sqlite
	DSN             string // mysql DSN or sqlite path
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	Verbose         bool
}

// Open opens a gorm connection for the configured driver
func Open(opts Options) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if opts.Verbose {
		logLevel = gormlogger.Info
	}
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch opts.Driver {
	case "mysql":
		db, err = openMySQL(opts.DSN, gormCfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(opts.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.Driver == "sqlite" {
		// sqlite serialises writers anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return db, nil
}

func openMySQL(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("DSN 파싱 실패: %w", err)
	}
	if mysqlCfg.Params == nil {
		mysqlCfg.Params = map[string]string{}
	}
	mysqlCfg.Params["time_zone"] = "'+00:00'"
	mysqlCfg.ParseTime = true

	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	db.Exec("SET NAMES utf8mb4")
	return db, nil
}
