package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/innerlight/circles-backend/internal/config"
	"github.com/innerlight/circles-backend/internal/domain"
	"github.com/innerlight/circles-backend/internal/migration"
	"github.com/innerlight/circles-backend/pkg/database"
	"gorm.io/gorm"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	dryRun := flag.Bool("dry-run", false, "list the tables that would be migrated without touching the database")
	verify := flag.Bool("verify", false, "print row counts after migrating")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	config.LoadDotEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *dryRun {
		for _, m := range migration.Models() {
			fmt.Printf("would migrate %s\n", tableName(m))
		}
		fmt.Printf("would seed %d circles when the circles table is empty\n", len(migration.DefaultCircles()))
		return
	}

	dsn := cfg.Database.SQLitePath
	if cfg.Database.Driver == "mysql" {
		dsn = cfg.Database.GetDSN()
	}
	db, err := database.Open(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             dsn,
		MaxIdleConns:    2,
		MaxOpenConns:    2,
		ConnMaxLifetime: time.Minute,
		Verbose:         *verbose,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	start := time.Now()
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Printf("migrated in %s\n", time.Since(start).Round(time.Millisecond))

	if *verify {
		if err := printCounts(db); err != nil {
			log.Fatalf("Verify failed: %v", err)
		}
	}
}

type tabler interface {
	TableName() string
}

func tableName(m interface{}) string {
	if t, ok := m.(tabler); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", m)
}

func printCounts(db *gorm.DB) error {
	for _, m := range migration.Models() {
		var n int64
		if err := db.Model(m).Count(&n).Error; err != nil {
			return fmt.Errorf("count %s: %w", tableName(m), err)
		}
		fmt.Printf("%-16s %d rows\n", tableName(m), n)
	}
	var scheduled int64
	if err := db.Model(&domain.Event{}).Where("status = ?", domain.EventStatusScheduled).Count(&scheduled).Error; err != nil {
		return err
	}
	fmt.Printf("%-16s %d scheduled\n", "", scheduled)
	return nil
}
