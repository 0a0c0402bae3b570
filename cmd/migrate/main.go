package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/techcity/backoffice/internal/infrastructure/config"
	"github.com/techcity/backoffice/internal/infrastructure/logger"
	"github.com/techcity/backoffice/internal/infrastructure/migration"
	"github.com/techcity/backoffice/internal/infrastructure/persistence"
)

const defaultMigrationsPath = "migrations"

func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.NewForEnvironment("development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}

	// auto runs gorm's AutoMigrate instead of the SQL files; development only
	if command == "auto" {
		db, err := persistence.NewDatabase(&cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			_ = db.Close()
		}()
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Auto migration failed", zap.Error(err))
		}
		log.Info("Auto migration completed")
		return
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		_ = sqlDB.Close()
	}()

	migrator, err := migration.New(sqlDB, absPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		_ = migrator.Close()
	}()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate steps <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		err = migrator.Steps(n)
	case "version":
		version, dirty, verErr := migrator.Version()
		if verErr != nil {
			log.Fatal("Failed to get version", zap.Error(verErr))
		}
		log.Info("Current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
		return
	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		v, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Invalid version", zap.String("value", args[1]))
		}
		err = migrator.Force(v)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`Usage: migrate [-path <dir>] <command>

Commands:
  up              Apply all pending migrations
  down            Roll back all migrations
  steps <n>       Apply n migrations (negative rolls back)
  version         Show the current migration version
  force <version> Set the version without running migrations
  auto            Run gorm AutoMigrate (development only)`)
}
