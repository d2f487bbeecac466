package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/logiflow/internal/adapters/repository/jsonfile"
	"github.com/ogurasousui/logiflow/internal/adapters/repository/mongodb"
	"github.com/ogurasousui/logiflow/internal/adapters/repository/postgres"
	"github.com/ogurasousui/logiflow/internal/core/migration"
	"github.com/ogurasousui/logiflow/internal/platform/config"
	mongoclient "github.com/ogurasousui/logiflow/internal/platform/db/mongodb"
	pg "github.com/ogurasousui/logiflow/internal/platform/db/postgres"
	"github.com/ogurasousui/logiflow/internal/platform/logging"
	"github.com/sirupsen/logrus"
)

const systemName = "logiflow-migrate"

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
		dataDir       = flag.String("data", "", "legacy JSON data directory (defaults to storage.data_dir)")
	)
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfgPath := effectiveConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(systemName, cfg.Logging)
	if err != nil {
		logrus.Fatalf("failed to initialize logger: %v", err)
	}

	if action == "legacy" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dir := cfg.Storage.DataDir
		if *dataDir != "" {
			dir = *dataDir
		}
		if err := runLegacy(ctx, cfg, dir, logger); err != nil {
			logger.WithError(err).Fatal("legacy migration failed")
		}
		return
	}

	if err := cfg.Database.Validate(); err != nil {
		logger.WithError(err).Fatal("schema migrations require a valid database section")
	}
	if err := runMigration(action, *migrationsDir, cfg.Database.DSN(), logger); err != nil {
		logger.WithError(err).Fatalf("migration %s failed", action)
	}

	logger.WithField("action", action).Info("migration completed")
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func runMigration(action, dir, dsn string, logger logrus.FieldLogger) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Info("no migration applied")
				return nil
			}
			return err
		}
		logger.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("current schema version")
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

// runLegacy は JSON ファイルの旧データを設定されたストアへ移行します。
// 移行先は mongo または postgres で、postgres の場合はスキーマ適用済みである必要があります。
func runLegacy(ctx context.Context, cfg *config.Config, dataDir string, logger *logrus.Logger) error {
	src, err := jsonfile.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open legacy store: %w", err)
	}

	var target migration.Target
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, db, err := mongoclient.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.WithError(err).Warn("mongo disconnect failed")
			}
		}()

		store := mongodb.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure mongo indexes: %w", err)
		}
		target = mongodb.NewMigrationTarget(store)

	case config.DriverPostgres:
		pool, err := pg.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		target = postgres.NewMigrationTarget(pool, pg.NewTransactionManager(pool, pg.WithLogger(logger)))

	default:
		return fmt.Errorf("legacy migration target must be %q or %q, got %q", config.DriverMongo, config.DriverPostgres, cfg.Storage.Driver)
	}

	report, err := migration.NewMigrator(logger).Migrate(ctx, src, target)
	if err != nil {
		var stageErr *migration.StageError
		if errors.As(err, &stageErr) {
			logger.WithFields(logrus.Fields{
				"stage":  stageErr.Stage,
				"record": stageErr.RecordID,
			}).Error("migration stopped; target is left partially written and the run must be repeated")
		}
		return err
	}

	logger.WithFields(logrus.Fields{
		"source":             dataDir,
		"driver":             cfg.Storage.Driver,
		"areas":              report.AreasCopied,
		"roles":              report.RolesCopied,
		"employees":          report.EmployeesMigrated,
		"tasks":              report.TasksMigrated,
		"orphaned_task_refs": report.OrphanedTaskReferences,
	}).Info("legacy migration completed")

	return nil
}
