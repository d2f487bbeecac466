package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/logiflow/internal/adapters/grpc/handler"
	"github.com/ogurasousui/logiflow/internal/adapters/repository/jsonfile"
	"github.com/ogurasousui/logiflow/internal/adapters/repository/mongodb"
	"github.com/ogurasousui/logiflow/internal/adapters/repository/postgres"
	"github.com/ogurasousui/logiflow/internal/core/employee"
	"github.com/ogurasousui/logiflow/internal/core/reference"
	"github.com/ogurasousui/logiflow/internal/core/task"
	"github.com/ogurasousui/logiflow/internal/core/validation"
	"github.com/ogurasousui/logiflow/internal/platform/config"
	mongoclient "github.com/ogurasousui/logiflow/internal/platform/db/mongodb"
	pg "github.com/ogurasousui/logiflow/internal/platform/db/postgres"
	"github.com/ogurasousui/logiflow/internal/platform/logging"
	"github.com/ogurasousui/logiflow/internal/platform/server"
	"github.com/sirupsen/logrus"
)

const systemName = "logiflow"

// backend は選択されたストアのリポジトリ群です。
type backend struct {
	employees employee.Repository
	tasks     task.Repository
	refs      interface {
		reference.AreaReader
		reference.RoleReader
	}
	tx    employee.TransactionManager
	close func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(systemName, cfg.Logging)
	if err != nil {
		logrus.Fatalf("failed to initialize logger: %v", err)
	}

	store, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open store")
	}
	defer store.close()

	refs := reference.NewResolver(store.refs, store.refs, store.employees)
	engine := validation.NewEngine(refs, store.employees)

	employeeSvc := employee.NewService(store.employees, engine, nil, store.tx)
	taskSvc := task.NewService(store.tasks, engine, nil, store.tx)

	grpcServer := server.New(cfg.Server.ListenAddr, handler.NewLogiflowHandler(taskSvc, employeeSvc, refs), logger)

	logger.WithFields(logrus.Fields{
		"driver": cfg.Storage.Driver,
		"addr":   cfg.Server.ListenAddr,
	}).Info("starting logiflow server")

	if err := grpcServer.Run(ctx); err != nil {
		logger.WithError(err).Fatal("server stopped with error")
	}
}

func openBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		store, err := jsonfile.Open(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		return &backend{
			employees: store.Employees(),
			tasks:     store.Tasks(),
			refs:      store.References(),
			close:     func() {},
		}, nil

	case config.DriverMongo:
		client, db, err := mongoclient.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		store := mongodb.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return &backend{
			employees: store.Employees(),
			tasks:     store.Tasks(),
			refs:      store.References(),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.WithError(err).Warn("mongo disconnect failed")
				}
			},
		}, nil

	case config.DriverPostgres:
		pool, err := pg.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &backend{
			employees: postgres.NewEmployeeRepository(pool),
			tasks:     postgres.NewTaskRepository(pool),
			refs:      postgres.NewReferenceRepository(pool),
			tx:        pg.NewTransactionManager(pool, pg.WithLogger(logger)),
			close:     pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
