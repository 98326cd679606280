package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/taxonomy-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/taxonomy-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/taxonomy-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/taxonomy-backend/internal/infrastructure/kafka"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/redis"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/sqlite"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/clients"
	"github.com/DRSN-tech/taxonomy-backend/pkg/closer"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/DRSN-tech/taxonomy-backend/pkg/postgres"
	"github.com/DRSN-tech/taxonomy-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	topicTimeout    = 10 * time.Second
)

// storage - набор репозиториев выбранного драйвера хранения.
type storage struct {
	categoryRepo usecase.CategoryRepository
	outboxRepo   usecase.OutboxRepository
	txManager    usecase.TxManager
	notifier     kafka.Notifier // nil, если драйвер не умеет уведомлять о новых событиях
	background   func(ctx context.Context)
}

type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv    *v1Http.Server
	grpcSrv    *v1Grpc.GRPCServer
	worker     *kafka.OutboxWorker
	background func(ctx context.Context)
}

func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		closer: closer.NewCloser(0),
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	st, err := a.initStorage(ctx)
	if err != nil {
		a.closer.Close(context.Background())
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.background = st.background

	redisClient := clients.NewRedisClient(cfg.Redis)
	if err := redisClient.Ping(ctx); err != nil {
		logger.Errorf(err, "failed to connect to redis")
		a.closer.Close(context.Background())
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	cacheRepo := redis.NewCacheRepo(redisClient, cfg.Redis.CategoryTTL, logger)

	producer := kafka.NewProducer(logger, cfg.Kafka)
	topicCtx, topicCancel := context.WithTimeout(context.Background(), topicTimeout)
	defer topicCancel()
	if err := producer.EnsureTopic(topicCtx); err != nil {
		// топик может создать брокер при первой записи
		logger.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })

	a.worker = kafka.NewOutboxWorker(st.outboxRepo, logger, producer, st.notifier, cfg.Outbox)

	taxonomyUC := usecase.NewTaxonomyUC(st.categoryRepo, st.outboxRepo, cacheRepo, st.txManager, logger)

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, logger)
	a.grpcSrv.RegisterServices(taxonomyUC)

	r := chi.NewRouter()
	v1Http.NewRouter(r, logger).Init(taxonomyUC)
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	return a, nil
}

func (a *App) initStorage(ctx context.Context) (*storage, error) {
	switch a.cfg.Storage.Driver {
	case config.StoragePostgres:
		return a.initPostgres(ctx)
	case config.StorageSQLite:
		return a.initSQLite(ctx)
	default:
		return nil, e.Wrap(a.cfg.Storage.Driver, e.ErrUnknownStorageDriver)
	}
}

func (a *App) initPostgres(ctx context.Context) (*storage, error) {
	db, err := postgres.Connect(ctx, a.cfg.Db.DSN())
	if err != nil {
		a.logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	if err := db.RunMigrations(postgres.DefaultSourceURL, a.logger); err != nil {
		a.logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	listener := pgdb.NewOutboxListener(db.Dsn, a.logger)

	return &storage{
		categoryRepo: pgdb.NewCategoryRepo(db.Pool, converter.NewCategoryConverter()),
		outboxRepo:   pgdb.NewOutboxEventRepo(db.Pool, converter.NewOutboxEventConverter()),
		txManager:    tr.NewPgxManager(db.Pool),
		notifier:     listener,
		background:   listener.Run,
	}, nil
}

func (a *App) initSQLite(ctx context.Context) (*storage, error) {
	db, err := sqlite.Open(a.cfg.Storage.SQLitePath)
	if err != nil {
		a.logger.Errorf(err, "failed to open sqlite database %s", a.cfg.Storage.SQLitePath)
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("sqlite", func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if err := sqlite.RunMigrations(ctx, db); err != nil {
		a.logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &storage{
		categoryRepo: sqlite.NewCategoryRepo(db),
		outboxRepo:   sqlite.NewOutboxEventRepo(db),
		txManager:    tr.NewGormManager(db),
		background:   func(context.Context) {},
	}, nil
}

// Run запускает серверы и фоновые задачи и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	go a.background(bgCtx)
	a.worker.Start(bgCtx)

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			grpcErrCh <- err
		}
	}()

	httpErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrCh <- err
		}
	}()

	// серверы останавливаются раньше воркера и хранилищ
	a.closer.Add("outbox worker", func(context.Context) error {
		a.worker.Stop()
		return nil
	})
	a.closer.Add("gRPC server", a.grpcSrv.Stop)
	a.closer.Add("HTTP server", a.httpSrv.Stop)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-httpErrCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("shutdown finished with errors: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}
