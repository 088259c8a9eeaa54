package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-circulation/circulation/config"
	"github.com/Astemirdum/library-circulation/circulation/internal/handler"
	"github.com/Astemirdum/library-circulation/circulation/internal/inventory"
	"github.com/Astemirdum/library-circulation/circulation/internal/metrics"
	"github.com/Astemirdum/library-circulation/circulation/internal/notify"
	"github.com/Astemirdum/library-circulation/circulation/internal/policy"
	"github.com/Astemirdum/library-circulation/circulation/internal/repository"
	"github.com/Astemirdum/library-circulation/circulation/internal/server"
	"github.com/Astemirdum/library-circulation/circulation/internal/service"
	"github.com/Astemirdum/library-circulation/circulation/internal/sweeper"
	"github.com/Astemirdum/library-circulation/circulation/migrations"
	"github.com/Astemirdum/library-circulation/pkg/circuit_breaker"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/logger"
	"github.com/Astemirdum/library-circulation/pkg/postgres"
)

const (
	breakerRecordLength     = 20
	breakerTimeout          = 10 * time.Second
	breakerPercentile       = 0.5
	breakerRecoveryRequests = 3
)

type engine struct {
	svc     *service.Service
	closers []func() error
}

func (e *engine) close(log *zap.Logger) {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			log.Warn("close", zap.Error(err))
		}
	}
}

func build(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, log *zap.Logger) (*engine, error) {
	e := &engine{}
	loc, err := policy.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	repo, err := newRepository(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, repo.Close)

	rdb := newRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		e.closers = append(e.closers, rdb.Close)
	}

	m := metrics.New(reg)
	deps := service.Deps{
		Repo:     repo,
		Policies: policy.NewStatic(cfg.Policy.ByClass()),
		Cache:    inventory.NewRedisCache(rdb, cfg.Redis.TTL, log),
		Location: loc,
		Metrics:  m,
	}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			e.close(log)
			return nil, errors.Wrap(err, "kafka.NewProducer")
		}
		e.closers = append(e.closers, producer.Close)
		cb := circuit_breaker.New(breakerRecordLength, breakerTimeout, breakerPercentile, breakerRecoveryRequests)
		deps.Dispatcher = notify.NewKafkaDispatcher(producer, cb, kafka.NotificationsTopic, log, m)
	} else {
		log.Info("kafka disabled, notifications go to the log")
		deps.Dispatcher = notify.NewLogDispatcher(log)
	}

	e.svc = service.NewService(deps, cfg.Service, log)
	return e, nil
}

func newRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("memory storage, state is lost on restart")
		return repository.NewMemory(log), nil
	}
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return nil, errors.Wrap(err, "db init")
	}
	return repository.NewRepository(db, log)
}

// newRedis returns nil when the cache is not configured or unreachable; the status
// projection then reads straight from the store.
func newRedis(ctx context.Context, cfg inventory.Redis, log *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, status cache disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "circulation")
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := build(ctx, cfg, reg, log)
	if err != nil {
		log.Fatal("build", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	sw := sweeper.New(eng.svc, policy.SystemClock{}, cfg.Sweep, log)
	g.Go(func() error {
		return sw.Run(gctx)
	})
	if cfg.Kafka.Enabled() {
		group, err := kafka.NewConsumer(cfg.Kafka, kafka.AssessmentsConsumerGroup)
		if err != nil {
			log.Fatal("kafka.NewConsumer", zap.Error(err))
		}
		consumer := handler.NewConsumer(eng.svc, nil, log)
		g.Go(func() error {
			return kafka.Consume(gctx, group, consumer, log, kafka.AssessmentsTopic)
		})
	}

	h := handler.New(eng.svc, log, handler.WithGatherer(reg))
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("background workers", zap.Error(err))
	}
	eng.close(log)
	log.Info("Graceful shutdown finished")
}

// Sweep runs one expire-holds and one assess-overdue cycle and exits.
func Sweep(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "circulation-sweep")
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eng, err := build(ctx, cfg, prometheus.NewRegistry(), log)
	if err != nil {
		return err
	}
	defer eng.close(log)
	return sweeper.New(eng.svc, policy.SystemClock{}, cfg.Sweep, log).Once(ctx)
}

func Migrate(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "circulation-migrate")
	if cfg.Storage == config.StorageMemory {
		log.Info("memory storage has no schema")
		return nil
	}
	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db, migrations.MigrationFiles); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
