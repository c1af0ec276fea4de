package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "poll-registry/docs"
	"poll-registry/internal/config"
	"poll-registry/internal/domain/poll"
	"poll-registry/internal/domain/user"
	api "poll-registry/internal/http"
	"poll-registry/internal/metrics"
	"poll-registry/internal/platform/clock"
	"poll-registry/internal/platform/database"
	"poll-registry/internal/platform/eventbus"
	jwtpkg "poll-registry/internal/platform/jwt"
	pgrepo "poll-registry/internal/repository/postgres"
	sqliterepo "poll-registry/internal/repository/sqlite"
	"poll-registry/internal/worker"
)

// @title           Poll Registry API
// @version         1.0
// @description     Poll registry with one ballot per identity, owner moderation and an event journal
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	metrics.Register()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer store.close()

	history, err := store.journal.Events(ctx)
	if err != nil {
		log.Fatalf("read journal: %v", err)
	}
	queue := poll.NewEventQueue()
	reg, err := poll.Restore(poll.Identity(cfg.RegistryOwner), history, poll.WithEmitter(queue))
	if err != nil {
		log.Fatalf("restore registry: %v", err)
	}
	logger.Info("registry restored",
		"events", len(history),
		"polls", reg.TotalPolls(),
		"owner", reg.Owner(),
	)

	eventWorker := worker.NewEventWorker(queue, store.journal, logger)
	var bus api.Pinger
	if cfg.RedisEnabled() {
		pub, err := eventbus.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisChannel)
		if err != nil {
			logger.Warn("event bus disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer pub.Close()
			eventWorker.WithPublisher(pub)
			bus = pub
			logger.Info("publishing events", "addr", cfg.RedisAddr, "channel", pub.Channel())
		}
	}

	userSvc := user.NewService(store.users)
	pollSvc := poll.NewService(reg, clock.System())
	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer)

	router := api.NewRouter(userSvc, pollSvc, jwtMgr, store.journal, api.Options{
		TokenTTL:    cfg.TokenTTL,
		VotesPerMin: cfg.VoteRatePerMinute,
		VoteBurst:   cfg.VoteRateBurst,
		TrustProxy:  cfg.TrustProxy,
		Bus:         bus,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		eventWorker.Run(ctx)
	}()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// the worker flushes the queue once its context is cancelled
	cancel()
	wg.Wait()

	logger.Info("server stopped", "unjournaled", eventWorker.Pending())
}

type storage struct {
	journal poll.Journal
	users   user.Repository
	close   func() error
}

func openStore(ctx context.Context, cfg config.Config) (*storage, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := database.NewSQLite(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if err := sqliterepo.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storage{
			journal: sqliterepo.NewJournalRepo(db),
			users:   sqliterepo.NewUserRepo(db),
			close:   db.Close,
		}, nil
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if err := pgrepo.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storage{
			journal: pgrepo.NewJournalRepo(db),
			users:   pgrepo.NewUserRepo(db),
			close:   db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}
