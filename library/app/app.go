package app

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-catalog/library/config"
	"github.com/Astemirdum/library-catalog/library/internal/events"
	"github.com/Astemirdum/library-catalog/library/internal/handler"
	"github.com/Astemirdum/library-catalog/library/internal/repository"
	"github.com/Astemirdum/library-catalog/library/internal/server"
	"github.com/Astemirdum/library-catalog/library/internal/service"
	"github.com/Astemirdum/library-catalog/library/internal/verify"
	"github.com/Astemirdum/library-catalog/library/migrations"
	"github.com/Astemirdum/library-catalog/pkg/logger"
	"github.com/Astemirdum/library-catalog/pkg/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := store.New(context.Background(), &cfg.Database, migrations.MigrationFiles, store.WithLogger(log))
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	publisher, closePublisher, err := events.New(cfg.Kafka, log)
	if err != nil {
		log.Fatal("events.New", zap.Error(err))
	}
	svc := service.NewService(repo, log,
		service.WithPublisher(publisher),
		service.WithLoanDays(cfg.Catalog.LoanDays()),
	)
	if cfg.Catalog.Seed {
		if _, err := svc.Seed(context.Background()); err != nil {
			log.Fatal("seed", zap.Error(err))
		}
	}

	h := handler.New(svc, log, handler.WithWebDir(cfg.Catalog.WebDir))
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)),
		zap.String("dialect", string(cfg.Database.Dialect)),
		zap.Bool("events", cfg.Kafka.Enabled()))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if err = closePublisher(); err != nil {
		log.Error("publisher close", zap.Error(err))
	}
	if err = db.Close(); err != nil {
		log.Error("db close", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}

// Migrate runs a goose command ("up", "down", "status") against the configured store.
func Migrate(ctx context.Context, cfg *config.Config, command string) error {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := store.Open(ctx, &cfg.Database, store.WithLogger(log))
	if err != nil {
		return err
	}
	defer db.Close()
	return store.Migrate(ctx, db, migrations.MigrationFiles, command)
}

// Seed migrates the store and inserts the demonstration catalog when it is empty.
func Seed(ctx context.Context, cfg *config.Config) (bool, error) {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := store.New(ctx, &cfg.Database, migrations.MigrationFiles, store.WithLogger(log))
	if err != nil {
		return false, err
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return false, err
	}
	svc := service.NewService(repo, log, service.WithLoanDays(cfg.Catalog.LoanDays()))
	seeded, err := svc.Seed(ctx)
	return seeded, errors.Wrap(err, "seed")
}

// Verify writes the setup checklist to w.
func Verify(ctx context.Context, cfg *config.Config, w io.Writer) error {
	// The router is built only to list its routes; no request reaches the service.
	h := handler.New(nil, zap.NewNop(), handler.WithWebDir(cfg.Catalog.WebDir))
	return verify.Run(ctx, w, cfg, h.NewRouter().Routes())
}
