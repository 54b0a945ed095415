package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/config"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/db/kvdb"
	"github.com/meghashyamc/schoolfinder/db/searchdb"
	"github.com/meghashyamc/schoolfinder/db/sqldb"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/meghashyamc/schoolfinder/services/listing"
	"github.com/meghashyamc/schoolfinder/services/search"
	"github.com/meghashyamc/schoolfinder/services/suggest"
	"github.com/meghashyamc/schoolfinder/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg          *config.Config
	router       *gin.Engine
	httpServer   *http.Server
	kvdb         *kvdb.BoltDB
	postgres     *sqldb.PostgresCatalog
	searchdb     *searchdb.BleveDB
	validator    *validation.Validator
	searchEngine *search.Engine
	listing      *listing.Service
	suggest      *suggest.Service
	logger       logger.Logger
}

// Run serves the API until ctx is cancelled or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config) error {
	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	defer s.closeDependencies()

	// cancelled before the stores close so background refreshes stop first
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	s.setupRouter()

	return s.serve(ctx)
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}

	if s.cfg.GetCatalogDriver() == config.CatalogDriverPostgres {
		s.postgres, err = sqldb.New(s.logger, s.cfg)
		if err != nil {
			s.logger.Error("error creating postgres catalog", "err", err.Error())
			return err
		}
		if err := s.postgres.Ping(ctx); err != nil {
			s.logger.Error("error reaching postgres", "err", err.Error())
			return fmt.Errorf("error reaching postgres: %w", err)
		}
		if err := s.postgres.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	s.searchdb, err = searchdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	return s.setupServices(ctx)
}

// setupServices points every service at the same catalog. With postgres the
// catalog is read-only here and suggestions are rebuilt on a timer.
func (s *server) setupServices(ctx context.Context) error {
	var browser catalog.Browser = s.kvdb
	if s.postgres != nil {
		browser = s.postgres
	}
	s.logger.Info("catalog selected", "driver", s.cfg.GetCatalogDriver())

	s.searchEngine = search.New(s.logger, browser)
	s.suggest = suggest.New(ctx, s.logger, s.searchdb, browser)
	if err := s.suggest.Rebuild(ctx); err != nil {
		s.logger.Error("error building suggestions", "err", err.Error())
		return err
	}

	if s.postgres != nil {
		s.listing = listing.NewReadOnly(s.logger, s.postgres)
		s.suggest.RefreshEvery(ctx, s.cfg.GetSuggestRefreshInterval())
		return nil
	}
	s.listing = listing.New(s.logger, s.kvdb, s.suggest)

	return nil
}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	s.setupRoutes(router)

	s.router = router
}

func (s *server) serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			s.logger.Error("http server failed", "err", err.Error())
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}

func (s *server) closeDependencies() {
	if s.searchdb != nil {
		s.searchdb.Close()
	}
	if s.postgres != nil {
		s.postgres.Close()
	}
	if s.kvdb != nil {
		s.kvdb.Close()
	}
}
