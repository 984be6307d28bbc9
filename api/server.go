package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/vidcat/config"
	"github.com/meghashyamc/vidcat/db/kvdb"
	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/meghashyamc/vidcat/logger"
	"github.com/meghashyamc/vidcat/services/catalog"
	"github.com/meghashyamc/vidcat/services/index"
	"github.com/meghashyamc/vidcat/services/search"
	"github.com/meghashyamc/vidcat/validation"
)

type server struct {
	cfg            *config.Config
	router         *gin.Engine
	httpServer     *http.Server
	kvdb           kvdb.DB
	searchdb       searchdb.DB
	validator      *validation.Validator
	searchService  *search.Service
	catalogService *catalog.Service
	indexService   *index.Service
	logger         logger.Logger
}

func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	defer s.closeDependencies()

	// Search results must cover every stored video before the first request
	if err := s.indexService.Rebuild(ctx, ""); err != nil {
		s.logger.Error("error rebuilding search index", "err", err.Error())
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
	s.searchdb, err = searchdb.New(ctx, s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		s.kvdb.Close()
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.closeDependencies()
		return err
	}

	s.searchService = search.New(s.logger, s.searchdb, s.cfg)
	s.catalogService = catalog.New(s.logger, s.kvdb, s.searchdb)
	s.indexService = index.New(ctx, s.logger, s.searchdb, s.kvdb)

	return nil
}

func (s *server) closeDependencies() {
	if err := s.searchdb.Close(); err != nil {
		s.logger.Error("error closing searchDB", "err", err.Error())
	}
	if err := s.kvdb.Close(); err != nil {
		s.logger.Error("error closing kvDB", "err", err.Error())
	}
}

func (s *server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	s.setupRoutes(router)

	s.router = router
}

// serve blocks until ctx is done and the http server has shut down.
func (s *server) serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			s.logger.Error("http server stopped", "err", err.Error())
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		return err
	}
	s.logger.Info("shut down http server successfully")
	return nil
}
