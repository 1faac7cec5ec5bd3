package app

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resetd/pkg/common/cache"
	"resetd/pkg/common/config"
	"resetd/pkg/common/database"
	"resetd/pkg/common/logger"
	"resetd/pkg/common/restful"
	"resetd/pkg/common/worker"
	"resetd/pkg/reset"
	"resetd/pkg/resetapi"
)

const workerPoolSize = 4

// Service holds the components behind the reset endpoint.
type Service struct {
	Config   *config.Config
	DB       *database.Pool
	Cache    *redis.Client
	Workers  *worker.Pool
	Resetter *reset.Orchestrator
}

// InitLogging configures the global logger from the optional log section.
func InitLogging(cfg *config.Config) error {
	lc := logger.DefaultConfig()
	if cfg.Log != nil {
		lc = cfg.Log.Merge()
	}
	return logger.Init(lc)
}

// NewService wires the database pool, cache client and worker pool into a
// reset orchestrator. Nothing connects until the first reset.
func NewService(cfg *config.Config, opts ...reset.Option) (*Service, error) {
	workers, err := worker.NewPool(workerPoolSize)
	if err != nil {
		return nil, err
	}
	db := database.NewPool(cfg.DB, database.WithQuietSQL(config.IsTestMode()))
	client := cache.New(cfg.Redis)

	opts = append([]reset.Option{reset.WithRunner(workers)}, opts...)
	return &Service{
		Config:   cfg,
		DB:       db,
		Cache:    client,
		Workers:  workers,
		Resetter: reset.New(reset.NewDatabase(db), reset.NewCache(client), opts...),
	}, nil
}

// Server returns a REST server on addr with the reset routes registered.
func (s *Service) Server(addr string) *restful.Server {
	srv := restful.NewServer(restful.WithAddress(addr))
	resetapi.RegisterRoutes(srv.Engine.Group("/api"), s.Resetter)
	return srv
}

// Close releases every connection held by the service.
func (s *Service) Close() {
	log := logger.GetLogger()
	if err := s.DB.Close(); err != nil {
		log.Error().Err(err).Msg("database close error")
	}
	if err := s.Cache.Close(); err != nil {
		log.Error().Err(err).Msg("cache close error")
	}
	st := s.Workers.Stats()
	s.Workers.Release()
	log.Info().
		Uint64("jobs", st.Completed).
		Uint64("panics", st.Panics).
		Dur("last_job", st.LastDur).
		Msg("worker pool released")
}

// ListenAddr returns the loopback address one port above the main
// application's port.
func ListenAddr(port int) (string, error) {
	if port <= 0 || port >= 65535 {
		return "", fmt.Errorf("no port available above %d", port)
	}
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port+1)), nil
}

// RunAPI serves the reset endpoint until ctx is cancelled. An empty addr
// selects ListenAddr(cfg.Port).
func RunAPI(ctx context.Context, cfg *config.Config, addr string) error {
	log := logger.GetLogger()
	if addr == "" {
		var err error
		if addr, err = ListenAddr(cfg.Port); err != nil {
			return err
		}
	}

	svc, err := NewService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := svc.Server(addr)
	if err := srv.Start(); err != nil {
		return err
	}
	log.Info().Bool("test_mode", config.IsTestMode()).Msg("reset service ready")

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("Server exited cleanly")
	return nil
}

// RunOnce performs a single reset without starting the server.
func RunOnce(ctx context.Context, cfg *config.Config) (reset.Outcome, error) {
	svc, err := NewService(cfg)
	if err != nil {
		return reset.Failed, err
	}
	defer svc.Close()
	return svc.Resetter.Reset(ctx), nil
}
