package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/phenrril/headstock/internal/adapters/repo/gormrepo"
	"github.com/phenrril/headstock/internal/app"
	"github.com/phenrril/headstock/internal/config"
	"github.com/phenrril/headstock/internal/logging"
)

func main() {
	cfg := config.Load()
	closer := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, JSON: cfg.Production()})
	defer closer.Close()

	db, err := gormrepo.Open(cfg.DBDriver, cfg.DSN, !cfg.Production() && cfg.LogLevel == "debug")
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to database")
	}

	application, err := app.NewApp(db, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}
	if err := application.Migrate(); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate database")
	}

	ln, port, err := listen(cfg.Port)
	if err != nil {
		zlog.Fatal().Err(err).Msg("no port available")
	}

	server := &http.Server{
		Handler:           application.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info().Str("port", port).Str("env", cfg.Env).Msg("listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		zlog.Info().Msg("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		zlog.Error().Err(err).Msg("server stopped")
	}
}

// listen binds the configured port, falling back to 8081-8090 when it is taken.
func listen(port string) (net.Listener, string, error) {
	ln, err := net.Listen("tcp", ":"+port)
	if err == nil {
		return ln, port, nil
	}
	zlog.Warn().Err(err).Str("port", port).Msg("port busy, trying fallbacks")
	for p := 8081; p <= 8090; p++ {
		alt := fmt.Sprint(p)
		if l2, err2 := net.Listen("tcp", net.JoinHostPort("", alt)); err2 == nil {
			return l2, alt, nil
		}
	}
	return nil, "", err
}
