// Command vidly starts the movie rental HTTP API.
//
// Configuration comes from the environment, optionally seeded from a .env
// file:
//
//	VIDLY_JWT_PRIVATE_KEY=secret VIDLY_DB=bolt://vidly.db go run .
//
// VIDLY_DB is either a mongodb:// connection string or bolt://<path> for an
// embedded single-file store. The server listens on PORT (default 3000).
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arkantrust/vidly/auth"
	"github.com/arkantrust/vidly/config"
	"github.com/arkantrust/vidly/handlers"
	"github.com/arkantrust/vidly/logging"
	"github.com/arkantrust/vidly/metrics"
	"github.com/arkantrust/vidly/store"
)

func main() {
	envFile := flag.String("env", ".env", "optional file of environment variables")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.WithError(err).Fatal("FATAL ERROR: invalid configuration")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("FATAL ERROR: invalid logging configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	s, err := store.Open(ctx, cfg.DatabaseURI)
	cancel()
	if err != nil {
		log.WithError(err).WithField("backend", store.Backend(cfg.DatabaseURI)).Fatal("failed to open database")
	}
	defer s.Close()
	log.WithField("backend", store.Backend(cfg.DatabaseURI)).Info("connected to database")

	a, err := auth.New(cfg.JWTPrivateKey,
		auth.WithTokenTTL(cfg.TokenTTL),
		auth.WithBcryptCost(cfg.BcryptCost),
	)
	if err != nil {
		log.WithError(err).Fatal("FATAL ERROR: invalid auth configuration")
	}

	h := handlers.New(s, a, log, metrics.New())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Routes(cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("server stopped")
}
