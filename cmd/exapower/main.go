package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exalabs/exapower/internal/auth"
	"github.com/exalabs/exapower/internal/config"
	"github.com/exalabs/exapower/internal/gateway"
	"github.com/exalabs/exapower/internal/session"
	"github.com/exalabs/exapower/internal/supabase"
	"github.com/exalabs/exapower/internal/wallet"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := session.NewFileStore(cfg.SessionFile)
	client := supabase.NewClient(cfg.BackendURL, cfg.AnonKey, log)

	api := gateway.NewAPI(
		auth.NewService(client, store, log),
		wallet.NewService(client, store, log),
		log,
	)
	router := gateway.NewRouter(api, store)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	log.Infof("gateway started on %s", cfg.RunAddress)

	<-ctx.Done()

	log.Info("shutting down gateway gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("gateway shutdown failed: %+v", err)
	}

	log.Info("gateway exited properly")
}
