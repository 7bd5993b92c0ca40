package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XimoLopez/ses-hospedajes/internal/config"
	"github.com/XimoLopez/ses-hospedajes/internal/httpapi"
	"github.com/XimoLopez/ses-hospedajes/internal/job"
	"github.com/XimoLopez/ses-hospedajes/internal/logging"
	"github.com/XimoLopez/ses-hospedajes/internal/sesclient"
	"github.com/XimoLopez/ses-hospedajes/internal/sesxml"
	"github.com/XimoLopez/ses-hospedajes/internal/version"
	"github.com/XimoLopez/ses-hospedajes/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional, env vars override)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.Log.Level, cfg.Log.Format)
	log := logging.Default()
	log.Info("starting", "version", version.Version, "environment", cfg.SES.Environment, "store", cfg.Store)

	var store job.Store
	switch cfg.Store {
	case "redis":
		client, err := job.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		store = job.NewRedisStore(client, cfg.Redis.Namespace)
	default:
		store = job.NewMemoryStore()
	}

	queue := job.NewQueue(cfg.Queue)
	timings := sesclient.NewTimings()

	sesClient := sesclient.NewClient(cfg.Endpoint(), sesxml.Credentials{
		Username:   cfg.SES.Username,
		Password:   cfg.SES.Password,
		EntityCode: cfg.SES.EntityCode,
	}, sesclient.Options{
		Timeout:        time.Duration(cfg.SES.TimeoutSeconds) * time.Second,
		ReconcileDelay: time.Duration(cfg.SES.ReconcileDelaySeconds) * time.Second,
		Timings:        timings,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.New(store, queue, sesClient, cfg.SES.EstablishmentCode)
	go w.Run(ctx)

	handler := httpapi.NewHandler(store, queue, timings)
	router := httpapi.NewRouter(handler, cfg.Server.APIUser, cfg.Server.APIPassword)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel() // stop the worker

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", "error", err)
	}

	log.Info("server stopped")
}
