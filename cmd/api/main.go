package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrussa/order-bridge/internal/canonical"
	"github.com/mrussa/order-bridge/internal/config"
	"github.com/mrussa/order-bridge/internal/httpapi"
	"github.com/mrussa/order-bridge/internal/ingest"
	"github.com/mrussa/order-bridge/internal/kafka"
	"github.com/mrussa/order-bridge/internal/store"
	"github.com/mrussa/order-bridge/internal/upstream"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CFG] %v", err)
	}
	log.Printf("[CFG] http=%s upstream=%t kafka=%t terminal=%v",
		cfg.HTTPAddr, cfg.UpstreamURL != "", cfg.KafkaBrokers != "", cfg.TerminalStatuses)

	st := store.NewWithTerminal(cfg.TerminalStatuses)

	var fetcher ingest.DetailFetcher
	if cfg.UpstreamURL != "" {
		fetcher = upstream.New(cfg.UpstreamURL, cfg.UpstreamTimeout)
		log.Printf("[UPSTREAM] detail fetch enabled (timeout=%s)", cfg.UpstreamTimeout)
	}

	ing := ingest.New(st, fetcher, canonical.Defaults{
		MerchantID:   cfg.MerchantID,
		MerchantName: cfg.MerchantName,
	}, log.Printf)

	api := httpapi.New(st, ing, cfg.APIToken, log.Printf, version)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.KafkaBrokers != "" {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, ing, log.Printf)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[KAFKA] consumer stopped: %v", err)
			}
		}()
	}

	go func() {
		log.Printf("[HTTP] listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[HTTP] %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[HTTP] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[HTTP] shutdown error: %v", err)
	}
	log.Printf("[HTTP] bye")
}
