package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jetsetgo/shopfloor-kiosk/internal/api"
	"github.com/jetsetgo/shopfloor-kiosk/internal/cloud"
	"github.com/jetsetgo/shopfloor-kiosk/internal/config"
	"github.com/jetsetgo/shopfloor-kiosk/internal/endpoint"
	"github.com/jetsetgo/shopfloor-kiosk/internal/forms"
	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

func main() {
	fmt.Println("Shop Floor Job Tracking Kiosk")
	fmt.Println("=============================")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config file: %v", err)
		log.Println("Using default configuration")
		cfg = config.Default()
		cfg.ConfigPath = "config.yaml"
	}

	// Create log buffer and install log capture
	logBuf := api.NewLogBuffer(cfg.Kiosk.LogSize)
	api.InstallLogCapture(logBuf)
	history := api.NewSubmissionBuffer(cfg.Kiosk.HistorySize)

	if cfg.Endpoint.URL == "" {
		log.Fatalf("endpoint.url is not set in %s", cfg.ConfigPath)
	}

	// Print configuration
	fmt.Printf("Server Port: %d\n", cfg.Server.Port)
	fmt.Printf("Endpoint: %s\n", cfg.Endpoint.URL)
	fmt.Printf("Refresh: %s\n", cfg.Refresh.Schedule)

	hub := api.NewHub()
	store := jobs.NewStore(hub)
	client := endpoint.NewClient(cfg.Endpoint)

	session := forms.NewSession(store, client, cfg.Kiosk)
	session.OnSubmitted(func(sub forms.Submission) {
		rec := history.Record(sub)
		log.Printf("%s %s: %s", rec.Action, rec.Key, rec.Status)
	})

	refresher := cloud.NewRefresher(&cfg.Refresh, client, session, store)
	refresher.OnRefreshed = func(count int) {
		log.Printf("Open jobs refreshed (%d jobs)", count)
	}
	session.SetRefresher(refresher)

	if err := refresher.Start(); err != nil {
		log.Fatalf("Refresh error: %v", err)
	}

	logBuf.LogInfo("Kiosk starting...")

	server := api.NewServer(cfg, session, refresher, hub, logBuf, history)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down")
		refresher.Stop()
		os.Exit(0)
	}()

	fmt.Printf("\nStarting kiosk on http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
