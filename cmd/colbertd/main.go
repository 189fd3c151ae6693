// colbertd serves ColBERT late-interaction text embeddings over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/embedkit/embedd/internal/config"
	"github.com/embedkit/embedd/internal/inference"
	"github.com/embedkit/embedd/internal/logging"
	"github.com/embedkit/embedd/internal/model"
	"github.com/embedkit/embedd/internal/web"
)

var version = "dev"

const defaultModel = "colbert-ir/colbertv2.0"

func main() {
	os.Exit(run())
}

func run() int {
	cmd := "start"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "start":
		return runStart()
	case "version":
		fmt.Printf("colbertd %s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`colbertd - ColBERT late-interaction embedding service

Usage:
  colbertd [command]

Commands:
  start     Start the service (default)
  version   Print version
  help      Show this help`)
}

func runStart() int {
	cfg, err := config.Load(defaultModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	if err := logging.Init(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "logging init error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logging.Infof("[app] shutting down...")
		cancel()
	}()

	client := inference.New(cfg.InferenceURL, time.Duration(cfg.RequestTimeoutSecs)*time.Second)
	mgr := model.NewManager(cfg.ModelName, client)

	// The service does not accept traffic unless the model is loaded.
	if err := mgr.Load(ctx); err != nil {
		logging.Errorf("[model] failed to load model: %v", err)
		return 1
	}
	defer mgr.Shutdown()

	if err := web.NewLate(cfg, mgr).Start(ctx); err != nil {
		logging.Errorf("[web] server error: %v", err)
		return 1
	}
	return 0
}
