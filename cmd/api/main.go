package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/melih/patchwork-docker/internal/adapters/docker"
	"github.com/melih/patchwork-docker/internal/adapters/http"
	"github.com/melih/patchwork-docker/internal/adapters/importer"
	"github.com/melih/patchwork-docker/internal/cli"
	"github.com/melih/patchwork-docker/internal/core/preparer"
	"github.com/sirupsen/logrus"
)

var config struct {
	Listen  string `default:":3000" env:"PATCHWORK_LISTEN" help:"Address to listen on."`
	WorkDir string `name:"work-dir" env:"PATCHWORK_WORK_DIR" help:"Parent directory for temporary build contexts."`
}

func main() {
	kong.Parse(&config, kong.Name("patchwork-api"), kong.Description("Patchwork HTTP API."))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Initialize Adapters (Infrastructure)
	dockerAdapter, err := docker.NewAdapter()
	if err != nil {
		logrus.Fatalf("Failed to initialize Docker adapter: %v", err)
	}
	defer dockerAdapter.Close()

	importers := importer.NewDefaultFactory(config.WorkDir)

	// 2. Wire the core service to the adapters
	service := preparer.New(importers, dockerAdapter, preparer.WithTempRoot(config.WorkDir))

	// 3. Setup Framework (Fiber) with the API routes
	app := http.NewApp(service)

	// 4. Start Server
	if err := cli.Serve(ctx, app, config.Listen); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
