package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/melih/patchwork-docker/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(1)
	}
}
