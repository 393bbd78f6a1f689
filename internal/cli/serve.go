package cli

import (
	"context"

	"github.com/melih/patchwork-docker/internal/adapters/http"
	"github.com/sirupsen/logrus"
)

// Represents the 'patchwork serve' command.
type ServeCmd struct {
	Listen string `default:":3000" env:"PATCHWORK_LISTEN" help:"Address to listen on." placeholder:"ADDR"`
}

// Serves the HTTP API until the context is cancelled.
func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	svc, done, err := g.service(true)
	if err != nil {
		return err
	}
	defer done()

	return Serve(ctx, http.NewApp(svc), c.Listen)
}

// Listener is the part of *fiber.App that Serve drives.
type Listener interface {
	Listen(addr string) error
	Shutdown() error
}

// Serve runs app on addr and shuts it down when ctx is done.
func Serve(ctx context.Context, app Listener, addr string) error {
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			logrus.Info("shutting down")
			if err := app.Shutdown(); err != nil {
				logrus.WithError(err).Warn("shutdown failed")
			}
		case <-stopped:
		}
	}()

	logrus.WithField("addr", addr).Info("server starting")
	return app.Listen(addr)
}
