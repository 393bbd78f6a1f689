package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/melih/patchwork-docker/internal/core/domain"
)

// Represents the 'patchwork prepare' command.
type PrepareCmd struct {
	Origin       string `arg:"" help:"Local directory, or git URL with an optional #branch, tag or commit."`
	ContextFlags `embed:""`
}

// Prints the absolute path of the prepared context. A temporary context is
// left in place for the caller.
func (c *PrepareCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	svc, done, err := g.service(false)
	if err != nil {
		return err
	}
	defer done()

	path, err := svc.Prepare(ctx, c.request(c.Origin))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, path)
	return err
}

// Represents the 'patchwork build' command.
type BuildCmd struct {
	ImageName    string `arg:"" name:"image-name" help:"Tag of the image to build, optionally name:version."`
	Origin       string `arg:"" help:"Local directory, or git URL with an optional #branch, tag or commit."`
	Dockerfile   string `short:"d" default:"Dockerfile" help:"Dockerfile location relative to the context."`
	ContextFlags `embed:""`
}

func (c *BuildCmd) Run(ctx context.Context, g *Globals) error {
	svc, done, err := g.service(true)
	if err != nil {
		return err
	}
	defer done()

	return svc.Build(ctx, domain.BuildRequest{
		PrepareRequest: c.request(c.Origin),
		ImageName:      c.ImageName,
		Dockerfile:     c.Dockerfile,
	})
}

// Represents the 'patchwork inputfiles' command.
type InputFilesCmd struct {
	Origin       string `arg:"" optional:"" help:"Origin the context would be imported from."`
	ContextFlags `embed:""`
}

func (c *InputFilesCmd) Run(g *Globals, out io.Writer) error {
	svc, done, err := g.service(false)
	if err != nil {
		return err
	}
	defer done()

	files, err := svc.InputFiles(c.request(c.Origin))
	if err != nil {
		return err
	}
	return json.NewEncoder(out).Encode(files)
}
