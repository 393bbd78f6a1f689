package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/sirupsen/logrus"
)

// Adapter implements ports.ImageBuilder using the Docker SDK.
type Adapter struct {
	cli *client.Client
}

// NewAdapter creates a new Docker adapter configured from the standard Docker
// environment variables.
func NewAdapter() (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// BuildImage tars contextDir, honouring its .dockerignore, and builds
// imageName from the Dockerfile at dockerfile. Build output is logged at debug
// level; an error reported anywhere in the build stream fails the build.
func (a *Adapter) BuildImage(ctx context.Context, imageName, contextDir, dockerfile string) error {
	dockerfile, err := contextRelative(contextDir, dockerfile)
	if err != nil {
		return err
	}
	excludes, err := excludePatterns(contextDir, dockerfile)
	if err != nil {
		return err
	}

	// 1. Create Build Context (Tar)
	tar, err := archive.TarWithOptions(contextDir, &archive.TarOptions{ExcludePatterns: excludes})
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	// 2. Build Docker Image
	log := logrus.WithFields(logrus.Fields{"image": imageName, "dockerfile": dockerfile})
	log.Debug("sending build context to docker")
	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:       []string{imageName},
		Dockerfile: dockerfile,
		Remove:     true, // Remove intermediate containers
	})
	if err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// 3. Wait for the build to complete; the daemon reports failures in-stream.
	out := logrus.StandardLogger().WriterLevel(logrus.DebugLevel)
	defer out.Close()
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, out, 0, false, nil); err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	return nil
}
