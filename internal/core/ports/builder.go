package ports

import "context"

// ImageBuilder defines the single operation the pipeline needs from an image
// builder. Implementations may talk to Docker, Podman or a remote BuildKit.
type ImageBuilder interface {
	// BuildImage builds imageName (optionally "name:version") from the
	// Dockerfile at dockerfile inside contextDir. contextDir is absolute;
	// dockerfile is relative to it.
	BuildImage(ctx context.Context, imageName, contextDir, dockerfile string) error
}
