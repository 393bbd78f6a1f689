package ports

import (
	"context"

	"github.com/melih/patchwork-docker/internal/core/domain"
)

// ContextService is the operation surface offered to the CLI and HTTP
// adapters.
type ContextService interface {
	Prepare(ctx context.Context, req domain.PrepareRequest) (string, error)
	Build(ctx context.Context, req domain.BuildRequest) error
	InputFiles(req domain.PrepareRequest) (domain.InputFiles, error)
}
