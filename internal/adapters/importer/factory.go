package importer

import (
	"fmt"

	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/melih/patchwork-docker/internal/core/ports"
)

// Factory implements ports.ImporterFactory.
type Factory struct {
	filesystem ports.Importer
	git        ports.Importer
}

// NewFactory creates a factory that hands out the given importers.
func NewFactory(filesystem, git ports.Importer) *Factory {
	return &Factory{filesystem: filesystem, git: git}
}

// NewDefaultFactory wires the filesystem importer and a git importer using the
// credentials found in the environment.
func NewDefaultFactory(tempRoot string) *Factory {
	return NewFactory(NewFilesystemImporter(tempRoot), NewGitImporter(tempRoot, DetectAuth()))
}

// Create returns the importer able to load origin.
func (f *Factory) Create(origin string) (ports.Importer, error) {
	switch domain.ClassifyOrigin(origin) {
	case domain.OriginFilesystem:
		return f.filesystem, nil
	case domain.OriginGit:
		return f.git, nil
	default:
		return nil, fmt.Errorf("%w: %q is neither an existing path nor a git URL", domain.ErrUnsupportedOrigin, origin)
	}
}
