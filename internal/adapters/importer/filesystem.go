package importer

import (
	"context"
	"fmt"
	"os"

	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/melih/patchwork-docker/internal/core/overlay"
	"github.com/sirupsen/logrus"
)

// FilesystemImporter copies a build directory from the local filesystem.
type FilesystemImporter struct {
	tempRoot string
}

func NewFilesystemImporter(tempRoot string) *FilesystemImporter {
	return &FilesystemImporter{tempRoot: tempRoot}
}

// Load copies the tree at origin into destination.
func (i *FilesystemImporter) Load(ctx context.Context, origin, destination string) (string, error) {
	info, err := os.Stat(origin)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrImport, origin, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrImport, origin)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dest, owned, err := destinationDir(i.tempRoot, destination)
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{"origin": origin, "context": dest}).Debug("copying local build directory")
	if err := overlay.Copy(origin, dest); err != nil {
		if owned {
			os.RemoveAll(dest)
		}
		return "", fmt.Errorf("%w: copying %s: %v", domain.ErrImport, origin, err)
	}
	return dest, nil
}

// Returns destination, or a fresh temporary directory when it is empty. The
// second result reports whether the directory was allocated here.
func destinationDir(tempRoot, destination string) (string, bool, error) {
	if destination != "" {
		return destination, false, nil
	}
	dir, err := os.MkdirTemp(tempRoot, "patchwork-import-*")
	if err != nil {
		return "", false, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return dir, true, nil
}
