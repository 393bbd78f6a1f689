package docker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
)

const dockerignoreFile = ".dockerignore"

// Returns dockerfile relative to contextDir in slash form. Absolute paths are
// accepted when they point inside the context.
func contextRelative(contextDir, dockerfile string) (string, error) {
	rel := dockerfile
	if filepath.IsAbs(dockerfile) {
		var err error
		rel, err = filepath.Rel(contextDir, dockerfile)
		if err != nil {
			return "", fmt.Errorf("%w: Dockerfile %s: %v", domain.ErrValidation, dockerfile, err)
		}
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: Dockerfile %s is outside of the build context %s", domain.ErrValidation, dockerfile, contextDir)
	}
	return filepath.ToSlash(rel), nil
}

// Reads the context's .dockerignore. As with the docker CLI, the Dockerfile
// and .dockerignore itself are always sent so the daemon can read them.
func excludePatterns(contextDir, dockerfile string) ([]string, error) {
	f, err := os.Open(filepath.Join(contextDir, dockerignoreFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	excludes, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dockerignoreFile, err)
	}
	if len(excludes) == 0 {
		return nil, nil
	}

	pm, err := patternmatcher.New(excludes)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", dockerignoreFile, err)
	}
	for _, keep := range []string{dockerfile, dockerignoreFile} {
		excluded, err := pm.MatchesOrParentMatches(keep)
		if err != nil {
			return nil, err
		}
		if excluded {
			excludes = append(excludes, "!"+keep)
		}
	}
	return excludes, nil
}
