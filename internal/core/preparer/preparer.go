// Package preparer assembles image build contexts: it imports an origin,
// overlays additional files in order, applies patches in order, and hands the
// result to an image builder.
//
// A context directory allocated by the preparer is removed again on every
// exit path of Build, and on any failure of Prepare. A directory supplied by
// the caller is never removed, unless it did not exist and was created by a
// preparation that then failed.
package preparer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/melih/patchwork-docker/internal/core/overlay"
	"github.com/melih/patchwork-docker/internal/core/patch"
	"github.com/melih/patchwork-docker/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// Preparer implements ports.ContextService.
type Preparer struct {
	importers ports.ImporterFactory
	builder   ports.ImageBuilder
	tempRoot  string
}

// Option configures a Preparer.
type Option func(*Preparer)

// WithTempRoot sets the parent directory of auto-allocated contexts. The
// default is the OS temporary directory.
func WithTempRoot(dir string) Option {
	return func(p *Preparer) { p.tempRoot = dir }
}

// New creates a preparer. builder may be nil when only Prepare is used.
func New(importers ports.ImporterFactory, builder ports.ImageBuilder, opts ...Option) *Preparer {
	p := &Preparer{importers: importers, builder: builder}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare assembles the build context described by req and returns its
// absolute path. When req names no build directory, the returned directory is
// freshly allocated and left for the caller to remove. A build directory that
// does not exist is created, and removed again if the preparation fails.
func (p *Preparer) Prepare(ctx context.Context, req domain.PrepareRequest) (string, error) {
	root, _, err := p.prepare(ctx, req)
	return root, err
}

// Build prepares the context, builds req.ImageName from it and releases the
// context if it was auto-allocated, whatever the outcome.
func (p *Preparer) Build(ctx context.Context, req domain.BuildRequest) (err error) {
	if p.builder == nil {
		return fmt.Errorf("%w: no image builder configured", domain.ErrValidation)
	}
	if req.ImageName == "" {
		return fmt.Errorf("%w: image name is required", domain.ErrValidation)
	}
	dockerfile := req.Dockerfile
	if dockerfile == "" {
		dockerfile = domain.DefaultDockerfile
	}
	if filepath.IsAbs(dockerfile) {
		return fmt.Errorf("%w: Dockerfile location should be relative to the context: %s", domain.ErrValidation, dockerfile)
	}

	root, owned, err := p.prepare(ctx, req.PrepareRequest)
	if err != nil {
		return err
	}
	if owned {
		defer release(root)
	}

	log := logrus.WithFields(logrus.Fields{"image": req.ImageName, "context": root})
	log.Info("building image")
	if err := p.builder.BuildImage(ctx, req.ImageName, root, dockerfile); err != nil {
		buildErr := &domain.BuildError{ImageName: req.ImageName, Err: err}
		if !owned {
			buildErr.ContextDir = root
		}
		return buildErr
	}
	log.Info("image built")
	return nil
}

// InputFiles reports the local paths Prepare would read for req.
func (p *Preparer) InputFiles(req domain.PrepareRequest) (domain.InputFiles, error) {
	files := domain.InputFiles{
		AdditionalFiles: []string{},
		Patches:         []string{},
	}
	if req.Origin != "" && domain.ClassifyOrigin(req.Origin) == domain.OriginFilesystem {
		origin, err := filepath.Abs(req.Origin)
		if err != nil {
			return domain.InputFiles{}, err
		}
		files.Origin = origin
	}
	for _, fm := range req.AdditionalFiles {
		src, err := filepath.Abs(fm.Source)
		if err != nil {
			return domain.InputFiles{}, err
		}
		files.AdditionalFiles = append(files.AdditionalFiles, src)
	}
	for _, fm := range req.Patches {
		src, err := filepath.Abs(fm.Source)
		if err != nil {
			return domain.InputFiles{}, err
		}
		files.Patches = append(files.Patches, src)
	}
	return files, nil
}

// step is one overlay or patch operation with resolved paths.
type step struct {
	src  string
	dest string
}

// Runs the pipeline and reports whether the returned root was allocated here.
// Everything that can be checked without touching the filesystem is checked
// first.
func (p *Preparer) prepare(ctx context.Context, req domain.PrepareRequest) (root string, owned bool, err error) {
	overlays, err := resolveSteps(req.AdditionalFiles)
	if err != nil {
		return "", false, err
	}
	patches, err := resolveSteps(req.Patches)
	if err != nil {
		return "", false, err
	}

	importer, err := p.importers.Create(req.Origin)
	if err != nil {
		return "", false, err
	}

	root, owned, created, err := p.allocate(req.BuildDirectory)
	if err != nil {
		return "", false, err
	}
	defer func() {
		if err == nil {
			return
		}
		if owned {
			release(root)
			root = ""
		} else if created != "" {
			release(created)
		}
	}()

	if _, err = importer.Load(ctx, req.Origin, root); err != nil {
		return root, owned, err
	}
	logrus.WithFields(logrus.Fields{"origin": req.Origin, "context": root}).Info("imported build directory")

	for _, s := range overlays {
		if err = ctx.Err(); err != nil {
			return root, owned, err
		}
		if err = p.overlay(root, s); err != nil {
			return root, owned, err
		}
	}

	for _, s := range patches {
		if err = ctx.Err(); err != nil {
			return root, owned, err
		}
		if err = p.patch(root, s); err != nil {
			return root, owned, err
		}
	}

	return root, owned, nil
}

func (p *Preparer) overlay(root string, s step) error {
	if _, err := os.Stat(s.src); err != nil {
		return fmt.Errorf("%w: source path does not exist: %s", domain.ErrNotFound, s.src)
	}
	dest, err := contextPath(root, s.dest)
	if err != nil {
		return err
	}

	action := "Creating"
	if _, err := os.Lstat(dest); err == nil {
		action = "Overwriting"
	}
	logrus.WithFields(logrus.Fields{"src": s.src, "dest": dest}).Infof("%s %s", action, s.dest)

	return overlay.Copy(s.src, dest)
}

func (p *Preparer) patch(root string, s step) error {
	if _, err := os.Stat(s.src); err != nil {
		return fmt.Errorf("%w: patch file does not exist: %s", domain.ErrNotFound, s.src)
	}
	dest, err := contextPath(root, s.dest)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"patch": s.src, "dest": dest}).Infof("Patching %s", s.dest)
	return patch.Apply(s.src, dest)
}

// Returns the context root: the caller's directory after checking that it is
// empty, or a new temporary directory. When the caller's directory had to be
// created, created names the topmost directory made for it so a failed
// preparation can take it away again.
func (p *Preparer) allocate(buildDirectory string) (root string, owned bool, created string, err error) {
	if buildDirectory == "" {
		dir, err := os.MkdirTemp(p.tempRoot, "patchwork-context-*")
		if err != nil {
			return "", false, "", fmt.Errorf("failed to create temp dir: %w", err)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			os.RemoveAll(dir)
			return "", false, "", err
		}
		return abs, true, "", nil
	}

	dir, err := filepath.Abs(buildDirectory)
	if err != nil {
		return "", false, "", err
	}
	empty, err := isEmptyDir(dir)
	if os.IsNotExist(err) {
		created = missingAncestor(dir)
		if err := os.MkdirAll(dir, overlay.DirMode); err != nil {
			return "", false, "", err
		}
		return dir, false, created, nil
	}
	if err != nil {
		return "", false, "", fmt.Errorf("%w: build directory %s: %v", domain.ErrValidation, dir, err)
	}
	if !empty {
		return "", false, "", fmt.Errorf("%w: build directory must be empty: %s", domain.ErrValidation, dir)
	}
	return dir, false, "", nil
}

// Returns the topmost directory of the absolute path dir that does not exist.
func missingAncestor(dir string) string {
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		if _, err := os.Lstat(parent); err == nil {
			return dir
		}
		dir = parent
	}
}

func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}

// Checks every destination and makes every source absolute. Destinations
// default to the base name of their source.
func resolveSteps(m domain.Mapping) ([]step, error) {
	steps := make([]step, 0, len(m))
	for _, fm := range m {
		if fm.Source == "" {
			return nil, fmt.Errorf("%w: empty source path", domain.ErrValidation)
		}
		src, err := filepath.Abs(fm.Source)
		if err != nil {
			return nil, err
		}
		dest := fm.Destination
		if dest == "" {
			dest = filepath.Base(src)
		}
		if filepath.IsAbs(dest) {
			return nil, fmt.Errorf("%w: destinations should be relative: %s", domain.ErrValidation, dest)
		}
		if !filepath.IsLocal(dest) && filepath.Clean(dest) != "." {
			return nil, fmt.Errorf("%w: destination leaves the build context: %s", domain.ErrValidation, dest)
		}
		steps = append(steps, step{src: src, dest: dest})
	}
	return steps, nil
}

// Joins dest onto root and checks that no symlink already present in the
// context carries the path outside of it. Links are followed the way
// SecureJoin follows them, with root as "/"; a path that the OS resolves
// anywhere else escapes the context and is ErrValidation.
func contextPath(root, dest string) (string, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	scoped, err := securejoin.SecureJoin(realRoot, dest)
	if err != nil {
		return "", fmt.Errorf("%w: destination %s: %v", domain.ErrValidation, dest, err)
	}
	resolved, err := resolveExisting(filepath.Join(realRoot, dest))
	if err != nil {
		return "", err
	}
	if resolved != scoped {
		return "", fmt.Errorf("%w: destination %s resolves outside of the build context to %s",
			domain.ErrValidation, dest, resolved)
	}
	return filepath.Join(root, dest), nil
}

// Resolves the symlinks of the longest existing prefix of path and appends
// the rest unchanged.
func resolveExisting(path string) (string, error) {
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(path)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", err
		}
		rest = append([]string{filepath.Base(path)}, rest...)
		path = parent
	}
}

func release(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logrus.WithError(err).WithField("context", dir).Warn("failed to remove build context")
	}
}
