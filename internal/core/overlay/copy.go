// Package overlay merges files and directory trees onto a destination,
// overwriting entries that exist on both sides and keeping the rest.
package overlay

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/sirupsen/logrus"
)

// DirMode is used for directories created as parents of copied files.
const DirMode os.FileMode = 0o755

// Copy overlays src onto dest.
//
// A regular file is written to dest, or into dest under its own base name when
// dest is an existing directory. A directory is merged into dest, which is
// created if missing: files present in both trees take the version from src and
// files present only in dest are left alone.
//
// Copying is not atomic; on error dest may be partially merged.
func Copy(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: source %s: %v", domain.ErrNotFound, src, err)
	}

	if info.IsDir() {
		return copyTree(src, dest, info)
	}

	if destInfo, err := os.Stat(dest); err == nil && destInfo.IsDir() {
		dest = filepath.Join(dest, filepath.Base(src))
	}
	return copyEntry(src, dest, info)
}

// A dest that lies inside src is left out of the walk, so the copy never
// descends into its own output.
func copyTree(src, dest string, srcInfo fs.FileInfo) error {
	if err := ensureDir(dest, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	destInfo, err := os.Stat(dest)
	if err != nil {
		return err
	}
	if os.SameFile(srcInfo, destInfo) {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			if os.SameFile(info, destInfo) {
				logrus.WithField("dir", path).Debug("skipping destination inside source")
				return filepath.SkipDir
			}
			return ensureDir(target, info.Mode().Perm())
		}
		return copyEntry(path, target, info)
	})
}

// Creates path as a directory unless one is already there. Owner rwx is always
// kept so the rest of the tree can be written into it.
func ensureDir(path string, perm os.FileMode) error {
	existing, err := os.Lstat(path)
	if err == nil {
		if existing.IsDir() {
			return nil
		}
		return fmt.Errorf("cannot merge directory onto non-directory %s", path)
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(path, perm|0o700)
}

func copyEntry(src, dest string, info fs.FileInfo) error {
	if err := os.MkdirAll(filepath.Dir(dest), DirMode); err != nil {
		return err
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return copySymlink(src, dest)
	case info.Mode().IsRegular():
		return copyFile(src, dest, info.Mode().Perm())
	default:
		logrus.WithField("src", src).Debug("skipping special file")
		return nil
	}
}

func copyFile(src, dest string, perm os.FileMode) error {
	if err := clearTarget(dest); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"src": src, "dest": dest}).Trace("copy file")

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// An overwritten file keeps its old mode otherwise.
	return os.Chmod(dest, perm)
}

func copySymlink(src, dest string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := clearTarget(dest); err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink(link, dest)
}

// Removes a symlink at dest so the copy replaces the link rather than writing
// through it. Directories are never replaced by files.
func clearTarget(dest string) error {
	existing, err := os.Lstat(dest)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.IsDir() {
		return fmt.Errorf("cannot overwrite directory %s with a file", dest)
	}
	if existing.Mode()&fs.ModeSymlink != 0 {
		return os.Remove(dest)
	}
	return nil
}
