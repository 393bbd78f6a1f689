package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"
)

// Apply parses patchFile and applies all of its hunks to targetFile.
//
// The patched content is written to a temporary file next to the target and
// renamed over it only after every hunk applied. On any failure the target is
// left as it was.
func Apply(patchFile, targetFile string) error {
	set, err := ParseFile(patchFile)
	if err != nil {
		return err
	}

	info, err := os.Stat(targetFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: patch target %s", domain.ErrNotFound, targetFile)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: patch target %s is a directory", domain.ErrValidation, targetFile)
	}

	original, err := os.ReadFile(targetFile)
	if err != nil {
		return err
	}

	hunks := set.Hunks()
	patched, err := ApplyHunks(original, hunks)
	if err != nil {
		return fmt.Errorf("%s to %s: %w", patchFile, targetFile, err)
	}

	if err := replaceFile(targetFile, patched, info.Mode().Perm()); err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{"patch": patchFile, "target": targetFile})
	log.WithField("hunks", len(hunks)).Debug("patch applied")
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		log.Debug(renderDiff(targetFile, original, patched))
	}
	return nil
}

// ApplyHunks applies hunks in order to content and returns the result. Each
// hunk must match exactly at its recorded source offset adjusted by the net
// number of lines added by the hunks before it.
func ApplyHunks(content []byte, hunks []Hunk) ([]byte, error) {
	lines := splitLines(content)
	eol := lineEnding(lines)
	drift := 0

	for i, h := range hunks {
		start := h.SrcStart - 1
		if h.SrcLen == 0 {
			start = h.SrcStart
		}
		start += drift

		expected := h.before()
		if start < 0 || start+len(expected) > len(lines) {
			return nil, fmt.Errorf("%w: hunk #%d at line %d is outside of the file", domain.ErrPatchApply, i+1, h.SrcStart)
		}
		for j, want := range expected {
			if got := trimEOL(lines[start+j]); got != want.Text {
				return nil, fmt.Errorf("%w: hunk #%d: line %d is %q, expected %q",
					domain.ErrPatchApply, i+1, start+j+1, got, want.Text)
			}
		}

		replacement := make([]string, 0, h.DstLen)
		k := start
		for _, l := range h.Lines {
			switch l.Kind {
			case Context:
				replacement = append(replacement, lines[k])
				k++
			case Removed:
				k++
			case Added:
				if l.NoNewline {
					replacement = append(replacement, l.Text)
				} else {
					replacement = append(replacement, l.Text+eol)
				}
			}
		}

		tail := append([]string{}, lines[start+len(expected):]...)
		lines = append(append(lines[:start], replacement...), tail...)
		drift += len(replacement) - len(expected)
	}

	return []byte(strings.Join(lines, "")), nil
}

// Returns the terminator used by the first terminated line, defaulting to "\n".
func lineEnding(lines []string) string {
	for _, l := range lines {
		if strings.HasSuffix(l, "\r\n") {
			return "\r\n"
		}
		if strings.HasSuffix(l, "\n") {
			return "\n"
		}
	}
	return "\n"
}

// Writes data to a sibling temporary file and renames it over path.
func replaceFile(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+base+".patch-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func renderDiff(name string, before, after []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: name,
		ToFile:   name,
		Context:  1,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}
