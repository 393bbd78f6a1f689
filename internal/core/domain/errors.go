package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrParse             = errors.New("unable to parse argument")
	ErrUnsupportedOrigin = errors.New("unsupported origin")
	ErrImport            = errors.New("import failed")
	ErrResolution        = errors.New("unable to resolve git reference")
	ErrNotFound          = errors.New("not found")
	ErrPatchFormat       = errors.New("could not parse contents of patch file")
	ErrPatchApply        = errors.New("patch does not apply")
	ErrBuildFailed       = errors.New("build failed")
)

// BuildError reports an image build that failed after the context was prepared.
// ContextDir is only set when the context was supplied by the caller and has
// therefore been left on disk.
type BuildError struct {
	ImageName  string
	ContextDir string
	Err        error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: image %s", ErrBuildFailed, e.ImageName)
	if e.ContextDir != "" {
		msg += fmt.Sprintf(" (build context retained at %s)", e.ContextDir)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BuildError) Unwrap() []error {
	return []error{ErrBuildFailed, e.Err}
}
