package domain

import (
	"net/url"
	"os"
	"strings"
)

// OriginKind identifies which importer can load an origin.
type OriginKind int

const (
	OriginUnknown OriginKind = iota
	OriginFilesystem
	OriginGit
)

func (k OriginKind) String() string {
	switch k {
	case OriginFilesystem:
		return "filesystem"
	case OriginGit:
		return "git"
	default:
		return "unknown"
	}
}

// SplitFragment separates an origin into its bare locator and the optional
// "#ref" suffix.
func SplitFragment(origin string) (locator, fragment string) {
	locator, fragment, _ = strings.Cut(origin, "#")
	return locator, fragment
}

// ClassifyOrigin decides how an origin should be imported. An existing local
// path always wins; otherwise the origin must be a git URL, either with the
// git scheme or with a path ending in ".git".
func ClassifyOrigin(origin string) OriginKind {
	if origin == "" {
		return OriginUnknown
	}
	if _, err := os.Stat(origin); err == nil {
		return OriginFilesystem
	}

	locator, _ := SplitFragment(origin)
	if u, err := url.Parse(locator); err == nil {
		if u.Scheme == "git" || strings.HasSuffix(u.Path, ".git") {
			return OriginGit
		}
		return OriginUnknown
	}
	// scp-like syntax, e.g. git@example.com:org/repo.git
	if strings.HasSuffix(locator, ".git") {
		return OriginGit
	}
	return OriginUnknown
}
