package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFragment(t *testing.T) {
	locator, fragment := SplitFragment("https://example.com/repo.git#v1.2")
	assert.Equal(t, "https://example.com/repo.git", locator)
	assert.Equal(t, "v1.2", fragment)

	locator, fragment = SplitFragment("https://example.com/repo.git")
	assert.Equal(t, "https://example.com/repo.git", locator)
	assert.Empty(t, fragment)
}

func TestClassifyOrigin(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		origin string
		want   OriginKind
	}{
		{dir, OriginFilesystem},
		{"https://example.com/repo.git", OriginGit},
		{"https://example.com/repo.git#v1.2", OriginGit},
		{"git://example.com/repo", OriginGit},
		{"git@example.com:org/repo.git", OriginGit},
		{"https://example.com/repo", OriginUnknown},
		{"/does/not/exist", OriginUnknown},
		{"", OriginUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyOrigin(tt.origin))
		})
	}
}
