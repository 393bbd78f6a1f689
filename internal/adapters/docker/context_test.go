package docker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRelative(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		dockerfile string
		want       string
		wantErr    bool
	}{
		{name: "relative", dockerfile: "Dockerfile", want: "Dockerfile"},
		{name: "nested", dockerfile: filepath.Join("build", "Dockerfile.arm"), want: "build/Dockerfile.arm"},
		{name: "absolute inside", dockerfile: filepath.Join(dir, "sub", "Dockerfile"), want: "sub/Dockerfile"},
		{name: "absolute outside", dockerfile: filepath.Join(filepath.Dir(dir), "Dockerfile"), wantErr: true},
		{name: "escaping", dockerfile: "../Dockerfile", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := contextRelative(dir, tt.dockerfile)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExcludePatternsWithoutDockerignore(t *testing.T) {
	excludes, err := excludePatterns(t.TempDir(), "Dockerfile")
	require.NoError(t, err)
	assert.Nil(t, excludes)
}

func TestExcludePatternsKeepsBuildFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, dockerignoreFile), []byte("# comment\n*\n!src\n"), 0o644))

	excludes, err := excludePatterns(dir, "Dockerfile")
	require.NoError(t, err)
	assert.Equal(t, []string{"*", "!src", "!Dockerfile", "!.dockerignore"}, excludes)
}

func TestExcludePatternsLeavesUnrelatedRules(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, dockerignoreFile), []byte("node_modules\n*.log\n"), 0o644))

	excludes, err := excludePatterns(dir, "Dockerfile")
	require.NoError(t, err)
	assert.Equal(t, []string{"node_modules", "*.log"}, excludes)
}
