package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedThreadsUsesExplicitValue(t *testing.T) {
	cfg := TraversalConfig{Threads: 7}
	assert.Equal(t, 7, cfg.ResolvedThreads())
}

func TestResolvedThreadsFallsBackToNumCPU(t *testing.T) {
	cfg := TraversalConfig{Threads: 0}
	assert.Greater(t, cfg.ResolvedThreads(), 0)
}

func TestValidateRejectsDirsAndFilesOnlyTogether(t *testing.T) {
	err := Validate(TraversalConfig{DirsOnly: true, FilesOnly: true})
	require.Error(t, err)
}

func TestValidateRejectsNegativeMaxDepth(t *testing.T) {
	neg := -1
	err := Validate(TraversalConfig{MaxDepth: &neg})
	require.Error(t, err)
}

func TestValidateAcceptsSaneConfig(t *testing.T) {
	depth := 5
	err := Validate(TraversalConfig{Threads: 4, MaxDepth: &depth})
	require.NoError(t, err)
}

func TestValidateRejectsFollowSymlinks(t *testing.T) {
	err := Validate(TraversalConfig{FollowSymlinks: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedOption))
}

func TestValidateRejectsOneFileSystem(t *testing.T) {
	err := Validate(TraversalConfig{OneFileSystem: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedOption))
}

func TestValidateRejectsApparentSize(t *testing.T) {
	err := Validate(TraversalConfig{ApparentSize: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedOption))
}

func TestValidateRejectsCountHardLinksWithoutOptIn(t *testing.T) {
	err := Validate(TraversalConfig{CountHardLinks: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedOption))
}

func TestValidateAllowsCountHardLinksWithOptIn(t *testing.T) {
	err := Validate(TraversalConfig{CountHardLinks: true, AllowDedupCache: true})
	require.NoError(t, err)
}
