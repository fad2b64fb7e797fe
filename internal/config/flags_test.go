package config

import (
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTestCommand() *cobra.Command {
	return &cobra.Command{Use: "pdu"}
}

func TestResolveDefaultsToCurrentDirectory(t *testing.T) {
	cmd := newTestCommand()
	fv := BindFlags(cmd)

	cfg, err := Resolve(cmd, fv, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"."}, cfg.Paths)
}

func TestResolveParsesFormatAndOutput(t *testing.T) {
	cmd := newTestCommand()
	fv := BindFlags(cmd)
	require.NoError(t, cmd.Flags().Set("format", "mb"))
	require.NoError(t, cmd.Flags().Set("output", "json"))

	cfg, err := Resolve(cmd, fv, nil, []string{"/data"})
	require.NoError(t, err)
	require.True(t, cfg.Format.JSON)
}

func TestResolveRejectsUnknownFormat(t *testing.T) {
	cmd := newTestCommand()
	fv := BindFlags(cmd)
	require.NoError(t, cmd.Flags().Set("format", "bogus"))

	_, err := Resolve(cmd, fv, nil, nil)
	require.Error(t, err)
}

func TestResolveMaxDepthDisabledByDefault(t *testing.T) {
	cmd := newTestCommand()
	fv := BindFlags(cmd)

	cfg, err := Resolve(cmd, fv, nil, nil)
	require.NoError(t, err)
	require.Nil(t, cfg.MaxDepth)
}

func TestResolveMaxDepthSetWhenRequested(t *testing.T) {
	cmd := newTestCommand()
	fv := BindFlags(cmd)
	require.NoError(t, cmd.Flags().Set("max-depth", "3"))

	cfg, err := Resolve(cmd, fv, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.MaxDepth)
	require.Equal(t, 3, *cfg.MaxDepth)
}

func TestResolveRejectsReservedFollowSymlinks(t *testing.T) {
	cmd := newTestCommand()
	fv := BindFlags(cmd)
	require.NoError(t, cmd.Flags().Set("follow-symlinks", "true"))

	_, err := Resolve(cmd, fv, nil, nil)
	require.Error(t, err)
}

func TestLoadViperMissingFileIsNotAnError(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(orig)

	v, err := LoadViper()
	require.NoError(t, err)
	require.NotNil(t, v)
}
