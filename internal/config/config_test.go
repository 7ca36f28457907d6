package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, CenterOnOverflow, cfg.Scroll.CenteringMode)
	assert.True(t, cfg.AnimationEnabled())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().InnerGap, cfg.InnerGap)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"inner_gap: 4\nouter_gap: 0\nanimation:\n  duration_ms: 0\n"), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.InnerGap)
	assert.Equal(t, 0, cfg.OuterGap)
	assert.False(t, cfg.AnimationEnabled())
	// Untouched keys keep defaults.
	assert.Equal(t, Default().MinWindowSize, cfg.MinWindowSize)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_key: 1\n"), 0o644))
	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestValidateClampsGaps(t *testing.T) {
	cfg := Default()
	cfg.InnerGap = -5
	cfg.OuterGap = 100000
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.InnerGap)
	assert.Equal(t, 480, cfg.OuterGap)
}

func TestValidateForcesMouseHideOff(t *testing.T) {
	cfg := Default()
	cfg.MouseHidesOnFocus = true
	cfg.MouseFollowsFocus = false
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.MouseHidesOnFocus)

	cfg.MouseFollowsFocus = true
	cfg.MouseHidesOnFocus = true
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.MouseHidesOnFocus)
}

func TestValidateRejectsBadCenteringMode(t *testing.T) {
	cfg := Default()
	cfg.Scroll.CenteringMode = "sideways"
	assert.Error(t, cfg.Validate())
}

func TestClampGapAgainstScreen(t *testing.T) {
	assert.Equal(t, 0, ClampGap(-1, 1000))
	assert.Equal(t, 10, ClampGap(10, 1000))
	assert.Equal(t, 250, ClampGap(400, 1000))
}
