package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-flowbus/pkg/types"
)

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		name   string
		preset string
		check  func(t *testing.T, cfg *Config)
	}{
		{
			name:   "development",
			preset: PresetDevelopment,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Bus.AllowImplicitTypes)
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.Equal(t, 30*time.Second, cfg.Metrics.SnapshotInterval.Duration())
			},
		},
		{
			name:   "production",
			preset: PresetProduction,
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Bus.AllowImplicitTypes)
				assert.Equal(t, 4096, cfg.Bus.MaxPending)
				assert.Equal(t, "json", cfg.Log.Format)
			},
		},
		{
			name:   "strict",
			preset: PresetStrict,
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Bus.AllowImplicitTypes)
				assert.Equal(t, types.StateStarted, cfg.Bus.ActiveState())
			},
		},
		{
			name:   "test",
			preset: PresetTest,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Bus.AllowImplicitTypes)
				assert.Zero(t, cfg.Bus.SlowHandlerThreshold)
				assert.False(t, cfg.Metrics.Enable)
			},
		},
		{
			name:   "empty",
			preset: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, NewConfig(), cfg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			require.NoError(t, ApplyPreset(cfg, tt.preset))
			require.NoError(t, cfg.Validate())
			tt.check(t, cfg)
		})
	}
}

func TestApplyPreset_Errors(t *testing.T) {
	assert.Error(t, ApplyPreset(nil, PresetTest))
	assert.Error(t, ApplyPreset(NewConfig(), "mobile"))
}

func TestCloneConfig(t *testing.T) {
	assert.Nil(t, CloneConfig(nil))

	cfg := NewConfig()
	cloned := CloneConfig(cfg)
	cloned.Bus.MaxPending = 7

	assert.Equal(t, 0, cfg.Bus.MaxPending)
	assert.Equal(t, 7, cloned.Bus.MaxPending)
}

func TestValidateAndFix(t *testing.T) {
	cfg := NewConfig()
	cfg.Bus.MaxPending = -1
	cfg.Bus.WarnInterval = Duration(-time.Second)
	cfg.Bus.DefaultActiveState = "destroyed"
	cfg.Log.Level = ""
	cfg.Metrics.Namespace = ""
	require.Error(t, cfg.Validate())

	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, fixed.Bus.MaxPending)
	assert.Equal(t, time.Second, fixed.Bus.WarnInterval.Duration())
	assert.Equal(t, types.StateInitialized, fixed.Bus.ActiveState())
	assert.Equal(t, "info", fixed.Log.Level)
	assert.Equal(t, "flowbus", fixed.Metrics.Namespace)

	fresh, err := ValidateAndFix(nil)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), fresh)
}

func TestValidateAndFix_Unfixable(t *testing.T) {
	cfg := NewConfig()
	cfg.Log.Format = "xml"

	_, err := ValidateAndFix(cfg)
	assert.Error(t, err)
}

func TestMustValidate(t *testing.T) {
	assert.NotPanics(t, func() { MustValidate(NewConfig()) })

	cfg := NewConfig()
	cfg.Bus.MaxPending = -1
	assert.Panics(t, func() { MustValidate(cfg) })
	assert.Error(t, ValidateAll(nil))
}
