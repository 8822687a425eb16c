package cpconv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRunConfig(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"mode": "meters",
		"shift_meters": 2.5,
		"shift_percent": 40,
		"random_amount": false,
		"average_gsd": 0.3,
		"size_rule": "width",
		"seed": 42
	}`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ModeMeters, cfg.GetMode())
	assert.Equal(t, 2.5, cfg.GetShiftMeters())
	assert.Equal(t, 40, cfg.GetShiftPercent())
	assert.False(t, cfg.GetRandomAmount())
	assert.Equal(t, SizeRuleWidth, cfg.GetSizeRule())
	require.NotNil(t, cfg.AverageGSD)
	assert.Equal(t, 0.3, *cfg.AverageGSD)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(42), *cfg.Seed)
	assert.Equal(t, 5, cfg.GetMaxShift())
}

func TestRunConfigDefaults(t *testing.T) {
	cfg := &RunConfig{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModePixels, cfg.GetMode())
	assert.Equal(t, 5, cfg.GetMaxShift())
	assert.Equal(t, 5.0, cfg.GetShiftMeters())
	assert.Equal(t, 100, cfg.GetShiftPercent())
	assert.True(t, cfg.GetRandomAmount())
	assert.Equal(t, SizeRuleMaxSide, cfg.GetSizeRule())
}

func TestLoadRunConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"wrong extension", "run.yaml", `{}`},
		{"invalid JSON", "run.json", `{"mode": `},
		{"unknown mode", "run.json", `{"mode": "feet"}`},
		{"negative max shift", "run.json", `{"max_shift": -1}`},
		{"negative meters", "run.json", `{"shift_meters": -0.5}`},
		{"percent too large", "run.json", `{"shift_percent": 101}`},
		{"zero GSD", "run.json", `{"average_gsd": 0}`},
		{"unknown size rule", "run.json", `{"size_rule": "area"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRunConfig(writeConfig(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
