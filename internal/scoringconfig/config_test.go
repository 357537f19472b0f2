package scoringconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
)

func TestLoad(t *testing.T) {
	// 저장소 기본 설정 파일
	path := "../../config/scoring/default.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.ID != "default" {
		t.Errorf("expected meta.id=default, got %s", cfg.Meta.ID)
	}
	if !strings.HasPrefix(cfg.ID(), "default-") || len(cfg.ID()) != len("default-")+idHashLen {
		t.Errorf("unexpected config id %q", cfg.ID())
	}

	// 해시 생성
	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	t.Logf("config id: %s", cfg.ID())
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("meta:\n  id: minimal\n"), "inline")
	require.NoError(t, err)

	def := Defaults()
	assert.Equal(t, def.Weights, cfg.Weights)
	assert.Equal(t, NormalizeMinMax, cfg.Normalization)
	assert.Equal(t, 60, cfg.RollingWindowDays)
	assert.Equal(t, 14, cfg.FullSeasonTriggerDays)
	assert.Equal(t, 5, cfg.MinComparableGroupSize)
	assert.InDelta(t, 1.5, cfg.SourceWeights.Media, 1e-12)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("meta:\n  id: typo\nhalf_life_dayz: 3\n"), "inline")
	require.Error(t, err)

	var cfgErr *contracts.InvalidWeightConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestParse_IDChangesWithContent(t *testing.T) {
	a, err := Parse([]byte("meta:\n  id: same\n"), "a")
	require.NoError(t, err)
	b, err := Parse([]byte("meta:\n  id: same\nhalf_life_days: 10\n"), "b")
	require.NoError(t, err)
	c, err := Parse([]byte("meta:\n  id: same\n"), "c")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), c.ID())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "missing meta id",
			mutate: func(c *Config) { c.Meta.ID = "" },
			field:  "meta.id",
		},
		{
			name:   "meta id with separator",
			mutate: func(c *Config) { c.Meta.ID = "a:b" },
			field:  "meta.id",
		},
		{
			name:   "weights sum to 0.9",
			mutate: func(c *Config) { c.Weights = Weights{Performance: 0.4, AdvancedMetrics: 0.2, Grade: 0.2, Hype: 0.1} },
			field:  "weights",
		},
		{
			name:   "negative weight",
			mutate: func(c *Config) { c.Weights = Weights{Performance: 1.1, AdvancedMetrics: -0.1} },
			field:  "weights.performance",
		},
		{
			name:   "unknown normalization",
			mutate: func(c *Config) { c.Normalization = "rank" },
			field:  "normalization",
		},
		{
			name:   "zero half life",
			mutate: func(c *Config) { c.HalfLifeDays = 0 },
			field:  "half_life_days",
		},
		{
			name:   "trend windows exceed lookback",
			mutate: func(c *Config) { c.TrendWindowDays = 20 },
			field:  "trend_window_days",
		},
		{
			name:   "negative source weight",
			mutate: func(c *Config) { c.SourceWeights.Search = -1 },
			field:  "source_weights.search",
		},
		{
			name:   "comparable group of one",
			mutate: func(c *Config) { c.MinComparableGroupSize = 1 },
			field:  "min_comparable_group_size",
		},
		{
			name:   "zero rolling window",
			mutate: func(c *Config) { c.RollingWindowDays = 0 },
			field:  "rolling_window_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Meta.ID = "test"
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var vErr ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestParse_WeightSumRejectedBeforeUse(t *testing.T) {
	yaml := `
meta:
  id: bad
weights:
  performance: 0.4
  advanced_metrics: 0.2
  grade: 0.2
  hype: 0.1
`
	cfg, err := Parse([]byte(yaml), "bad.yaml")
	assert.Nil(t, cfg)

	var cfgErr *contracts.InvalidWeightConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "bad.yaml", cfgErr.Source)

	var vErr ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "weights", vErr.Field)
}

func TestWarn(t *testing.T) {
	cfg := Defaults()
	cfg.Meta.ID = "warn"
	cfg.Weights = Weights{Performance: 0, AdvancedMetrics: 0.3, Grade: 0.3, Hype: 0.4}

	codes := make(map[string]bool)
	for _, w := range Warn(cfg) {
		codes[w.Code] = true
	}
	assert.True(t, codes["HIGH_HYPE_WEIGHT"])
	assert.True(t, codes["NO_PERFORMANCE_WEIGHT"])
	assert.False(t, codes["SMALL_COMPARABLE_GROUP"])
}

func TestWeights_For(t *testing.T) {
	w := Weights{Performance: 0.4, AdvancedMetrics: 0.3, Grade: 0.2, Hype: 0.1}

	assert.Equal(t, 0.4, w.For(contracts.ComponentPerformance))
	assert.Equal(t, 0.3, w.For(contracts.ComponentAdvanced))
	assert.Equal(t, 0.2, w.For(contracts.ComponentGrade))
	assert.Equal(t, 0.1, w.For(contracts.ComponentHype))
	assert.Equal(t, 0.0, w.For("unknown"))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	cfg := Defaults()
	cfg.Meta.ID = "reg"
	require.NoError(t, reg.Register(cfg))
	require.NotEmpty(t, cfg.ID())

	got, err := reg.Get(cfg.ID())
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	byMeta, err := reg.Resolve("reg")
	require.NoError(t, err)
	assert.Same(t, cfg, byMeta)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, contracts.ErrUnknownConfig)

	bad := Defaults()
	bad.Meta.ID = "bad"
	bad.Weights.Hype = 0.5
	err = reg.Register(bad)
	var cfgErr *contracts.InvalidWeightConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 1, reg.Len())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("meta:\n  id: alpha\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("meta:\n  id: beta\nnormalization: zscore\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	reg, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	beta, err := reg.Resolve("beta")
	require.NoError(t, err)
	assert.Equal(t, NormalizeZScore, beta.Normalization)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("meta:\n  id: gamma\nweights:\n  hype: 0.9\n"), 0o644))
	_, err = LoadDir(dir)
	assert.Error(t, err)
}
