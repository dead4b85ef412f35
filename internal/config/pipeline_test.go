package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/assembly"
	"github.com/Veraticus/dealflow/internal/classification"
	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/engine"
)

func TestLoadPipelineConfigFrom_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadPipelineConfigFrom(v)
	require.NoError(t, err)

	def := engine.DefaultConfig()
	assert.Equal(t, def.Rules.Name, cfg.Rules.Name)
	assert.Equal(t, def.ReplyWindow, cfg.ReplyWindow)
	assert.Equal(t, def.ConfirmWindow, cfg.ConfirmWindow)
	assert.Equal(t, def.Policy, cfg.Policy)
	assert.Equal(t, def.Workers, cfg.Workers)
	assert.Empty(t, cfg.ExtraNames)
}

func TestLoadPipelineConfigFrom_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyRuleSet, classification.RuleSetStrict)
	v.Set(KeyQuickReplyWindow, "45s")
	v.Set(KeyWorkers, 3)
	v.Set(KeyReplyWindow, "2m")
	v.Set(KeyConfirmWindow, "90s")
	v.Set(KeyMarketOffset, 24000)
	v.Set(KeyVolumeMin, 1)
	v.Set(KeyVolumeMax, 50)
	v.Set(KeyVolumePolicy, "start")
	v.Set(KeyPricePolicy, "strict")
	v.Set(KeyExtraNames, []string{"Hùng", "Lan"})

	cfg, err := LoadPipelineConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, classification.RuleSetStrict, cfg.Rules.Name)
	assert.Equal(t, 45*time.Second, cfg.Rules.QuickReplyWindow)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2*time.Minute, cfg.ReplyWindow)
	assert.Equal(t, 90*time.Second, cfg.ConfirmWindow)
	assert.Equal(t, assembly.Policy{
		Volume:       assembly.VolumeStart,
		Price:        assembly.PriceStrict,
		MarketOffset: 24000,
		VolumeMin:    1,
		VolumeMax:    50,
	}, cfg.Policy)
	assert.Equal(t, []string{"Hùng", "Lan"}, cfg.ExtraNames)
}

func TestLoadPipelineConfigFrom_Invalid(t *testing.T) {
	tests := []struct {
		set  map[string]any
		name string
	}{
		{name: "unknown ruleset", set: map[string]any{KeyRuleSet: "fuzzy"}},
		{name: "zero reply window", set: map[string]any{KeyReplyWindow: "0s"}},
		{name: "negative confirm window", set: map[string]any{KeyConfirmWindow: "-1m"}},
		{name: "negative quick reply window", set: map[string]any{KeyQuickReplyWindow: "-5s"}},
		{name: "unknown volume policy", set: map[string]any{KeyVolumePolicy: "max"}},
		{name: "unknown price policy", set: map[string]any{KeyPricePolicy: "round"}},
		{name: "inverted volume range", set: map[string]any{KeyVolumeMin: 10, KeyVolumeMax: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := LoadPipelineConfigFrom(v)
			require.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestDatabasePathFrom(t *testing.T) {
	t.Setenv("DEALFLOW_TEST_DIR", "/data")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "env var", path: "$DEALFLOW_TEST_DIR/runs.db", want: "/data/runs.db"},
		{name: "memory", path: ":memory:", want: ":memory:"},
		{name: "plain", path: "/tmp/x/../dealflow.db", want: "/tmp/dealflow.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(KeyDatabasePath, tt.path)
			assert.Equal(t, tt.want, DatabasePathFrom(v))
		})
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	v := viper.New()
	SetDefaults(v)
	assert.Equal(t, filepath.Join(home, ".local/share/dealflow/dealflow.db"), DatabasePathFrom(v))
}
