package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/dealflow/internal/assembly"
	"github.com/Veraticus/dealflow/internal/classification"
	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/engine"
)

// Configuration keys.
const (
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
	KeyDatabasePath     = "database.path"
	KeyWorkers          = "pipeline.workers"
	KeyReplyWindow      = "pipeline.reply_window"
	KeyConfirmWindow    = "pipeline.confirm_window"
	KeyQuickReplyWindow = "pipeline.quick_reply_window"
	KeyMarketOffset     = "pipeline.market_offset"
	KeyVolumeMin        = "pipeline.volume_min"
	KeyVolumeMax        = "pipeline.volume_max"
	KeyVolumePolicy     = "pipeline.volume_policy"
	KeyPricePolicy      = "pipeline.price_policy"
	KeyRuleSet          = "classification.ruleset"
	KeyExtraNames       = "roster.extra_names"
)

// DefaultDatabasePath is where runs are stored unless database.path is set.
const DefaultDatabasePath = "~/.local/share/dealflow/dealflow.db"

// SetDefaults registers default values for every pipeline key on v.
func SetDefaults(v *viper.Viper) {
	def := engine.DefaultConfig()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyReplyWindow, def.ReplyWindow)
	v.SetDefault(KeyConfirmWindow, def.ConfirmWindow)
	v.SetDefault(KeyMarketOffset, def.Policy.MarketOffset)
	v.SetDefault(KeyVolumeMin, def.Policy.VolumeMin)
	v.SetDefault(KeyVolumeMax, def.Policy.VolumeMax)
	v.SetDefault(KeyVolumePolicy, string(def.Policy.Volume))
	v.SetDefault(KeyPricePolicy, string(def.Policy.Price))
	v.SetDefault(KeyRuleSet, def.Rules.Name)
}

// LoadPipelineConfig builds the pipeline configuration from the global viper instance.
func LoadPipelineConfig() (engine.Config, error) {
	return LoadPipelineConfigFrom(viper.GetViper())
}

// LoadPipelineConfigFrom builds and validates the pipeline configuration from v.
// Unset keys keep their engine defaults.
func LoadPipelineConfigFrom(v *viper.Viper) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	rules, err := classification.RuleSetByName(v.GetString(KeyRuleSet))
	if err != nil {
		return engine.Config{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if v.IsSet(KeyQuickReplyWindow) {
		rules.QuickReplyWindow = v.GetDuration(KeyQuickReplyWindow)
	}
	cfg.Rules = rules

	if v.IsSet(KeyWorkers) {
		if workers := v.GetInt(KeyWorkers); workers > 0 {
			cfg.Workers = workers
		}
	}
	if v.IsSet(KeyReplyWindow) {
		cfg.ReplyWindow = v.GetDuration(KeyReplyWindow)
	}
	if v.IsSet(KeyConfirmWindow) {
		cfg.ConfirmWindow = v.GetDuration(KeyConfirmWindow)
	}
	cfg.ExtraNames = v.GetStringSlice(KeyExtraNames)

	if v.IsSet(KeyMarketOffset) {
		cfg.Policy.MarketOffset = v.GetInt64(KeyMarketOffset)
	}
	if v.IsSet(KeyVolumeMin) {
		cfg.Policy.VolumeMin = v.GetFloat64(KeyVolumeMin)
	}
	if v.IsSet(KeyVolumeMax) {
		cfg.Policy.VolumeMax = v.GetFloat64(KeyVolumeMax)
	}
	if v.IsSet(KeyVolumePolicy) {
		cfg.Policy.Volume = assembly.VolumePolicy(v.GetString(KeyVolumePolicy))
	}
	if v.IsSet(KeyPricePolicy) {
		cfg.Policy.Price = assembly.PricePolicy(v.GetString(KeyPricePolicy))
	}

	if err := validate(cfg); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

func validate(cfg engine.Config) error {
	if cfg.ReplyWindow <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", common.ErrInvalidConfig, KeyReplyWindow, cfg.ReplyWindow)
	}
	if cfg.ConfirmWindow <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", common.ErrInvalidConfig, KeyConfirmWindow, cfg.ConfirmWindow)
	}
	if cfg.Rules.QuickReplyWindow < 0 {
		return fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, KeyQuickReplyWindow)
	}
	if cfg.Rules.QuickReplyWindow > time.Hour {
		return fmt.Errorf("%w: %s of %s is longer than a trading session allows", common.ErrInvalidConfig,
			KeyQuickReplyWindow, cfg.Rules.QuickReplyWindow)
	}
	if err := cfg.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return nil
}

// DatabasePath returns the expanded database location from the global viper instance.
func DatabasePath() string {
	return DatabasePathFrom(viper.GetViper())
}

// DatabasePathFrom returns the expanded database location configured on v.
func DatabasePathFrom(v *viper.Viper) string {
	path := v.GetString(KeyDatabasePath)
	if path == "" {
		path = DefaultDatabasePath
	}
	if path == ":memory:" {
		return path
	}
	return filepath.Clean(ExpandPath(path))
}
