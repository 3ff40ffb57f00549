// Package config loads engine configuration from an optional concilia.yaml
// plus CONCILIA_-prefixed environment overrides. The scoring thresholds are
// empirically chosen product constants; they live here so deployments can
// tune them without a rebuild.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"concilia/internal/core"
)

type Config struct {
	DatabaseURL string
	OpenAIKey   string

	Suggestion core.SuggestionConfig
	Tolerance  core.ToleranceConfig
	Summary    core.SummaryConfig
}

// Load reads concilia.yaml from the working directory if present, then
// applies environment overrides. Missing config file is fine; defaults
// match the documented engine behavior.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("concilia")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("CONCILIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the unprefixed names are what the managed backend hands out
	_ = v.BindEnv("database_url", "CONCILIA_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("openai_api_key", "CONCILIA_OPENAI_API_KEY", "OPENAI_API_KEY")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL: v.GetString("database_url"),
		OpenAIKey:   v.GetString("openai_api_key"),
		Suggestion: core.SuggestionConfig{
			HistoryDays:   v.GetInt("suggestion.history_days"),
			HistoryLimit:  v.GetInt("suggestion.history_limit"),
			NoiseFloor:    v.GetInt("suggestion.noise_floor"),
			AcceptMinAvg:  v.GetInt("suggestion.accept_min_avg"),
			ExampleMin:    v.GetInt("suggestion.example_min"),
			MaxExamples:   v.GetInt("suggestion.max_examples"),
			HitMultiplier: v.GetInt("suggestion.hit_multiplier"),
		},
		Tolerance: core.ToleranceConfig{
			Absolute: decimal.NewFromFloat(v.GetFloat64("tolerance.absolute")),
			Percent:  decimal.NewFromFloat(v.GetFloat64("tolerance.percent")),
		},
		Summary: core.SummaryConfig{
			CriticalAmount: decimal.NewFromFloat(v.GetFloat64("summary.critical_amount")),
			StaleAfterDays: v.GetInt("summary.stale_after_days"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	sug := core.DefaultSuggestionConfig()
	tol := core.DefaultTolerance()
	sum := core.DefaultSummaryConfig()

	v.SetDefault("database_url", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("suggestion.history_days", sug.HistoryDays)
	v.SetDefault("suggestion.history_limit", sug.HistoryLimit)
	v.SetDefault("suggestion.noise_floor", sug.NoiseFloor)
	v.SetDefault("suggestion.accept_min_avg", sug.AcceptMinAvg)
	v.SetDefault("suggestion.example_min", sug.ExampleMin)
	v.SetDefault("suggestion.max_examples", sug.MaxExamples)
	v.SetDefault("suggestion.hit_multiplier", sug.HitMultiplier)
	v.SetDefault("tolerance.absolute", tol.Absolute.InexactFloat64())
	v.SetDefault("tolerance.percent", tol.Percent.InexactFloat64())
	v.SetDefault("summary.critical_amount", sum.CriticalAmount.InexactFloat64())
	v.SetDefault("summary.stale_after_days", sum.StaleAfterDays)
}
