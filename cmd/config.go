package main

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PANEL"

type Config struct {
	Port string `mapstructure:"port"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	SwitchBot struct {
		Token  string `mapstructure:"token"`
		Secret string `mapstructure:"secret"`
	} `mapstructure:"switchbot"`

	Countdown struct {
		Tick time.Duration `mapstructure:"tick"`
	} `mapstructure:"countdown"`

	Orchestrator struct {
		SettleDelay     time.Duration `mapstructure:"settle_delay"`
		DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
		DefaultAction   string        `mapstructure:"default_action"`
	} `mapstructure:"orchestrator"`

	Power struct {
		DryRun bool `mapstructure:"dry_run"`
	} `mapstructure:"power"`

	Catalog struct {
		RefreshSchedule string        `mapstructure:"refresh_schedule"`
		RefreshTimeout  time.Duration `mapstructure:"refresh_timeout"`
	} `mapstructure:"catalog"`

	MQTT struct {
		Enabled     bool   `mapstructure:"enabled"`
		Address     string `mapstructure:"address"`
		TopicPrefix string `mapstructure:"topic_prefix"`
	} `mapstructure:"mqtt"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "panel.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("countdown.tick", time.Second)
	v.SetDefault("orchestrator.settle_delay", 800*time.Millisecond)
	v.SetDefault("orchestrator.dispatch_timeout", 15*time.Second)
	v.SetDefault("orchestrator.default_action", "shutdown")
	v.SetDefault("power.dry_run", false)
	v.SetDefault("catalog.refresh_schedule", "@every 30m")
	v.SetDefault("catalog.refresh_timeout", 20*time.Second)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.address", ":1883")
	v.SetDefault("mqtt.topic_prefix", "switchbot_panel")
}

// loadConfig reads config.yml from the given paths (optional), then applies
// PANEL_* environment overrides. SwitchBot credentials also come from the
// plain SWITCHBOT_TOKEN and SWITCHBOT_SECRET / SECRET variables.
func loadConfig(v *viper.Viper, paths ...string) (Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("switchbot.token", envPrefix+"_SWITCHBOT_TOKEN", "SWITCHBOT_TOKEN"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("switchbot.secret", envPrefix+"_SWITCHBOT_SECRET", "SWITCHBOT_SECRET", "SECRET"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
