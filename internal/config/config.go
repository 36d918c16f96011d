package config

import (
	"fmt"
	"os"
	"strings"

	"maturity-dashboard/internal/alerts"
	"maturity-dashboard/pkg/config"
)

type Config struct {
	DB      config.DBConfig        `yaml:"db"`
	MQ      config.MQConfig        `yaml:"mq"`
	Redis   config.RedisConfig     `yaml:"redis"`
	JWT     config.JWTConfig       `yaml:"jwt"`
	Server  config.ServerConfig    `yaml:"server"`
	Alerts  config.AlertThresholds `yaml:"alerts"`
	Refresh config.RefreshConfig   `yaml:"refresh"`
	Runner  config.RunnerConfig    `yaml:"runner"`
	I18n    config.I18nConfig      `yaml:"i18n"`
}

// Load 使用统一配置中心加载配置，环境由 CONFIG_ENV 决定
func Load() (*Config, error) {
	return LoadFrom(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
}

func LoadFrom(env, dir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cfg Config
	if err := config.Decode(cfgMap, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	if schedule := os.Getenv("RUNNER_SCHEDULE"); schedule != "" {
		cfg.Runner.Schedule = schedule
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Runner.Schedule == "" {
		cfg.Runner.Schedule = "@every 5m"
	}
	if cfg.Runner.HTTPPort == "" {
		cfg.Runner.HTTPPort = ":8084"
	}
	if cfg.I18n.DefaultLocale == "" {
		cfg.I18n.DefaultLocale = "en"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AlertConfig returns the default alert windows with the configured overrides applied.
func (c *Config) AlertConfig() alerts.Config {
	return alerts.DefaultConfig().With(alerts.Overrides(c.Alerts))
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if err := c.AlertConfig().Validate(); err != nil {
		return fmt.Errorf("invalid alerts config: %w", err)
	}
	return nil
}
