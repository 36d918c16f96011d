package config

import (
	"os"
	"strconv"
	"time"
)

// DBConfig 数据库配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	// 慢查询阈值（毫秒），0 表示使用默认值 100ms
	SlowQueryMS int `yaml:"slow_query_ms"`
}

// MQConfig 消息队列配置
type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret string `yaml:"secret"`
	TTL    string `yaml:"ttl"` // e.g. "24h"
}

// TokenTTL parses TTL, falling back to 24h.
func (c JWTConfig) TokenTTL() time.Duration {
	if d, err := time.ParseDuration(c.TTL); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// AlertThresholds 告警阈值，字段为空时使用默认值
type AlertThresholds struct {
	DueSoonDays           *int `yaml:"due_soon_days"`
	OverdueMaxDays        *int `yaml:"overdue_max_days"`
	HighPriorityThreshold *int `yaml:"high_priority_threshold"`
	HighPriorityMaxDays   *int `yaml:"high_priority_max_days"`
}

// RefreshConfig 刷新节流窗口
type RefreshConfig struct {
	Manual string `yaml:"manual"` // 手动刷新，默认 30s
	Event  string `yaml:"event"`  // 事件驱动的 digest，默认 5s
	Scan   string `yaml:"scan"`   // 定时扫描，默认 500ms
}

// ManualWindow returns the manual refresh window.
func (c RefreshConfig) ManualWindow() time.Duration { return parseOr(c.Manual, 30*time.Second) }

// EventWindow returns the event-driven digest window.
func (c RefreshConfig) EventWindow() time.Duration { return parseOr(c.Event, 5*time.Second) }

// ScanWindow returns the scheduled scan window.
func (c RefreshConfig) ScanWindow() time.Duration { return parseOr(c.Scan, 500*time.Millisecond) }

// RunnerConfig 后台 digest 任务配置
type RunnerConfig struct {
	Schedule string `yaml:"schedule"` // cron 表达式，默认 "@every 5m"
	HTTPPort string `yaml:"http_port"`
}

// I18nConfig 国际化配置
type I18nConfig struct {
	DefaultLocale string `yaml:"default_locale"`
}

func parseOr(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.DB = n
		}
	}
}

// OverrideJWTFromEnv 从环境变量覆盖JWT配置
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}
