package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken      string         `yaml:"discord_token"`
	DatabasePath      string         `yaml:"database_path"`
	LogLevel          string         `yaml:"log_level"`
	DefaultLogChannel string         `yaml:"default_log_channel"`
	DefaultLanguage   string         `yaml:"default_language"`
	RetentionDays     int            `yaml:"retention_days"`
	Health            HealthConfig   `yaml:"health"`
	Giveaway          GiveawayConfig `yaml:"giveaway"`
	Automod           AutomodConfig  `yaml:"automod"`
	Notifications     NotifyConfig   `yaml:"notifications"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type GiveawayConfig struct {
	SweepInterval     time.Duration `yaml:"sweep_interval"`
	LedgerCapacity    int           `yaml:"ledger_capacity"`
	InviteCacheTTL    time.Duration `yaml:"invite_cache_ttl"`
	MaxWinners        int           `yaml:"max_winners"`
	EditRatePerSecond float64       `yaml:"edit_rate_per_second"`
}

type AutomodConfig struct {
	Enabled              bool `yaml:"enabled"`
	MaxMentions          int  `yaml:"max_mentions"`
	FloodMessages        int  `yaml:"flood_messages"`
	FloodWindowSeconds   int  `yaml:"flood_window_seconds"`
	StrikeForgiveMinutes int  `yaml:"strike_forgive_minutes"`
}

type NotifyConfig struct {
	AuditToChannel bool        `yaml:"audit_to_channel"`
	EmbedColors    EmbedColors `yaml:"embed_colors"`
}

type EmbedColors struct {
	Action   int `yaml:"action"`
	Warning  int `yaml:"warning"`
	Error    int `yaml:"error"`
	Giveaway int `yaml:"giveaway"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:      "/data/assistant.db",
		LogLevel:          "info",
		RetentionDays:     14,
		DefaultLogChannel: "",
		DefaultLanguage:   "es",
		Health:            HealthConfig{Enabled: false, Addr: ":8080"},
		Giveaway: GiveawayConfig{
			SweepInterval:     5 * time.Second,
			LedgerCapacity:    100_000,
			InviteCacheTTL:    60 * time.Second,
			MaxWinners:        100,
			EditRatePerSecond: 4,
		},
		Automod: AutomodConfig{
			Enabled:              true,
			MaxMentions:          5,
			FloodMessages:        6,
			FloodWindowSeconds:   8,
			StrikeForgiveMinutes: 60,
		},
		Notifications: NotifyConfig{
			AuditToChannel: true,
			EmbedColors: EmbedColors{
				Action:   0xF59E0B,
				Warning:  0xEF4444,
				Error:    0xF97316,
				Giveaway: 0xFF5733,
			},
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	cfg.DefaultLanguage = NormalizeLanguage(cfg.DefaultLanguage)
	clamp(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.DefaultLogChannel = envString("DEFAULT_LOG_CHANNEL", cfg.DefaultLogChannel)
	cfg.DefaultLanguage = envString("DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.RetentionDays = envInt("RETENTION_DAYS", cfg.RetentionDays)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Giveaway.SweepInterval = envDuration("GIVEAWAY_SWEEP_INTERVAL", cfg.Giveaway.SweepInterval)
	cfg.Giveaway.LedgerCapacity = envInt("GIVEAWAY_LEDGER_CAPACITY", cfg.Giveaway.LedgerCapacity)
	cfg.Giveaway.InviteCacheTTL = envDuration("GIVEAWAY_INVITE_CACHE_TTL", cfg.Giveaway.InviteCacheTTL)
	cfg.Giveaway.MaxWinners = envInt("GIVEAWAY_MAX_WINNERS", cfg.Giveaway.MaxWinners)
	cfg.Giveaway.EditRatePerSecond = envFloat("GIVEAWAY_EDIT_RATE", cfg.Giveaway.EditRatePerSecond)
	cfg.Automod.Enabled = envBool("AUTOMOD_ENABLED", cfg.Automod.Enabled)
	cfg.Automod.MaxMentions = envInt("AUTOMOD_MAX_MENTIONS", cfg.Automod.MaxMentions)
	cfg.Automod.FloodMessages = envInt("AUTOMOD_FLOOD_MESSAGES", cfg.Automod.FloodMessages)
	cfg.Automod.FloodWindowSeconds = envInt("AUTOMOD_FLOOD_WINDOW_SECONDS", cfg.Automod.FloodWindowSeconds)
	cfg.Automod.StrikeForgiveMinutes = envInt("AUTOMOD_STRIKE_FORGIVE_MINUTES", cfg.Automod.StrikeForgiveMinutes)
	cfg.Notifications.AuditToChannel = envBool("AUDIT_TO_CHANNEL", cfg.Notifications.AuditToChannel)
	cfg.Notifications.EmbedColors.Action = envInt("EMBED_COLOR_ACTION", cfg.Notifications.EmbedColors.Action)
	cfg.Notifications.EmbedColors.Warning = envInt("EMBED_COLOR_WARNING", cfg.Notifications.EmbedColors.Warning)
	cfg.Notifications.EmbedColors.Error = envInt("EMBED_COLOR_ERROR", cfg.Notifications.EmbedColors.Error)
	cfg.Notifications.EmbedColors.Giveaway = envInt("EMBED_COLOR_GIVEAWAY", cfg.Notifications.EmbedColors.Giveaway)
}

func clamp(cfg *Config) {
	defaults := DefaultConfig()
	if cfg.Giveaway.SweepInterval <= 0 {
		cfg.Giveaway.SweepInterval = defaults.Giveaway.SweepInterval
	}
	if cfg.Giveaway.LedgerCapacity <= 0 {
		cfg.Giveaway.LedgerCapacity = defaults.Giveaway.LedgerCapacity
	}
	if cfg.Giveaway.InviteCacheTTL <= 0 {
		cfg.Giveaway.InviteCacheTTL = defaults.Giveaway.InviteCacheTTL
	}
	if cfg.Giveaway.MaxWinners <= 0 {
		cfg.Giveaway.MaxWinners = defaults.Giveaway.MaxWinners
	}
	if cfg.Giveaway.EditRatePerSecond <= 0 {
		cfg.Giveaway.EditRatePerSecond = defaults.Giveaway.EditRatePerSecond
	}
	if cfg.RetentionDays < 0 {
		cfg.RetentionDays = 0
	}
}

// NormalizeLanguage maps anything unsupported to Spanish.
func NormalizeLanguage(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "en":
		return "en"
	default:
		return "es"
	}
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(strings.ToLower(level)))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
