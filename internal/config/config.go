package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fabricbot/fabricbot/internal/identity"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FABRICBOT_DISCORD_TOKEN.
const EnvPrefix = "FABRICBOT"

// Config holds runtime configuration. Secrets (the bot token) come from the
// environment or a .env file; never commit them to fabricbot.yaml.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Database DatabaseConfig `mapstructure:"database"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Hooks    HooksConfig    `mapstructure:"hooks"`
	// Roles maps a category key (see identity.Category.Key) to a role snowflake.
	Roles map[string]string `mapstructure:"roles"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DiscordConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CleanupConfig controls how bot replies and the commands that caused them are removed.
type CleanupConfig struct {
	Delay time.Duration `mapstructure:"delay"`
	Retry bool          `mapstructure:"retry"`
}

type HooksConfig struct {
	// Channels get the bot's webhook provisioned at startup.
	Channels []string `mapstructure:"channels"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("log.level", "INFO")
	v.SetDefault("discord.token", "")
	v.SetDefault("database.path", filepath.Join(".fabricbot", "fabricbot.db"))
	v.SetDefault("cleanup.delay", "30s")
	v.SetDefault("cleanup.retry", true)
	v.SetDefault("hooks.channels", []string{})
	for _, c := range identity.Categories {
		v.SetDefault("roles."+c.Key(), "")
	}
}

// Load reads configuration. Priority, lowest first: defaults, the config file,
// .env, the process environment. An empty path searches for fabricbot.yaml in
// the working directory and .fabricbot/; a missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fabricbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(".fabricbot")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// Lists from the environment arrive as one comma separated string.
	if raw := os.Getenv(EnvPrefix + "_HOOKS_CHANNELS"); raw != "" {
		cfg.Hooks.Channels = ParseCommaSeparated(raw)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the bot cannot run with.
func (c *Config) Validate() error {
	if c.Cleanup.Delay < 0 {
		return fmt.Errorf("cleanup.delay must not be negative, got %s", c.Cleanup.Delay)
	}
	for key := range c.Roles {
		if _, ok := identity.ParseCategory(key); !ok {
			return fmt.Errorf("roles.%s: unknown role category", key)
		}
	}
	return nil
}

// RoleTable converts the configured role IDs into a lookup table.
func (c *Config) RoleTable() identity.RoleTable {
	table := make(identity.RoleTable)
	for key, id := range c.Roles {
		if cat, ok := identity.ParseCategory(key); ok && id != "" {
			table[cat] = id
		}
	}
	return table
}

// ParseCommaSeparated splits a comma separated list, dropping blanks.
func ParseCommaSeparated(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
