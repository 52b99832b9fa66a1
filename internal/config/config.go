package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode              string        `mapstructure:"mode"`
	Port              int           `mapstructure:"port"`
	LogLevel          string        `mapstructure:"log_level"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	PingPeriod        time.Duration `mapstructure:"ping_period"`
	PongWait          time.Duration `mapstructure:"pong_wait"`
	WriteWait         time.Duration `mapstructure:"write_wait"`
	SendBuffer        int           `mapstructure:"send_buffer"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	KickSlowConsumers bool          `mapstructure:"kick_slow_consumers"`

	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	JoinRate JoinRateConfig `mapstructure:"join_rate"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig enables bearer-token checks on /api when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// JoinRateConfig caps join attempts per user. Limit 0 disables it.
type JoinRateConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

func (c *Config) AuthEnabled() bool { return c.Auth.JWTSecret != "" }

// Load reads config/config.<CONFIG_ENV>.yaml (or --config), then applies
// MEETOPIA_* environment variables and finally command-line flags.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to the YAML config file")
	fs.Int("port", 8080, "HTTP listen port")
	fs.String("mode", "release", "gin mode: debug or release")
	fs.String("log-level", "info", "log level")
	fs.String("db", "meetopia.db", "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	fileName := *configFile
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("kick_slow_consumers", false)
	v.SetDefault("database.path", "meetopia.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("join_rate.limit", 0)
	v.SetDefault("join_rate.interval", "1m")

	v.SetEnvPrefix("MEETOPIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"port":          "port",
		"mode":          "mode",
		"log_level":     "log-level",
		"database.path": "db",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == "release" && len(cfg.AllowedOrigins) == 0 {
		log.Warn().Str("module", "config").Msg("allowed_origins is empty, websocket accepts any origin")
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Bool("auth", cfg.AuthEnabled()).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.PingPeriod <= 0 || c.PongWait <= 0 || c.PingPeriod >= c.PongWait {
		errs = append(errs, fmt.Errorf("ping_period (%s) must be positive and shorter than pong_wait (%s)", c.PingPeriod, c.PongWait))
	}
	if c.WriteWait <= 0 {
		errs = append(errs, errors.New("write_wait must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.ReadLimit <= 0 {
		errs = append(errs, errors.New("read_limit must be positive"))
	}
	if c.Mode == "release" && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required in release mode (set MEETOPIA_AUTH_JWT_SECRET)"))
	}
	if c.JoinRate.Limit < 0 || (c.JoinRate.Limit > 0 && c.JoinRate.Interval <= 0) {
		errs = append(errs, errors.New("join_rate needs a non-negative limit and a positive interval"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
