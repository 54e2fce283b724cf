// Package config loads server settings from an optional TOML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"encoding/base32"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type SMTP struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	User string `toml:"user"`
	Pass string `toml:"pass"`
	To   string `toml:"to"`
}

// Configured reports whether contact mail can be sent.
func (s SMTP) Configured() bool {
	return s.User != "" && s.Pass != ""
}

// Admin credentials. PasswordHash (bcrypt) wins over Password; a base32
// TOTPSecret adds a one-time code to the login form.
type Admin struct {
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	PasswordHash string `toml:"password_hash"`
	TOTPSecret   string `toml:"totp_secret"`
}

type Terminal struct {
	SessionTTL    time.Duration `toml:"session_ttl"`
	RevealFor     time.Duration `toml:"reveal_for"`
	SweepInterval time.Duration `toml:"sweep_interval"`
	CommandRate   float64       `toml:"command_rate"`
	CommandBurst  int           `toml:"command_burst"`
	MaxSessions   int           `toml:"max_sessions"`
}

type Config struct {
	Port         string   `toml:"port"`
	GinMode      string   `toml:"gin_mode"`
	DBPath       string   `toml:"db_path"`
	ContentFile  string   `toml:"content_file"`
	WatchContent bool     `toml:"watch_content"`
	SMTP         SMTP     `toml:"smtp"`
	Admin        Admin    `toml:"admin"`
	Terminal     Terminal `toml:"terminal"`
}

// Default returns development defaults.
func Default() Config {
	return Config{
		Port:    "8080",
		GinMode: "debug",
		DBPath:  "termfolio.db",
		SMTP: SMTP{
			Host: "smtp.gmail.com",
			Port: "587",
		},
		Terminal: Terminal{
			SessionTTL:    30 * time.Minute,
			RevealFor:     30 * time.Second,
			SweepInterval: time.Minute,
			CommandRate:   5,
			CommandBurst:  10,
			MaxSessions:   10000,
		},
	}
}

// Load reads .env (when present), then the TOML file named by
// TERMFOLIO_CONFIG or path, then applies environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if custom := os.Getenv("TERMFOLIO_CONFIG"); custom != "" {
		path = custom
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyAdminDefaults(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.ContentFile, "CONTENT_FILE")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Port, "SMTP_PORT")
	setString(&cfg.SMTP.User, "SMTP_USER")
	setString(&cfg.SMTP.Pass, "SMTP_PASS")
	setString(&cfg.SMTP.To, "TO_EMAIL")
	setString(&cfg.Admin.Username, "ADMIN_USERNAME")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setString(&cfg.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&cfg.Admin.TOTPSecret, "ADMIN_TOTP_SECRET")

	if v := os.Getenv("WATCH_CONTENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("WATCH_CONTENT: %w", err)
		}
		cfg.WatchContent = b
	}
	if err := setDuration(&cfg.Terminal.SessionTTL, "SESSION_TTL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Terminal.RevealFor, "REVEAL_FOR"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Terminal.SweepInterval, "SWEEP_INTERVAL"); err != nil {
		return err
	}
	if v := os.Getenv("COMMAND_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("COMMAND_RATE: %w", err)
		}
		cfg.Terminal.CommandRate = f
	}
	if v := os.Getenv("COMMAND_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COMMAND_BURST: %w", err)
		}
		cfg.Terminal.CommandBurst = n
	}
	if v := os.Getenv("MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_SESSIONS: %w", err)
		}
		cfg.Terminal.MaxSessions = n
	}
	return nil
}

// Default credentials for development (set ADMIN_USERNAME / ADMIN_PASSWORD in production)
func applyAdminDefaults(cfg *Config) {
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
		if cfg.GinMode == "debug" {
			log.Println("WARNING: Using default admin username. Set ADMIN_USERNAME environment variable.")
		}
	}
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		cfg.Admin.Password = "admin123"
		if cfg.GinMode == "debug" {
			log.Println("WARNING: Using default admin password. Set ADMIN_PASSWORD environment variable.")
		}
	}
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin mode %q", c.GinMode)
	}
	if c.Terminal.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Terminal.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	if c.Terminal.RevealFor <= 0 {
		return fmt.Errorf("reveal duration must be positive")
	}
	if c.Terminal.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive")
	}
	if c.Terminal.CommandRate <= 0 || c.Terminal.CommandBurst <= 0 {
		return fmt.Errorf("command rate and burst must be positive")
	}
	if c.Admin.TOTPSecret != "" {
		secret := strings.ToUpper(strings.TrimRight(c.Admin.TOTPSecret, "="))
		if _, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret); err != nil {
			return fmt.Errorf("invalid admin totp secret: %w", err)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
