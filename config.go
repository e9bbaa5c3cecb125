package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/contact"
)

// Config defines server configuration.
type Config struct {
	Server      ServerConfig  `yaml:"server"`
	DB          DBConfig      `yaml:"db"`
	Catalog     CatalogConfig `yaml:"catalog"`
	Log         LogConfig     `yaml:"log"`
	SMTP        SMTPConfig    `yaml:"smtp"`
	Admin       AdminConfig   `yaml:"admin"`
	ProfilePath string        `yaml:"profile_path"`
}

type ServerConfig struct {
	Bind    string `yaml:"bind"`
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type CatalogConfig struct {
	SheetURL     string        `yaml:"sheet_url"`
	Refresh      time.Duration `yaml:"refresh"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	To   string `yaml:"to"`
}

type AdminConfig struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
	JWTSecret    string `yaml:"jwt_secret"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Port: 8080, GinMode: "debug"},
		DB:     DBConfig{Path: "data/portfolio.db"},
		Catalog: CatalogConfig{
			FetchTimeout: catalog.DefaultFetchTimeout,
		},
		Log:  LogConfig{Level: "info"},
		SMTP: SMTPConfig{Host: "smtp.gmail.com", Port: "587"},
		Admin: AdminConfig{
			Username: "admin",
		},
	}
}

// LoadConfig reads configuration from an optional YAML file named by
// PORTFOLIO_CONFIG and then from environment variables, which win.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("PORTFOLIO_CONFIG"); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	setString(&cfg.Server.Bind, "BIND")
	if err := setInt(&cfg.Server.Port, "PORT"); err != nil {
		return Config{}, err
	}
	setString(&cfg.Server.GinMode, "GIN_MODE")
	setString(&cfg.DB.Path, "DB_PATH")
	setString(&cfg.Catalog.SheetURL, "SHEET_URL")
	if err := setDuration(&cfg.Catalog.Refresh, "CATALOG_REFRESH"); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.Catalog.FetchTimeout, "FETCH_TIMEOUT"); err != nil {
		return Config{}, err
	}
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Port, "SMTP_PORT")
	setString(&cfg.SMTP.User, "SMTP_USER")
	setString(&cfg.SMTP.Pass, "SMTP_PASS")
	setString(&cfg.SMTP.To, "TO_EMAIL")
	setString(&cfg.Admin.Username, "ADMIN_USERNAME")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setString(&cfg.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&cfg.Admin.JWTSecret, "JWT_SECRET")
	setString(&cfg.ProfilePath, "PROFILE_PATH")

	return cfg, nil
}

// Validate checks ranges and shapes that would otherwise fail at runtime.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("gin mode must be debug, release or test, got %q", c.Server.GinMode)
	}
	if c.DB.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Catalog.Refresh < 0 {
		return fmt.Errorf("catalog refresh must not be negative")
	}
	if c.Catalog.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.Catalog.SheetURL != "" {
		u, err := url.Parse(c.Catalog.SheetURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("sheet url must be an absolute http(s) URL, got %q", c.Catalog.SheetURL)
		}
	}
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return c.Server.Bind + ":" + strconv.Itoa(c.Server.Port)
}

// notifier returns nil when SMTP credentials are missing. Mail goes to the
// sending account unless TO_EMAIL is set.
func (c SMTPConfig) notifier() *contact.SMTPNotifier {
	to := c.To
	if to == "" {
		to = c.User
	}
	return contact.NewSMTPNotifier(contact.SMTPConfig{
		Host: c.Host,
		Port: c.Port,
		User: c.User,
		Pass: c.Pass,
		To:   to,
	})
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
