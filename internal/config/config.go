// Package config loads the socialiq configuration from a YAML file,
// with environment variables overriding secrets so API keys never have
// to live on disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// RivalIQConfig holds Rival IQ API settings. The API key itself comes
// from the keyring or the environment variable named by APIKeyEnv.
type RivalIQConfig struct {
	BaseURL         string `mapstructure:"base_url" yaml:"base_url"`
	APIKeyEnv       string `mapstructure:"api_key_env" yaml:"api_key_env"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	MaxWaitSec      int    `mapstructure:"max_wait_sec" yaml:"max_wait_sec"`
}

// MailboxConfig holds IMAP/SMTP account settings. The password comes
// from the keyring or the environment variable named by PasswordEnv.
// The two transport modes are independent; the defaults match the
// common provider setup of implicit TLS on IMAP 993 and STARTTLS on
// SMTP 587.
type MailboxConfig struct {
	IMAPHost     string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort     string `mapstructure:"imap_port" yaml:"imap_port"`
	SMTPHost     string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort     string `mapstructure:"smtp_port" yaml:"smtp_port"`
	Username     string `mapstructure:"username" yaml:"username"`
	PasswordEnv  string `mapstructure:"password_env" yaml:"password_env"`
	Folder       string `mapstructure:"folder" yaml:"folder"`
	IMAPStartTLS bool   `mapstructure:"imap_starttls" yaml:"imap_starttls"`
	SMTPStartTLS bool   `mapstructure:"smtp_starttls" yaml:"smtp_starttls"`
}

// WarehouseConfig holds the staging database location.
type WarehouseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Config is the top-level configuration.
type Config struct {
	RivalIQ   RivalIQConfig   `mapstructure:"rivaliq" yaml:"rivaliq"`
	Mailbox   MailboxConfig   `mapstructure:"mailbox" yaml:"mailbox"`
	Warehouse WarehouseConfig `mapstructure:"warehouse" yaml:"warehouse"`
}

// DefaultConfigPath returns the default configuration file location,
// ~/.config/socialiq/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "socialiq", "config.yaml")
}

func defaultConfig() *Config {
	return &Config{
		RivalIQ: RivalIQConfig{
			BaseURL:         "https://api.rivaliq.com/v3",
			APIKeyEnv:       "RIVALIQ_API_KEY",
			PollIntervalSec: 60,
			MaxWaitSec:      1800,
		},
		Mailbox: MailboxConfig{
			IMAPHost:     "imap.gmail.com",
			IMAPPort:     "993",
			SMTPHost:     "smtp.gmail.com",
			SMTPPort:     "587",
			PasswordEnv:  "MAILBOX_PASSWORD",
			Folder:       "[Gmail]/All Mail",
			IMAPStartTLS: false,
			SMTPStartTLS: true,
		},
		Warehouse: WarehouseConfig{
			Path: filepath.Join(".", "staging.db"),
		},
	}
}

// Load reads configuration from a YAML file using Viper. A missing file
// yields the default configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("rivaliq.base_url", "https://api.rivaliq.com/v3")
	v.SetDefault("rivaliq.api_key_env", "RIVALIQ_API_KEY")
	v.SetDefault("rivaliq.poll_interval_sec", 60)
	v.SetDefault("rivaliq.max_wait_sec", 1800)
	v.SetDefault("mailbox.imap_host", "imap.gmail.com")
	v.SetDefault("mailbox.imap_port", "993")
	v.SetDefault("mailbox.smtp_host", "smtp.gmail.com")
	v.SetDefault("mailbox.smtp_port", "587")
	v.SetDefault("mailbox.password_env", "MAILBOX_PASSWORD")
	v.SetDefault("mailbox.folder", "[Gmail]/All Mail")
	v.SetDefault("mailbox.imap_starttls", false)
	v.SetDefault("mailbox.smtp_starttls", true)
	v.SetDefault("warehouse.path", filepath.Join(".", "staging.db"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file at path, creating parent
// directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("rivaliq", cfg.RivalIQ)
	v.Set("mailbox", cfg.Mailbox)
	v.Set("warehouse", cfg.Warehouse)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
