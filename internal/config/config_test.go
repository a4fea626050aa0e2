package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RivalIQ.BaseURL != "https://api.rivaliq.com/v3" {
		t.Errorf("BaseURL = %q", cfg.RivalIQ.BaseURL)
	}
	if cfg.RivalIQ.PollIntervalSec != 60 {
		t.Errorf("PollIntervalSec = %d, want 60", cfg.RivalIQ.PollIntervalSec)
	}
	if cfg.Mailbox.Folder != "[Gmail]/All Mail" {
		t.Errorf("Folder = %q", cfg.Mailbox.Folder)
	}
	// IMAP 993 speaks implicit TLS while SMTP 587 wants STARTTLS, so
	// the two defaults must differ.
	if cfg.Mailbox.IMAPStartTLS {
		t.Error("IMAPStartTLS = true, want false for port 993")
	}
	if !cfg.Mailbox.SMTPStartTLS {
		t.Error("SMTPStartTLS = false, want true for port 587")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `rivaliq:
  base_url: https://example.test/v3
  poll_interval_sec: 5
mailbox:
  username: reports@example.test
  folder: INBOX
  imap_starttls: true
  smtp_starttls: false
warehouse:
  path: /tmp/custom.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RivalIQ.BaseURL != "https://example.test/v3" {
		t.Errorf("BaseURL = %q", cfg.RivalIQ.BaseURL)
	}
	if cfg.RivalIQ.PollIntervalSec != 5 {
		t.Errorf("PollIntervalSec = %d, want 5", cfg.RivalIQ.PollIntervalSec)
	}
	// Unset keys keep their defaults.
	if cfg.RivalIQ.MaxWaitSec != 1800 {
		t.Errorf("MaxWaitSec = %d, want 1800", cfg.RivalIQ.MaxWaitSec)
	}
	if cfg.Mailbox.Username != "reports@example.test" {
		t.Errorf("Username = %q", cfg.Mailbox.Username)
	}
	if cfg.Mailbox.Folder != "INBOX" {
		t.Errorf("Folder = %q", cfg.Mailbox.Folder)
	}
	if !cfg.Mailbox.IMAPStartTLS {
		t.Error("IMAPStartTLS override not applied")
	}
	if cfg.Mailbox.SMTPStartTLS {
		t.Error("SMTPStartTLS override not applied")
	}
	if cfg.Warehouse.Path != "/tmp/custom.db" {
		t.Errorf("Path = %q", cfg.Warehouse.Path)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultConfig()
	cfg.RivalIQ.MaxWaitSec = 600
	cfg.Mailbox.Username = "agency@example.test"
	cfg.Warehouse.Path = "warehouse.db"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.RivalIQ.MaxWaitSec != 600 {
		t.Errorf("MaxWaitSec = %d, want 600", loaded.RivalIQ.MaxWaitSec)
	}
	if loaded.Mailbox.Username != "agency@example.test" {
		t.Errorf("Username = %q", loaded.Mailbox.Username)
	}
	if loaded.Warehouse.Path != "warehouse.db" {
		t.Errorf("Path = %q", loaded.Warehouse.Path)
	}
}
