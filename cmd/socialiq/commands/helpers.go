package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veemedia/socialiq/internal/config"
	"github.com/veemedia/socialiq/internal/credential"
	"github.com/veemedia/socialiq/mailbox"
	"github.com/veemedia/socialiq/rivaliq"
	"github.com/veemedia/socialiq/table"
	"github.com/veemedia/socialiq/warehouse"
)

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func newRivalIQClient(cfg *config.Config) (*rivaliq.Client, error) {
	apiKey, err := credential.GetWithEnv(credential.KeyRivalIQAPIKey, cfg.RivalIQ.APIKeyEnv)
	if err != nil {
		return nil, fmt.Errorf("rival iq api key: %w", err)
	}

	opts := []rivaliq.Option{
		rivaliq.WithLogger(logrus.StandardLogger()),
	}
	if cfg.RivalIQ.BaseURL != "" {
		opts = append(opts, rivaliq.WithBaseURL(cfg.RivalIQ.BaseURL))
	}
	if cfg.RivalIQ.PollIntervalSec > 0 {
		opts = append(opts, rivaliq.WithPollInterval(time.Duration(cfg.RivalIQ.PollIntervalSec)*time.Second))
	}
	if cfg.RivalIQ.MaxWaitSec > 0 {
		opts = append(opts, rivaliq.WithMaxWait(time.Duration(cfg.RivalIQ.MaxWaitSec)*time.Second))
	}

	return rivaliq.NewClient(apiKey, opts...), nil
}

func newMailboxAgent(cfg *config.Config) (*mailbox.Agent, error) {
	password, err := credential.GetWithEnv(credential.KeyMailboxPassword, cfg.Mailbox.PasswordEnv)
	if err != nil {
		return nil, fmt.Errorf("mailbox password: %w", err)
	}

	opts := []mailbox.Option{
		mailbox.WithLogger(logrus.StandardLogger()),
	}
	if cfg.Mailbox.Folder != "" {
		opts = append(opts, mailbox.WithFolder(cfg.Mailbox.Folder))
	}
	if cfg.Mailbox.IMAPStartTLS {
		opts = append(opts, mailbox.WithIMAPStartTLS())
	}
	if !cfg.Mailbox.SMTPStartTLS {
		opts = append(opts, mailbox.WithSMTPImplicitTLS())
	}

	return mailbox.NewAgent(
		cfg.Mailbox.IMAPHost, cfg.Mailbox.IMAPPort,
		cfg.Mailbox.SMTPHost, cfg.Mailbox.SMTPPort,
		cfg.Mailbox.Username, password,
		opts...,
	), nil
}

func openWarehouse(cfg *config.Config) (*warehouse.Store, error) {
	return warehouse.Open(cfg.Warehouse.Path)
}

// printTable writes a table to w in aligned columns.
func printTable(w io.Writer, tbl *table.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tbl.Columns, "\t"))
	for _, row := range tbl.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// parseIDs parses positional numeric ID arguments.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid company ID %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseDate parses a YYYY-MM-DD flag value, tolerating an empty value.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}
