// Package mailbox is an IMAP/SMTP agent for report plumbing: search a
// mailbox by structured criteria, fetch and MIME-parse messages, pull
// CSV or Excel attachments into tables, extract report links from
// bodies, and send plain-text mail with an optional attachment.
package mailbox

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/sirupsen/logrus"
)

// defaultFolder is selected after login. Gmail exposes every inbox
// through this virtual folder; other servers usually want "INBOX".
const defaultFolder = "[Gmail]/All Mail"

// Agent holds the connection settings for one mail account. Each
// operation dials, authenticates, and logs out; the agent keeps no open
// connection between calls.
//
// The IMAP and SMTP transport modes are independent: the usual provider
// setup (Gmail included) wants implicit TLS on the IMAP port (993) and
// STARTTLS on the SMTP submission port (587), which is the default.
type Agent struct {
	imapHost     string
	imapPort     string
	smtpHost     string
	smtpPort     string
	username     string
	password     string
	folder       string
	imapStartTLS bool
	smtpStartTLS bool

	httpClient *http.Client
	log        *logrus.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithFolder selects the mailbox folder searched and fetched from.
func WithFolder(folder string) Option {
	return func(a *Agent) {
		a.folder = folder
	}
}

// WithIMAPStartTLS switches the IMAP connection from implicit TLS to
// STARTTLS, for servers that listen on the cleartext IMAP port (143).
func WithIMAPStartTLS() Option {
	return func(a *Agent) {
		a.imapStartTLS = true
	}
}

// WithSMTPImplicitTLS switches SMTP delivery from STARTTLS to implicit
// TLS, for servers that listen on the SMTPS port (465).
func WithSMTPImplicitTLS() Option {
	return func(a *Agent) {
		a.smtpStartTLS = false
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(a *Agent) {
		a.log = log
	}
}

// WithHTTPClient replaces the HTTP client used by CSVFromURL.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Agent) {
		a.httpClient = hc
	}
}

// NewAgent creates a mailbox agent for the given account. Hosts carry
// no port; ports are passed separately to match the dialing helpers.
func NewAgent(
	imapHost, imapPort string,
	smtpHost, smtpPort string,
	username, password string,
	opts ...Option,
) *Agent {
	a := &Agent{
		imapHost:     imapHost,
		imapPort:     imapPort,
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		username:     username,
		password:     password,
		folder:       defaultFolder,
		smtpStartTLS: true,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logrus.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// connect dials the IMAP server, authenticates, and selects the
// configured folder. The caller must Logout the returned client.
func (a *Agent) connect(_ context.Context) (*imapclient.Client, error) {
	addr := a.imapHost + ":" + a.imapPort

	var client *imapclient.Client
	var err error

	if a.imapStartTLS {
		client, err = imapclient.DialStartTLS(addr, nil)
	} else {
		client, err = imapclient.DialTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(a.username, a.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf(
			"authentication failed for %s: %w", a.username, err,
		)
	}

	if _, err := client.Select(a.folder, nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting folder %q: %w", a.folder, err)
	}

	return client, nil
}

// ValidateConnection verifies IMAP credentials and folder access,
// returning the account username on success.
func (a *Agent) ValidateConnection(ctx context.Context) (string, error) {
	client, err := a.connect(ctx)
	if err != nil {
		return "", fmt.Errorf("validating mailbox connection: %w", err)
	}
	defer func() { _ = client.Logout().Wait() }()

	return a.username, nil
}
