package mailbox

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"
)

// Send composes a plain-text email with an optional single attachment
// and delivers it over SMTP, using implicit TLS or STARTTLS depending
// on how the agent was configured.
func (a *Agent) Send(
	to, subject, body string, attachmentPath string,
) error {
	raw, err := a.compose(to, subject, body, attachmentPath)
	if err != nil {
		return err
	}

	addr := a.smtpHost + ":" + a.smtpPort

	if a.smtpStartTLS {
		err = a.sendWithStartTLS(addr, to, raw)
	} else {
		err = a.sendWithTLS(addr, to, raw)
	}
	if err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("email sent")
	return nil
}

// compose builds the RFC 5322 message with go-message.
func (a *Agent) compose(
	to, subject, body string, attachmentPath string,
) ([]byte, error) {
	var buf bytes.Buffer

	var header mail.Header
	header.SetDate(time.Now())
	header.SetAddressList("From", []*mail.Address{{Address: a.username}})
	header.SetAddressList("To", []*mail.Address{{Address: to}})
	header.SetSubject(subject)

	mw, err := mail.CreateWriter(&buf, header)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}

	var inlineHeader mail.InlineHeader
	inlineHeader.SetContentType("text/plain", map[string]string{
		"charset": "utf-8",
	})

	iw, err := mw.CreateSingleInline(inlineHeader)
	if err != nil {
		return nil, fmt.Errorf("creating text part: %w", err)
	}
	if _, err := io.WriteString(iw, body); err != nil {
		iw.Close()
		return nil, fmt.Errorf("writing text part: %w", err)
	}
	if err := iw.Close(); err != nil {
		return nil, fmt.Errorf("closing text part: %w", err)
	}

	if attachmentPath != "" {
		if err := attach(mw, attachmentPath); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}

	return buf.Bytes(), nil
}

// attach streams a file into the message as an attachment part.
func attach(mw *mail.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening attachment %s: %w", path, err)
	}
	defer file.Close()

	var header mail.AttachmentHeader
	header.SetFilename(filepath.Base(path))

	aw, err := mw.CreateAttachment(header)
	if err != nil {
		return fmt.Errorf("creating attachment part: %w", err)
	}

	if _, err := io.Copy(aw, file); err != nil {
		aw.Close()
		return fmt.Errorf("writing attachment %s: %w", path, err)
	}
	return aw.Close()
}

// sendWithTLS delivers a message over an implicit TLS connection.
func (a *Agent) sendWithTLS(addr, to string, raw []byte) error {
	tlsConfig := &tls.Config{ServerName: a.smtpHost}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, a.smtpHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", a.username, a.password, a.smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return deliver(client, a.username, to, raw)
}

// sendWithStartTLS delivers a message using STARTTLS.
func (a *Agent) sendWithStartTLS(addr, to string, raw []byte) error {
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, a.smtpHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: a.smtpHost}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", a.username, a.password, a.smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return deliver(client, a.username, to, raw)
}

// deliver sends a composed message through an authenticated SMTP client.
func deliver(client *smtp.Client, from, to string, raw []byte) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write(raw); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	return client.Quit()
}
