package mailbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/veemedia/socialiq/table"
)

// Envelope holds the parsed envelope data of a message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	To        []string
	Date      time.Time
	UID       uint32
}

// Attachment is one decoded MIME attachment.
type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Message is a fully fetched and MIME-parsed email.
type Message struct {
	Envelope    Envelope
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// tabularExtensions are the attachment types the agent recognizes as
// report data.
var tabularExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
	".xlsm": true,
}

// Body returns the plain-text body, falling back to the HTML body when
// no text part exists.
func (m *Message) Body() string {
	if m.TextBody != "" {
		return m.TextBody
	}
	return m.HTMLBody
}

// HasTabularAttachment reports whether the message carries a CSV or
// Excel attachment.
func (m *Message) HasTabularAttachment() bool {
	for _, att := range m.Attachments {
		ext := strings.ToLower(filepath.Ext(att.Filename))
		if tabularExtensions[ext] {
			return true
		}
	}
	return false
}

// FetchMessage fetches the full message body for the given UID and
// parses it into envelope, text/HTML bodies, and attachments.
func (a *Agent) FetchMessage(
	ctx context.Context, uid uint32,
) (*Message, error) {
	client, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	uidSet := imap.UIDSetNum(imap.UID(uid))

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}

	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)

	msg := fetchCmd.Next()
	if msg == nil {
		_ = fetchCmd.Close()
		return nil, fmt.Errorf("message UID %d not found", uid)
	}

	buf, err := msg.Collect()
	if err != nil {
		_ = fetchCmd.Close()
		return nil, fmt.Errorf("collecting message data: %w", err)
	}

	parsed := &Message{
		Envelope: envelopeFromBuffer(buf),
	}

	rawBody := buf.FindBodySection(bodySection)
	if rawBody != nil {
		parsed.TextBody, parsed.HTMLBody, parsed.Attachments =
			parseMIMEBody(rawBody)
	}

	if err := fetchCmd.Close(); err != nil {
		return parsed, fmt.Errorf("closing fetch: %w", err)
	}

	return parsed, nil
}

// AttachmentTable fetches a message and parses its first CSV attachment
// into a table. When keyColumns is non-empty the header row is located
// by scanning for a line containing all of them, which handles mailed
// reports with preamble lines. Excel attachments are detected but not
// parseable and yield an *UnsupportedAttachmentError; a message with no
// tabular attachment yields a *NoAttachmentError.
func (a *Agent) AttachmentTable(
	ctx context.Context, uid uint32, keyColumns []string,
) (*table.Table, error) {
	msg, err := a.FetchMessage(ctx, uid)
	if err != nil {
		return nil, err
	}
	return attachmentTable(msg, keyColumns)
}

func attachmentTable(msg *Message, keyColumns []string) (*table.Table, error) {
	var unsupported string

	for _, att := range msg.Attachments {
		ext := strings.ToLower(filepath.Ext(att.Filename))

		switch {
		case ext == ".csv" || strings.HasPrefix(att.MIMEType, "text/csv"):
			return table.ParseCSVWithHeader(
				bytes.NewReader(att.Content), keyColumns,
			)
		case tabularExtensions[ext]:
			unsupported = att.Filename
		}
	}

	if unsupported != "" {
		return nil, &UnsupportedAttachmentError{Filename: unsupported}
	}
	return nil, &NoAttachmentError{UID: msg.Envelope.UID}
}

// envelopeFromBuffer extracts an Envelope from a FetchMessageBuffer.
func envelopeFromBuffer(buf *imapclient.FetchMessageBuffer) Envelope {
	env := Envelope{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		env.MessageID = buf.Envelope.MessageID
		env.Subject = buf.Envelope.Subject
		env.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			env.From = buf.Envelope.From[0].Addr()
		}
		for _, to := range buf.Envelope.To {
			env.To = append(env.To, to.Addr())
		}
	}

	return env
}

// parseMIMEBody parses a raw RFC 2822 message using go-message and
// extracts the text/plain body, text/html body, and attachments with
// their content.
func parseMIMEBody(raw []byte) (
	textBody string, htmlBody string, attachments []Attachment,
) {
	reader := bytes.NewReader(raw)

	mr, err := mail.CreateReader(reader)
	if err != nil {
		// If parsing fails, treat the whole thing as plain text.
		return string(raw), "", nil
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}

			switch {
			case strings.HasPrefix(contentType, "text/plain"):
				textBody = string(body)
			case strings.HasPrefix(contentType, "text/html"):
				htmlBody = string(body)
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()

			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}

			attachments = append(attachments, Attachment{
				Filename: filename,
				MIMEType: contentType,
				Content:  body,
			})
		}
	}

	return textBody, htmlBody, attachments
}
