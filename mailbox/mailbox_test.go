package mailbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTransportModeDefaults(t *testing.T) {
	// Implicit TLS on IMAP and STARTTLS on SMTP together, the setup
	// providers expose on ports 993 and 587.
	agent := NewAgent(
		"imap.gmail.com", "993", "smtp.gmail.com", "587",
		"user@example.com", "pw",
	)

	if agent.imapStartTLS {
		t.Error("default IMAP transport should be implicit TLS, not STARTTLS")
	}
	if !agent.smtpStartTLS {
		t.Error("default SMTP transport should be STARTTLS")
	}
}

func TestTransportModesIndependent(t *testing.T) {
	agent := NewAgent(
		"mail.example.com", "143", "mail.example.com", "587",
		"user@example.com", "pw",
		WithIMAPStartTLS(),
	)
	if !agent.imapStartTLS {
		t.Error("WithIMAPStartTLS should switch IMAP to STARTTLS")
	}
	if !agent.smtpStartTLS {
		t.Error("WithIMAPStartTLS must not change the SMTP transport")
	}

	agent = NewAgent(
		"imap.example.com", "993", "smtp.example.com", "465",
		"user@example.com", "pw",
		WithSMTPImplicitTLS(),
	)
	if agent.smtpStartTLS {
		t.Error("WithSMTPImplicitTLS should switch SMTP to implicit TLS")
	}
	if agent.imapStartTLS {
		t.Error("WithSMTPImplicitTLS must not change the IMAP transport")
	}
}

func TestSearchCriteriaTranslation(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	sc := SearchCriteria{
		From:            "reports@vendor.example",
		SubjectContains: []string{"Daily", "Spend"},
		SubjectExcludes: "Draft",
		SentToday:       true,
	}

	criteria, err := sc.imapCriteria(now)
	if err != nil {
		t.Fatalf("imapCriteria failed: %v", err)
	}

	if len(criteria.Header) != 3 {
		t.Fatalf("header fields = %d, want 3", len(criteria.Header))
	}
	if criteria.Header[0].Key != "From" ||
		criteria.Header[0].Value != "reports@vendor.example" {
		t.Errorf("From header = %+v", criteria.Header[0])
	}
	if criteria.Header[1].Value != "Daily" || criteria.Header[2].Value != "Spend" {
		t.Errorf("Subject headers = %+v", criteria.Header[1:])
	}

	if len(criteria.Not) != 1 || criteria.Not[0].Header[0].Value != "Draft" {
		t.Errorf("Not criteria = %+v", criteria.Not)
	}

	wantSince := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !criteria.SentSince.Equal(wantSince) {
		t.Errorf("SentSince = %s, want %s", criteria.SentSince, wantSince)
	}
	if !criteria.SentBefore.Equal(wantSince.AddDate(0, 0, 1)) {
		t.Errorf("SentBefore = %s", criteria.SentBefore)
	}
}

func TestSearchCriteriaConflictingDates(t *testing.T) {
	sc := SearchCriteria{
		SentOn:    time.Now(),
		SentToday: true,
	}
	_, err := sc.imapCriteria(time.Now())
	if !errors.Is(err, ErrConflictingDates) {
		t.Fatalf("expected ErrConflictingDates, got %v", err)
	}
}

func TestSearchCriteriaEmptyIsUnbounded(t *testing.T) {
	criteria, err := SearchCriteria{}.imapCriteria(time.Now())
	if err != nil {
		t.Fatalf("imapCriteria failed: %v", err)
	}
	if len(criteria.Header) != 0 || len(criteria.Not) != 0 {
		t.Errorf("empty criteria should translate to no terms: %+v", criteria)
	}
	if !criteria.SentSince.IsZero() {
		t.Errorf("SentSince should be zero, got %s", criteria.SentSince)
	}
}

func TestExtractURL(t *testing.T) {
	body := "Your report is ready.\nDownload: https://files.example.com/r/abc123\nThanks"

	url, err := ExtractURL(body, "")
	if err != nil {
		t.Fatalf("ExtractURL failed: %v", err)
	}
	if url != "https://files.example.com/r/abc123" {
		t.Errorf("url = %q", url)
	}
}

func TestExtractURLWithBase(t *testing.T) {
	body := "See https://other.example.com/x and https://files.example.com/r/abc"

	url, err := ExtractURL(body, "https://files.example.com")
	if err != nil {
		t.Fatalf("ExtractURL failed: %v", err)
	}
	if url != "https://files.example.com/r/abc" {
		t.Errorf("url = %q", url)
	}
}

func TestExtractURLNone(t *testing.T) {
	_, err := ExtractURL("no links here", "")
	if !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestExtractURLMultiple(t *testing.T) {
	_, err := ExtractURL(
		"https://a.example.com/1 and https://b.example.com/2", "",
	)
	if !errors.Is(err, ErrMultipleURLs) {
		t.Fatalf("expected ErrMultipleURLs, got %v", err)
	}
}

func TestExtractURLStopsAtDelimiters(t *testing.T) {
	url, err := ExtractURL(
		`<a href="https://files.example.com/r/abc">link</a>`,
		"https://files.example.com",
	)
	if err != nil {
		t.Fatalf("ExtractURL failed: %v", err)
	}
	if url != "https://files.example.com/r/abc" {
		t.Errorf("url = %q", url)
	}
}

func TestCSVFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Day,Spend\nMon,10\nTue,20\n")
	}))
	defer server.Close()

	agent := NewAgent("", "", "", "", "user@example.com", "pw")

	tbl, err := agent.CSVFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("CSVFromURL failed: %v", err)
	}
	if tbl.NumRows() != 2 || tbl.Columns[1] != "Spend" {
		t.Errorf("table = %v %v", tbl.Columns, tbl.Rows)
	}
}

func TestCSVFromURLHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired link", http.StatusForbidden)
	}))
	defer server.Close()

	agent := NewAgent("", "", "", "", "user@example.com", "pw")

	if _, err := agent.CSVFromURL(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestCSVFromURLMalformedIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "a,b\n1,2,3\n")
	}))
	defer server.Close()

	agent := NewAgent("", "", "", "", "user@example.com", "pw")

	if _, err := agent.CSVFromURL(context.Background(), server.URL); err == nil {
		t.Fatal("expected parse error for malformed CSV")
	}
}

func TestURLTableFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reports/weekly.csv" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, "Day,Spend\nMon,10\n")
	}))
	defer server.Close()

	agent := NewAgent("", "", "", "", "user@example.com", "pw")

	msg := &Message{
		TextBody: "Your weekly report is ready.\n" +
			server.URL + "/reports/weekly.csv\nThanks",
	}

	tbl, err := agent.urlTable(context.Background(), msg, "")
	if err != nil {
		t.Fatalf("urlTable failed: %v", err)
	}
	if tbl.NumRows() != 1 || tbl.Columns[1] != "Spend" {
		t.Errorf("table = %v %v", tbl.Columns, tbl.Rows)
	}
}

func TestURLTableFiltersByBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "a,b\n1,2\n")
	}))
	defer server.Close()

	agent := NewAgent("", "", "", "", "user@example.com", "pw")

	// The unsubscribe link must be ignored when a base URL is given.
	msg := &Message{
		TextBody: "Report: " + server.URL + "/r.csv\n" +
			"Unsubscribe: https://tracker.example.com/u/123",
	}

	tbl, err := agent.urlTable(context.Background(), msg, server.URL)
	if err != nil {
		t.Fatalf("urlTable failed: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Errorf("NumRows = %d, want 1", tbl.NumRows())
	}
}

func TestURLTableNoLink(t *testing.T) {
	agent := NewAgent("", "", "", "", "user@example.com", "pw")

	msg := &Message{TextBody: "no links in this message"}
	_, err := agent.urlTable(context.Background(), msg, "")
	if !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestAttachmentTableCSV(t *testing.T) {
	msg := &Message{
		Envelope: Envelope{UID: 7},
		Attachments: []Attachment{
			{
				Filename: "report.csv",
				MIMEType: "text/csv",
				Content:  []byte("Day,Media Owner\nMon,Acme\n"),
			},
		},
	}

	tbl, err := attachmentTable(msg, nil)
	if err != nil {
		t.Fatalf("attachmentTable failed: %v", err)
	}
	if tbl.NumRows() != 1 || tbl.Columns[1] != "Media Owner" {
		t.Errorf("table = %v %v", tbl.Columns, tbl.Rows)
	}
}

func TestAttachmentTableWithPreamble(t *testing.T) {
	content := "Exported by vendor\n\nDay,Media Owner,Advertiser\nMon,Acme,Soda Co\n"
	msg := &Message{
		Attachments: []Attachment{
			{Filename: "export.csv", Content: []byte(content)},
		},
	}

	tbl, err := attachmentTable(msg, []string{"Day", "Advertiser"})
	if err != nil {
		t.Fatalf("attachmentTable failed: %v", err)
	}
	if tbl.NumColumns() != 3 || tbl.NumRows() != 1 {
		t.Errorf("table = %v %v", tbl.Columns, tbl.Rows)
	}
}

func TestAttachmentTableExcelUnsupported(t *testing.T) {
	msg := &Message{
		Attachments: []Attachment{
			{Filename: "report.xlsx", Content: []byte{0x50, 0x4b}},
		},
	}

	_, err := attachmentTable(msg, nil)
	var unsupportedErr *UnsupportedAttachmentError
	if !errors.As(err, &unsupportedErr) {
		t.Fatalf("expected *UnsupportedAttachmentError, got %v", err)
	}
	if unsupportedErr.Filename != "report.xlsx" {
		t.Errorf("Filename = %q", unsupportedErr.Filename)
	}
}

func TestAttachmentTableNone(t *testing.T) {
	msg := &Message{
		Envelope: Envelope{UID: 9},
		Attachments: []Attachment{
			{Filename: "logo.png", MIMEType: "image/png"},
		},
	}

	_, err := attachmentTable(msg, nil)
	var noneErr *NoAttachmentError
	if !errors.As(err, &noneErr) {
		t.Fatalf("expected *NoAttachmentError, got %v", err)
	}
	if noneErr.UID != 9 {
		t.Errorf("UID = %d", noneErr.UID)
	}
}

func TestHasTabularAttachment(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"report.csv", true},
		{"Report.XLSX", true},
		{"macro.xlsm", true},
		{"legacy.xls", true},
		{"notes.txt", false},
		{"", false},
	}

	for _, tc := range cases {
		msg := &Message{
			Attachments: []Attachment{{Filename: tc.filename}},
		}
		if got := msg.HasTabularAttachment(); got != tc.want {
			t.Errorf("HasTabularAttachment(%q) = %v, want %v",
				tc.filename, got, tc.want)
		}
	}
}

func TestBodyFallsBackToHTML(t *testing.T) {
	msg := &Message{HTMLBody: "<p>hello</p>"}
	if msg.Body() != "<p>hello</p>" {
		t.Errorf("Body = %q", msg.Body())
	}

	msg.TextBody = "hello"
	if msg.Body() != "hello" {
		t.Errorf("Body = %q", msg.Body())
	}
}

func TestComposeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	attachmentPath := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(
		attachmentPath, []byte("a,b\n1,2\n"), 0o644,
	); err != nil {
		t.Fatal(err)
	}

	agent := NewAgent(
		"", "", "smtp.example.com", "465", "sender@example.com", "pw",
	)

	raw, err := agent.compose(
		"dest@example.com", "Weekly numbers", "See attached.", attachmentPath,
	)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	// Feed the composed message back through the MIME parser.
	text, _, attachments := parseMIMEBody(raw)
	if text != "See attached." {
		t.Errorf("text body = %q", text)
	}
	if len(attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(attachments))
	}
	if attachments[0].Filename != "data.csv" {
		t.Errorf("attachment filename = %q", attachments[0].Filename)
	}
	if string(attachments[0].Content) != "a,b\n1,2\n" {
		t.Errorf("attachment content = %q", attachments[0].Content)
	}
}

func TestComposeWithoutAttachment(t *testing.T) {
	agent := NewAgent(
		"", "", "smtp.example.com", "465", "sender@example.com", "pw",
	)

	raw, err := agent.compose("dest@example.com", "Ping", "Just text.", "")
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	text, _, attachments := parseMIMEBody(raw)
	if text != "Just text." {
		t.Errorf("text body = %q", text)
	}
	if len(attachments) != 0 {
		t.Errorf("attachments = %d, want 0", len(attachments))
	}
}
