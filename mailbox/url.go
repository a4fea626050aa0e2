package mailbox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/veemedia/socialiq/table"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'()]+`)

// ExtractURL pulls a single URL out of a message body. When baseURL is
// non-empty only URLs starting with it are considered. Exactly one
// match is required: zero matches wrap ErrNoURL, more than one wrap
// ErrMultipleURLs.
func ExtractURL(body, baseURL string) (string, error) {
	pattern := urlPattern
	if baseURL != "" {
		pattern = regexp.MustCompile(
			regexp.QuoteMeta(baseURL) + `[^\s<>"'()]*`,
		)
	}

	urls := pattern.FindAllString(body, -1)

	switch len(urls) {
	case 1:
		return urls[0], nil
	case 0:
		if baseURL != "" {
			return "", fmt.Errorf("%w (base %s)", ErrNoURL, baseURL)
		}
		return "", ErrNoURL
	default:
		return "", fmt.Errorf("%w: found %d", ErrMultipleURLs, len(urls))
	}
}

// URLTable fetches a message, extracts the single report link from its
// body, and downloads and parses the linked CSV. When baseURL is
// non-empty only links starting with it are considered, which filters
// out unsubscribe and tracking links.
func (a *Agent) URLTable(
	ctx context.Context, uid uint32, baseURL string,
) (*table.Table, error) {
	msg, err := a.FetchMessage(ctx, uid)
	if err != nil {
		return nil, err
	}
	return a.urlTable(ctx, msg, baseURL)
}

func (a *Agent) urlTable(
	ctx context.Context, msg *Message, baseURL string,
) (*table.Table, error) {
	link, err := ExtractURL(msg.Body(), baseURL)
	if err != nil {
		return nil, err
	}
	return a.CSVFromURL(ctx, link)
}

// CSVFromURL downloads a CSV file from a link (typically extracted from
// a report email) and parses it into a table. Unlike the bulk export
// download path, a malformed body here is an error: a mailed link that
// does not resolve to CSV means the wrong link was extracted.
func (a *Agent) CSVFromURL(
	ctx context.Context, url string,
) (*table.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading download body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"unexpected status %d on GET %s: %s",
			resp.StatusCode, url, strings.TrimSpace(string(body)),
		)
	}

	tbl, err := table.ParseCSV(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	a.log.WithField("rows", tbl.NumRows()).Debug("CSV downloaded")
	return tbl, nil
}
