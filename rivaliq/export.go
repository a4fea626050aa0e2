package rivaliq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veemedia/socialiq/table"
)

// ExportStatus is the lifecycle state of a bulk export job.
type ExportStatus int

const (
	// ExportPending means the remote service is still materializing the
	// export.
	ExportPending ExportStatus = iota
	// ExportReady means the download link is available.
	ExportReady
	// ExportFailed means the remote service gave up; the job is terminal.
	ExportFailed
)

// Remote status codes reported by the bulkDownload status endpoint.
const (
	remoteStatusReady  = 2
	remoteStatusFailed = 3
)

func (s ExportStatus) String() string {
	switch s {
	case ExportPending:
		return "pending"
	case ExportReady:
		return "ready"
	case ExportFailed:
		return "failed"
	default:
		return fmt.Sprintf("ExportStatus(%d)", int(s))
	}
}

// ExportJob tracks one in-flight bulk export request. Token is issued
// by the remote service on submission and never changes. ResultURL is
// populated exactly when Status is ExportReady.
type ExportJob struct {
	Token       string
	Status      ExportStatus
	ResultURL   string
	SubmittedAt time.Time
}

// ExportFilter narrows a bulk export request. Defaults mirror
// PostFilter; bulk exports have no row limit.
type ExportFilter struct {
	CompanyID string
	Start     time.Time
	End       time.Time
	Channel   Channel
}

type exportQuery struct {
	CompanyID       string `url:"companyId"`
	MainPeriodStart string `url:"mainPeriodStart"`
	MainPeriodEnd   string `url:"mainPeriodEnd"`
	Channel         string `url:"channel"`
	Format          string `url:"format"`
}

func (f ExportFilter) normalize() (exportQuery, error) {
	q := exportQuery{
		CompanyID:       f.CompanyID,
		MainPeriodStart: defaultPeriodStart,
		MainPeriodEnd:   time.Now().Format(dateLayout),
		Channel:         string(ChannelAll),
		Format:          "csv",
	}

	if !f.Start.IsZero() {
		q.MainPeriodStart = f.Start.Format(dateLayout)
	}
	if !f.End.IsZero() {
		q.MainPeriodEnd = f.End.Format(dateLayout)
	}
	if f.Channel != "" {
		ch, err := ParseChannel(string(f.Channel))
		if err != nil {
			return exportQuery{}, err
		}
		q.Channel = string(ch)
	}

	return q, nil
}

// SubmitExport asks the remote service to materialize the social posts
// matching the filter. Only an HTTP 202 with a download token counts as
// accepted; any other response is a *StatusError.
func (c *Client) SubmitExport(
	ctx context.Context, landscapeID int64, filter ExportFilter,
) (*ExportJob, error) {
	q, err := filter.normalize()
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/landscapes/%d/bulkSocialPosts", landscapeID)
	body, err := c.get(ctx, path, q, http.StatusAccepted)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding export submission: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("export submission response carried no token")
	}

	job := &ExportJob{
		Token:       resp.Token,
		Status:      ExportPending,
		SubmittedAt: time.Now(),
	}

	c.log.WithFields(logrus.Fields{
		"landscape": landscapeID,
		"token":     job.Token,
	}).Info("bulk export submitted")
	return job, nil
}

// exportStatus queries the bulkDownload status endpoint once. A non-200
// response is a hard failure, surfaced as a *StatusError.
func (c *Client) exportStatus(
	ctx context.Context, token string,
) (code int, href string, err error) {
	path := "/bulkDownload/" + token + "/status"
	body, err := c.get(ctx, path, nil, http.StatusOK)
	if err != nil {
		return 0, "", err
	}

	var resp struct {
		Status int    `json:"status"`
		Href   string `json:"href"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, "", fmt.Errorf("decoding export status: %w", err)
	}
	return resp.Status, resp.Href, nil
}

// PollUntilReady blocks until the export job is ready, querying the
// status endpoint immediately and then once per interval. It returns
// the download URL on success. A remote "failed" status returns an
// *ExportFailedError and stops polling; exceeding maxWait returns a
// *PollTimeoutError; a non-200 status response or a canceled context
// aborts at once. Every non-ready, non-failed status value loops.
func (c *Client) PollUntilReady(
	ctx context.Context,
	job *ExportJob,
	interval time.Duration,
	maxWait time.Duration,
) (string, error) {
	if job.Status == ExportFailed {
		return "", &ExportFailedError{
			Token:   job.Token,
			Elapsed: time.Since(job.SubmittedAt),
		}
	}
	if job.Status == ExportReady {
		return job.ResultURL, nil
	}

	started := time.Now()
	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()

	for {
		code, href, err := c.exportStatus(ctx, job.Token)
		if err != nil {
			return "", err
		}

		switch code {
		case remoteStatusReady:
			job.Status = ExportReady
			job.ResultURL = href
			c.log.WithFields(logrus.Fields{
				"token":   job.Token,
				"elapsed": time.Since(started).Round(time.Second),
			}).Info("bulk export ready")
			return href, nil

		case remoteStatusFailed:
			job.Status = ExportFailed
			return "", &ExportFailedError{
				Token:   job.Token,
				Elapsed: time.Since(started),
			}
		}

		c.log.WithFields(logrus.Fields{
			"token":   job.Token,
			"status":  code,
			"elapsed": time.Since(started).Round(time.Second),
		}).Debug("bulk export still in progress")

		wait := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return "", ctx.Err()
		case <-deadline.C:
			wait.Stop()
			return "", &PollTimeoutError{
				Token:   job.Token,
				Elapsed: time.Since(started),
				MaxWait: maxWait,
			}
		case <-wait.C:
		}
	}
}

// FetchResult downloads the generated CSV from the export's result URL
// and parses it into a table. A non-2xx response is a *StatusError. An
// empty or malformed body degrades to an empty table so best-effort
// batch callers can tell "no rows" from "request failed"; clients built
// with WithStrictParse get the *table.ParseError instead.
func (c *Client) FetchResult(
	ctx context.Context, resultURL string,
) (*table.Table, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, resultURL, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading export result: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading export result: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     http.MethodGet,
			Path:       resultURL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	tbl, err := table.ParseCSV(bytes.NewReader(body))
	if err != nil {
		var parseErr *table.ParseError
		if c.strictParse || !errors.As(err, &parseErr) {
			return nil, err
		}
		c.log.WithError(err).Warn("malformed export CSV, returning empty table")
		return &table.Table{}, nil
	}

	return tbl, nil
}

// BulkSocialPosts runs the full export protocol in one call: submit the
// job, poll with the client's configured interval and wait bound, then
// fetch and parse the result.
func (c *Client) BulkSocialPosts(
	ctx context.Context, landscapeID int64, filter ExportFilter,
) (*table.Table, error) {
	job, err := c.SubmitExport(ctx, landscapeID, filter)
	if err != nil {
		return nil, err
	}

	resultURL, err := c.PollUntilReady(ctx, job, c.pollInterval, c.maxWait)
	if err != nil {
		return nil, err
	}

	return c.FetchResult(ctx, resultURL)
}
