package rivaliq

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veemedia/socialiq/table"
)

// defaultPeriodStart is the main period start used when a filter leaves
// it unset, matching the service's staging backfill horizon.
const defaultPeriodStart = "2023-01-01"

const dateLayout = "2006-01-02"

// maxPostLimit is the most posts the socialPosts endpoint returns per call.
const maxPostLimit = 500

// PostFilter narrows a social posts query. Zero values get defaults at
// call time: an unset End resolves to the current date (never cached at
// startup), an unset Channel means all channels, and Limit is clamped
// to the endpoint's 500-post maximum.
type PostFilter struct {
	// CompanyID restricts results to one company; empty returns every
	// company in the landscape.
	CompanyID string
	Start     time.Time
	End       time.Time
	Channel   Channel
	Limit     int
}

type postQuery struct {
	CompanyID       string `url:"companyId"`
	MainPeriodStart string `url:"mainPeriodStart"`
	MainPeriodEnd   string `url:"mainPeriodEnd"`
	Limit           int    `url:"limit"`
	Channel         string `url:"channel"`
	Format          string `url:"format"`
}

func (f PostFilter) normalize() (postQuery, error) {
	q := postQuery{
		CompanyID:       f.CompanyID,
		MainPeriodStart: defaultPeriodStart,
		MainPeriodEnd:   time.Now().Format(dateLayout),
		Limit:           maxPostLimit,
		Channel:         string(ChannelAll),
		Format:          "json",
	}

	if !f.Start.IsZero() {
		q.MainPeriodStart = f.Start.Format(dateLayout)
	}
	if !f.End.IsZero() {
		q.MainPeriodEnd = f.End.Format(dateLayout)
	}
	if f.Limit > 0 && f.Limit < maxPostLimit {
		q.Limit = f.Limit
	}
	if f.Channel != "" {
		ch, err := ParseChannel(string(f.Channel))
		if err != nil {
			return postQuery{}, err
		}
		q.Channel = string(ch)
	}

	return q, nil
}

// SocialPosts returns the top posts for companies in a landscape within
// the filter's period, one row per post. Column names follow the remote
// payload; nested fields are flattened to dot-separated names.
func (c *Client) SocialPosts(
	ctx context.Context, landscapeID int64, filter PostFilter,
) (*table.Table, error) {
	q, err := filter.normalize()
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/landscapes/%d/socialPosts", landscapeID)
	body, err := c.get(ctx, path, q, http.StatusOK)
	if err != nil {
		return nil, err
	}

	tbl, err := table.FlattenJSON(body, "socialPosts")
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"landscape": landscapeID,
		"channel":   q.Channel,
		"rows":      tbl.NumRows(),
	}).Debug("social posts fetched")
	return tbl, nil
}

// MetricFilter narrows a summary metrics query. Defaults mirror
// PostFilter.
type MetricFilter struct {
	Start   time.Time
	End     time.Time
	Channel Channel
}

type metricQuery struct {
	MainPeriodStart string `url:"mainPeriodStart"`
	MainPeriodEnd   string `url:"mainPeriodEnd"`
	Channel         string `url:"channel"`
	Format          string `url:"format"`
}

func (f MetricFilter) normalize() (metricQuery, error) {
	q := metricQuery{
		MainPeriodStart: defaultPeriodStart,
		MainPeriodEnd:   time.Now().Format(dateLayout),
		Channel:         string(ChannelAll),
		Format:          "json",
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
			return metricQuery{}, err
		}
		q.Channel = string(ch)
	}

	return q, nil
}

// SummaryMetrics returns summary values for all metrics in a landscape
// over the filter's period.
func (c *Client) SummaryMetrics(
	ctx context.Context, landscapeID int64, filter MetricFilter,
) (*table.Table, error) {
	q, err := filter.normalize()
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/landscapes/%d/metrics/summary", landscapeID)
	body, err := c.get(ctx, path, q, http.StatusOK)
	if err != nil {
		return nil, err
	}

	return table.FlattenJSON(body, "metrics")
}
