package mailbox

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/sirupsen/logrus"
)

// SearchCriteria selects messages by sender, subject content, and send
// date. Zero-value fields are ignored. SentOn and SentToday are
// mutually exclusive; SentToday resolves the date when Search runs, not
// when the criteria value was built.
type SearchCriteria struct {
	From            string
	SubjectContains []string
	SubjectExcludes string
	SentOn          time.Time
	SentToday       bool
}

// imapCriteria translates the criteria into the IMAP SEARCH form.
func (sc SearchCriteria) imapCriteria(now time.Time) (*imap.SearchCriteria, error) {
	if !sc.SentOn.IsZero() && sc.SentToday {
		return nil, ErrConflictingDates
	}

	criteria := &imap.SearchCriteria{}

	if sc.From != "" {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
			Key:   "From",
			Value: sc.From,
		})
	}

	for _, substring := range sc.SubjectContains {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
			Key:   "Subject",
			Value: substring,
		})
	}

	if sc.SubjectExcludes != "" {
		criteria.Not = append(criteria.Not, imap.SearchCriteria{
			Header: []imap.SearchCriteriaHeaderField{{
				Key:   "Subject",
				Value: sc.SubjectExcludes,
			}},
		})
	}

	sentOn := sc.SentOn
	if sc.SentToday {
		sentOn = now
	}
	if !sentOn.IsZero() {
		// SENTON has no direct field; bound the sent date to one day.
		day := time.Date(
			sentOn.Year(), sentOn.Month(), sentOn.Day(),
			0, 0, 0, 0, sentOn.Location(),
		)
		criteria.SentSince = day
		criteria.SentBefore = day.AddDate(0, 0, 1)
	}

	return criteria, nil
}

// Search returns the UIDs of messages matching the criteria, most
// recent first.
func (a *Agent) Search(
	ctx context.Context, sc SearchCriteria,
) ([]uint32, error) {
	criteria, err := sc.imapCriteria(time.Now())
	if err != nil {
		return nil, err
	}

	client, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	raw := searchData.AllUIDs()
	uids := make([]uint32, len(raw))
	for i, uid := range raw {
		uids[i] = uint32(uid)
	}

	// Higher UIDs are newer; callers want the most recent email first.
	sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })

	a.log.WithFields(logrus.Fields{
		"from":    sc.From,
		"matches": len(uids),
	}).Debug("mailbox search complete")

	return uids, nil
}
