package mailbox

import (
	"errors"
	"fmt"
)

// ErrConflictingDates is returned when a search sets both SentOn and
// SentToday.
var ErrConflictingDates = errors.New(
	"cannot use both SentOn and SentToday in the same search",
)

// ErrNoURL is wrapped when a body contains no matching URL.
var ErrNoURL = errors.New("no URL found in message body")

// ErrMultipleURLs is wrapped when a body contains more than one
// matching URL and a single one was required.
var ErrMultipleURLs = errors.New("more than one URL found in message body")

// NoAttachmentError indicates a message carried no tabular attachment.
type NoAttachmentError struct {
	UID uint32
}

func (e *NoAttachmentError) Error() string {
	return fmt.Sprintf("message %d has no CSV or Excel attachment", e.UID)
}

// UnsupportedAttachmentError indicates the only tabular attachments
// found are in a format the agent cannot parse (Excel workbooks).
type UnsupportedAttachmentError struct {
	Filename string
}

func (e *UnsupportedAttachmentError) Error() string {
	return fmt.Sprintf(
		"attachment %q is not parseable; only CSV attachments are supported",
		e.Filename,
	)
}
