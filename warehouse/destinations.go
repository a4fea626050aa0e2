package warehouse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownDestination is wrapped when no staging table is mapped for
// a channel.
var ErrUnknownDestination = errors.New("no staging destination for channel")

// destinations enumerates the staging table per social channel. The
// mapping is explicit and validated at call time; an unrecognized
// channel name fails clearly instead of resolving to a missing key.
var destinations = map[string]string{
	"facebook":  "STG_RIVALIQ_FACEBOOK",
	"twitter":   "STG_RIVALIQ_TWITTER",
	"instagram": "STG_RIVALIQ_INSTAGRAM",
	"youtube":   "STG_RIVALIQ_YOUTUBE",
	"tiktok":    "STG_RIVALIQ_TIKTOK",
	"all":       "STG_RIVALIQ_ALL_SOCIAL_POSTS",
}

// DestinationFor maps a social channel to its staging table name.
func DestinationFor(channel string) (string, error) {
	dest, ok := destinations[strings.ToLower(channel)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDestination, channel)
	}
	return dest, nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent rejects destination names that are not plain SQL
// identifiers, keeping interpolated DDL safe.
func validIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid destination table name %q", name)
	}
	return nil
}

// quoteIdent quotes an identifier for use in DDL and queries. Column
// names come from remote CSV headers and may contain arbitrary
// characters; embedded quotes are doubled.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
