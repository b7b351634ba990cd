package biz

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/stagewave/catalog-sync/internal/pkg/errors"
)

// legacyHostPrefixes are storage locations that predate the current
// deployment. Records written before the migration still carry absolute
// URLs under these hosts.
var legacyHostPrefixes = []string{
	"http://localhost:4000",
	"https://files.stagewave.io",
}

var folderTokenPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// ExtractFolderToken returns the UUID embedded in an upload path that
// identifies the processing batch which produced the asset and its
// derived siblings. Returns "" when the path carries no valid token.
func ExtractFolderToken(filePath string) string {
	token := folderTokenPattern.FindString(filePath)
	if token == "" {
		return ""
	}
	if _, err := uuid.Parse(token); err != nil {
		return ""
	}
	return token
}

// MatchQuery is the single implementation of the reference matching
// policy. It is built once per request from the incoming file path and
// evaluated in memory against stored reference values.
//
// The full policy (Matches) widens in five steps:
//  1. exact equality
//  2. equality against "/"+path
//  3. equality against a legacy host prefix plus the rooted path
//  4. case-insensitive containment of the path in the stored value
//  5. case-insensitive containment of the folder token alone
//
// MatchesStrict stops after step 3. Destructive operations use the
// strict form only; a folder-token hit must never soft-delete a record
// the caller did not name.
type MatchQuery struct {
	path        string
	rooted      string
	hostExact   []string
	lowerPath   string
	folderToken string
}

// NewMatchQuery validates and normalizes a candidate file path. A blank
// path is rejected before any matching structure is built: an empty
// containment term would match every record in the catalog.
func NewMatchQuery(filePath string) (*MatchQuery, error) {
	trimmed := strings.TrimSpace(filePath)
	if trimmed == "" {
		return nil, apperrors.New(apperrors.ErrEmptyFilePath)
	}

	rooted := trimmed
	if !strings.HasPrefix(rooted, "/") {
		rooted = "/" + rooted
	}

	hostExact := make([]string, 0, len(legacyHostPrefixes))
	for _, host := range legacyHostPrefixes {
		hostExact = append(hostExact, host+rooted)
	}

	return &MatchQuery{
		path:        trimmed,
		rooted:      rooted,
		hostExact:   hostExact,
		lowerPath:   strings.ToLower(trimmed),
		folderToken: strings.ToLower(ExtractFolderToken(trimmed)),
	}, nil
}

// Path returns the normalized (trimmed) input path.
func (q *MatchQuery) Path() string { return q.path }

// FolderToken returns the extracted folder token, or "" if none.
func (q *MatchQuery) FolderToken() string { return q.folderToken }

// MatchesStrict reports whether stored equals the path in exact, rooted
// or legacy-host form.
func (q *MatchQuery) MatchesStrict(stored string) bool {
	if stored == "" {
		return false
	}
	if stored == q.path || stored == q.rooted {
		return true
	}
	for _, candidate := range q.hostExact {
		if stored == candidate {
			return true
		}
	}
	return false
}

// Matches applies the full five-rule policy.
func (q *MatchQuery) Matches(stored string) bool {
	if q.MatchesStrict(stored) {
		return true
	}
	lowerStored := strings.ToLower(stored)
	if strings.Contains(lowerStored, q.lowerPath) {
		return true
	}
	if q.folderToken != "" && strings.Contains(lowerStored, q.folderToken) {
		return true
	}
	return false
}

// MatchesAny applies the full policy across a set of reference fields.
func (q *MatchQuery) MatchesAny(stored []string) bool {
	for _, s := range stored {
		if q.Matches(s) {
			return true
		}
	}
	return false
}

// MatchesAnyStrict applies the strict policy across a set of reference
// fields.
func (q *MatchQuery) MatchesAnyStrict(stored []string) bool {
	for _, s := range stored {
		if q.MatchesStrict(s) {
			return true
		}
	}
	return false
}
