package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// hashFields is the canonical JSON subset hashed for content identity:
// identity, title, description, location, key timestamps (ISO-8601 UTC or
// null) and source-specific differentiators, passed in by each normalizer.
type hashFields struct {
	SourceName  string  `json:"source"`
	ExternalID  string  `json:"external_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	PublishedAt *string `json:"published_at"`
	ClosingAt   *string `json:"closing_at"`
	BriefingAt  *string `json:"briefing_at"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func isoOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// computeHash hex-encodes the SHA-256 of the canonical JSON encoding of the
// given fields. json.Marshal on a struct with fixed field order is stable
// across runs and platforms.
func computeHash(source, externalID, title, description, location string, publishedAt, closingAt, briefingAt *time.Time, extra map[string]string) (string, error) {
	f := hashFields{
		SourceName:  source,
		ExternalID:  externalID,
		Title:       title,
		Description: description,
		Location:    location,
		PublishedAt: isoOrNil(publishedAt),
		ClosingAt:   isoOrNil(closingAt),
		BriefingAt:  isoOrNil(briefingAt),
		Extra:       extra,
	}
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
