// Package notify publishes one message per upserted tender, strictly after
// the owning transaction commits.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Message is a publish intent built by the ingest worker once its owning
// row is durably committed.
type Message struct {
	TenderID    int64
	Title       string
	Category    string
	Source      string
	PublishedAt *time.Time
	ClosingAt   *time.Time
	URL         string
	Description string
}

// Publisher sends one notification per Message. Implementations must never
// be called before the caller's transaction has committed.
type Publisher interface {
	Publish(msgs []Message) error
}

// body is the JSON payload shape sent to subscribers.
type body struct {
	TenderID    int64      `json:"tenderId"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at"`
	ClosingAt   *time.Time `json:"closing_at"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
}

// Subject renders "New {category} tender: {title}" truncated to 95 runes.
func Subject(m Message) string {
	category := m.Category
	if category == "" {
		category = "general"
	}
	s := fmt.Sprintf("New %s tender: %s", category, m.Title)
	return truncateRunes(s, 95)
}

// Body renders the JSON notification body, description truncated to 300
// runes.
func Body(m Message) ([]byte, error) {
	b := body{
		TenderID:    m.TenderID,
		Title:       m.Title,
		Category:    m.Category,
		Source:      m.Source,
		PublishedAt: m.PublishedAt,
		ClosingAt:   m.ClosingAt,
		URL:         m.URL,
		Description: truncateRunes(m.Description, 300),
	}
	return json.Marshal(b)
}

// CategoryAttribute computes the message attribute subscribers filter on:
// lowercased(category || source || "general").
func CategoryAttribute(m Message) string {
	v := m.Category
	if v == "" {
		v = m.Source
	}
	if v == "" {
		v = "general"
	}
	return strings.ToLower(v)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
