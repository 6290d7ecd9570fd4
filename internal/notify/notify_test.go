package notify

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSubjectTruncation(t *testing.T) {
	m := Message{Category: "roads", Title: strings.Repeat("x", 200)}
	s := Subject(m)
	if len([]rune(s)) != 95 {
		t.Fatalf("expected subject truncated to 95 runes, got %d", len([]rune(s)))
	}
	if !strings.HasPrefix(s, "New roads tender: ") {
		t.Fatalf("unexpected subject prefix: %q", s)
	}
}

func TestSubjectDefaultCategory(t *testing.T) {
	m := Message{Title: "Road works"}
	s := Subject(m)
	if !strings.HasPrefix(s, "New general tender:") {
		t.Fatalf("expected default category 'general', got %q", s)
	}
}

func TestBodyTruncatesDescription(t *testing.T) {
	m := Message{TenderID: 1, Description: strings.Repeat("y", 500)}
	b, err := Body(m)
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	var decoded body
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len([]rune(decoded.Description)) != 300 {
		t.Fatalf("expected description truncated to 300 runes, got %d", len([]rune(decoded.Description)))
	}
}

func TestCategoryAttribute(t *testing.T) {
	cases := []struct {
		m    Message
		want string
	}{
		{Message{Category: "Roads"}, "roads"},
		{Message{Source: "eskom"}, "eskom"},
		{Message{}, "general"},
	}
	for _, c := range cases {
		if got := CategoryAttribute(c.m); got != c.want {
			t.Errorf("CategoryAttribute(%+v) = %q, want %q", c.m, got, c.want)
		}
	}
}
