package ingest

import (
	"testing"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
)

func TestSourceForKey(t *testing.T) {
	cases := []struct {
		key    string
		source string
		ok     bool
	}{
		{"eskom/batch-1.json", model.SourceEskom, true},
		{"sanral/batch-1.json", model.SourceSANRAL, true},
		{"transnet/batch-1.json", model.SourceTransnet, true},
		{"etenders/etenders-p0001-123.json", model.SourceETenders, true},
		{"unknown/batch.json", "", false},
	}
	for _, c := range cases {
		got, ok := sourceForKey(c.key)
		if ok != c.ok || got != c.source {
			t.Errorf("sourceForKey(%q) = (%q, %v), want (%q, %v)", c.key, got, ok, c.source, c.ok)
		}
	}
}

func TestParseEnvelope(t *testing.T) {
	body := []byte(`{"Records":[{"s3":{"bucket":{"name":"tenders"},"object":{"key":"eskom/1.json"}}}]}`)
	notifications, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Bucket != "tenders" || notifications[0].Key != "eskom/1.json" {
		t.Fatalf("unexpected notification: %+v", notifications[0])
	}
}

func TestParseEnvelopeMalformed(t *testing.T) {
	if _, err := ParseEnvelope([]byte("not json")); err == nil {
		t.Fatal("expected an error for malformed envelope")
	}
}

func TestParseEnvelopeEmptyRecords(t *testing.T) {
	notifications, err := ParseEnvelope([]byte(`{"Records":[]}`))
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if len(notifications) != 0 {
		t.Fatalf("expected zero notifications, got %d", len(notifications))
	}
}

func TestLooksLikeJSONValue(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`{"a":1}`, true},
		{`[1,2,3]`, true},
		{"   [1]", true},
		{"not json", false},
		{"", false},
	}
	for _, c := range cases {
		if got := looksLikeJSONValue([]byte(c.in)); got != c.want {
			t.Errorf("looksLikeJSONValue(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestBuildMessage(t *testing.T) {
	closing := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	item := model.Item{Tender: model.Tender{
		Title:     "Road works",
		Category:  "roads",
		ClosingAt: &closing,
		URL:       "https://example.com/t/1",
	}}
	msg := buildMessage(item, 42, model.SourceEskom)
	if msg.TenderID != 42 || msg.Title != "Road works" || msg.Source != model.SourceEskom {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.ClosingAt == nil || !msg.ClosingAt.Equal(closing) {
		t.Fatalf("unexpected ClosingAt: %v", msg.ClosingAt)
	}
}
