package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
	"github.com/co-za/tenders-ingest/internal/parse"
)

var testLoc = parse.Zone("+02:00")

// Scenario 1: Eskom happy path.
func TestEskomHappyPath(t *testing.T) {
	raw := `[{
		"TenderID": "T-1",
		"enquiryNumber": "E1",
		"scopeDetails": "  scope   text  ",
		"published": "2025-Oct-01 09:00:00",
		"closing": "2025-Nov-15 12:00:00",
		"readMore": "https://example.com/tender/X",
		"downloadLink": "https://example.com/DownloadAll?id=X"
	}]`

	n, ok := For(model.SourceEskom)
	if !ok {
		t.Fatal("expected eskom normalizer to be registered")
	}
	items, err := n.Normalize([]byte(raw), testLoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Tender.ExternalID != "T-1" {
		t.Errorf("ExternalID = %q, want T-1", item.Tender.ExternalID)
	}
	if item.Tender.Description != "scope text" {
		t.Errorf("Description = %q, want %q", item.Tender.Description, "scope text")
	}
	wantPublished := time.Date(2025, time.October, 1, 9, 0, 0, 0, testLoc)
	if item.Tender.PublishedAt == nil || !item.Tender.PublishedAt.Equal(wantPublished) {
		t.Errorf("PublishedAt = %v, want %v", item.Tender.PublishedAt, wantPublished)
	}
	wantClosing := time.Date(2025, time.November, 15, 12, 0, 0, 0, testLoc)
	if item.Tender.ClosingAt == nil || !item.Tender.ClosingAt.Equal(wantClosing) {
		t.Errorf("ClosingAt = %v, want %v", item.Tender.ClosingAt, wantClosing)
	}
	if len(item.Documents) != 1 || item.Documents[0].URL != "https://example.com/DownloadAll?id=X" {
		t.Errorf("Documents = %+v", item.Documents)
	}
	if len(item.Contacts) != 0 {
		t.Errorf("expected zero contacts, got %+v", item.Contacts)
	}
}

// Scenario 2: SANRAL prose extraction.
func TestSanralProseExtraction(t *testing.T) {
	raw := `[{
		"tenderNumber": "SANRAL-1",
		"shortDescription": "Routine road maintenance contract for the N1 corridor over a three year period",
		"category": "Roads",
		"buyer": "SANRAL",
		"status": "open",
		"details": {
			"paragraphs": [
				"CLOSING DATE: 20 August 2025 12:00",
				"BRIEFING SESSION: 14 August 2025 13:00-14:00 at Boardroom B, 12 Main Road",
				"Queries: jane@example.co.za, 011 555 1234"
			]
		}
	}]`

	n, ok := For(model.SourceSANRAL)
	if !ok {
		t.Fatal("expected sanral normalizer to be registered")
	}
	items, err := n.Normalize([]byte(raw), testLoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	wantClosing := time.Date(2025, time.August, 20, 12, 0, 0, 0, testLoc)
	if item.Tender.ClosingAt == nil || !item.Tender.ClosingAt.Equal(wantClosing) {
		t.Errorf("ClosingAt = %v, want %v", item.Tender.ClosingAt, wantClosing)
	}
	wantBriefing := time.Date(2025, time.August, 14, 13, 0, 0, 0, testLoc)
	if item.Tender.BriefingAt == nil || !item.Tender.BriefingAt.Equal(wantBriefing) {
		t.Errorf("BriefingAt = %v, want %v", item.Tender.BriefingAt, wantBriefing)
	}
	if !strings.Contains(item.Tender.BriefingVenue, "Boardroom B") {
		t.Errorf("BriefingVenue = %q, want it to contain Boardroom B", item.Tender.BriefingVenue)
	}
	if !strings.Contains(item.Tender.BriefingDetails, "Briefing window ends at 14:00") {
		t.Errorf("BriefingDetails = %q, want it to contain the window-end note", item.Tender.BriefingDetails)
	}
	if len(item.Contacts) != 1 {
		t.Fatalf("expected 1 contact, got %+v", item.Contacts)
	}
	if item.Contacts[0].Email != "jane@example.co.za" {
		t.Errorf("contact email = %q", item.Contacts[0].Email)
	}
	if item.Contacts[0].Phone != "011 555 1234" {
		t.Errorf("contact phone = %q", item.Contacts[0].Phone)
	}
}

// Scenario 3: Transnet AM/PM.
func TestTransnetAMPM(t *testing.T) {
	raw := `[{
		"tenderNumber": "TNT-1",
		"tenderDescription": "Signal upgrade works",
		"closingDate": "12/12/2025 4:00:00 PM"
	}]`

	n, ok := For(model.SourceTransnet)
	if !ok {
		t.Fatal("expected transnet normalizer to be registered")
	}
	items, err := n.Normalize([]byte(raw), testLoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	want := time.Date(2025, time.December, 12, 16, 0, 0, 0, testLoc)
	got := items[0].Tender.ClosingAt
	if got == nil || !got.Equal(want) {
		t.Errorf("ClosingAt = %v, want %v", got, want)
	}
}

// Scenario 4: eTenders empty page.
func TestETendersEmptyPage(t *testing.T) {
	raw := `{"data":[]}`

	n, ok := For(model.SourceETenders)
	if !ok {
		t.Fatal("expected etenders normalizer to be registered")
	}
	items, err := n.Normalize([]byte(raw), testLoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected zero items, got %d", len(items))
	}
}

// Property 3 (hash stability): the same input hashes identically across
// repeated calls.
func TestHashStability(t *testing.T) {
	raw := `[{"TenderID":"T-9","scopeDetails":"stable","published":"2025-Oct-01 09:00:00"}]`
	n, _ := For(model.SourceEskom)

	first, err := n.Normalize([]byte(raw), testLoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := n.Normalize([]byte(raw), testLoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if first[0].Tender.Hash != second[0].Tender.Hash {
		t.Fatalf("hash not stable: %q != %q", first[0].Tender.Hash, second[0].Tender.Hash)
	}
	if first[0].Tender.Hash == "" {
		t.Fatal("expected a non-empty hash")
	}
}

func TestMissingExternalIDSkipped(t *testing.T) {
	raw := `[{"TenderID":"","scopeDetails":"no id"}, {"TenderID":"T-OK","scopeDetails":"has id"}]`
	n, _ := For(model.SourceEskom)
	items, err := n.Normalize([]byte(raw), testLoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(items) != 1 || items[0].Tender.ExternalID != "T-OK" {
		t.Fatalf("expected only the record with an external id, got %+v", items)
	}
}

func TestForUnknownSource(t *testing.T) {
	if _, ok := For("unknown"); ok {
		t.Fatal("expected unknown source to be unregistered")
	}
}
