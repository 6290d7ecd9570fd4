package parse

import (
	"testing"
	"time"
)

func mustZone(t *testing.T, offset string) *time.Location {
	t.Helper()
	return Zone(offset)
}

func TestZoneFallback(t *testing.T) {
	loc := Zone("bogus")
	_, off := time.Now().In(loc).Zone()
	if off != 2*3600 {
		t.Fatalf("expected fallback +02:00 offset, got %d seconds", off)
	}
}

func TestParseEskomDate(t *testing.T) {
	loc := mustZone(t, "+02:00")
	cases := []struct {
		in   string
		want bool
	}{
		{"2025-Aug-14 13:00:00", true},
		{"not a date", false},
		{"2025-Xxx-14 13:00:00", false},
	}
	for _, c := range cases {
		got := ParseEskomDate(c.in, loc)
		if (got != nil) != c.want {
			t.Errorf("ParseEskomDate(%q) = %v, want present=%v", c.in, got, c.want)
		}
	}

	got := ParseEskomDate("2025-Aug-14 13:00:00", loc)
	if got == nil || got.Hour() != 13 || got.Day() != 14 || got.Month() != time.August {
		t.Fatalf("unexpected parse result: %v", got)
	}
}

func TestParseSanralNumericDate(t *testing.T) {
	loc := mustZone(t, "+02:00")
	got := ParseSanralNumericDate("2025/08/14 10:00", loc)
	if got == nil || got.Year() != 2025 || got.Month() != time.August || got.Minute() != 0 {
		t.Fatalf("unexpected parse result: %v", got)
	}
	if ParseSanralNumericDate("garbage", loc) != nil {
		t.Fatal("expected nil for unparseable input")
	}
}

func TestParseTransnetDate(t *testing.T) {
	loc := mustZone(t, "+02:00")
	cases := []struct {
		in       string
		wantHour int
	}{
		{"8/14/2025 1:00 PM", 13},
		{"8/14/2025 12:00 AM", 0},
		{"8/14/2025 12:00 PM", 12},
	}
	for _, c := range cases {
		got := ParseTransnetDate(c.in, loc)
		if got == nil {
			t.Fatalf("ParseTransnetDate(%q) returned nil", c.in)
		}
		if got.Hour() != c.wantHour {
			t.Errorf("ParseTransnetDate(%q).Hour() = %d, want %d", c.in, got.Hour(), c.wantHour)
		}
	}
}

func TestParseIso(t *testing.T) {
	if ParseIso("") != nil {
		t.Fatal("expected nil for empty string")
	}
	got := ParseIso("2025-08-14T10:00:00Z")
	if got == nil || got.Year() != 2025 {
		t.Fatalf("unexpected parse result: %v", got)
	}
	if ParseIso("2025-08-14") == nil {
		t.Fatal("expected date-only ISO to parse")
	}
}

func TestExtractTextualDateTime(t *testing.T) {
	loc := mustZone(t, "+02:00")
	cases := []struct {
		in   string
		want bool
	}{
		{"Closing date: 14 August 2025 at 13:00", true},
		{"Briefing: 14 August 2025 13:00-14:00", true},
		{"no date here", false},
	}
	for _, c := range cases {
		got := ExtractTextualDateTime(c.in, loc)
		if (got != nil) != c.want {
			t.Errorf("ExtractTextualDateTime(%q) = %v, want present=%v", c.in, got, c.want)
		}
	}
}

func TestExtractTimeRange(t *testing.T) {
	loc := mustZone(t, "+02:00")
	date := time.Date(2025, time.August, 14, 0, 0, 0, 0, loc)
	r := ExtractTimeRange("Briefing 13:00-14:00 at the office", date, loc)
	if r == nil {
		t.Fatal("expected a time range")
	}
	if r.Start.Hour() != 13 || r.End.Hour() != 14 {
		t.Fatalf("unexpected range: %+v", r)
	}
	if ExtractTimeRange("no range here", date, loc) != nil {
		t.Fatal("expected nil for input without a range")
	}
}

func TestExtractEmails(t *testing.T) {
	got := ExtractEmails("contact a@example.com or a@example.com, also b@example.co.za")
	want := []string{"a@example.com", "b@example.co.za"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestExtractUrls(t *testing.T) {
	got := ExtractUrls("see https://example.com/doc.pdf and https://example.com/doc.pdf again")
	if len(got) != 1 || got[0] != "https://example.com/doc.pdf" {
		t.Fatalf("unexpected urls: %v", got)
	}
}

func TestSquashWhitespace(t *testing.T) {
	if got := SquashWhitespace("  a   b\n\tc  "); got != "a b c" {
		t.Fatalf("got %q", got)
	}
	if got := SquashWhitespace("   "); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestCleanHtmlish(t *testing.T) {
	got := CleanHtmlish("a&nbsp;&amp;&nbsp;b")
	if got != "a & b" {
		t.Fatalf("got %q", got)
	}
}

func TestGuessVenueFromLine(t *testing.T) {
	if v := GuessVenueFromLine("Briefing will be held in the Boardroom, Head Office"); v == nil {
		t.Fatal("expected a venue match")
	}
	if v := GuessVenueFromLine("Submissions close at the tender box"); v == nil {
		t.Fatal("expected 'at' prefix match")
	}
	if v := GuessVenueFromLine("nothing relevant"); v != nil {
		t.Fatalf("expected nil, got %v", *v)
	}
}

func TestHasVenueKeyword(t *testing.T) {
	if !HasVenueKeyword("Ground Floor, Main Building") {
		t.Fatal("expected keyword match")
	}
	if HasVenueKeyword("nothing relevant here") {
		t.Fatal("expected no match")
	}
}
