package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/co-za/tenders-ingest/internal/parse"
)

// sanralProse is the small façade over the free-text prose extractors used
// by the SANRAL normalizer, kept separate and independently testable.

var (
	closingLineRe    = regexp.MustCompile(`(?i)CLOSING (DATE|TIME)`)
	briefingLineRe   = regexp.MustCompile(`(?i)BRIEFING`)
	issueLineRe      = regexp.MustCompile(`(?i)ISSUE DATE`)
	completionLineRe = regexp.MustCompile(`(?i)COMPLETION AND DELIVERY`)
	addressLineRe    = regexp.MustCompile(`(?i)at the offices of|delivered to|address|offices of`)
	saPhoneRe        = regexp.MustCompile(`(?:\+27[\s.\-]?|0)\d{1,2}[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	fileExtURLRe     = regexp.MustCompile(`(?i)https?://\S+\.(pdf|zip|docx?|xlsx?)(\?\S*)?`)
	fileShareHostRe  = regexp.MustCompile(`(?i)https?://\S*(drive\.google\.com|dropbox\.com|onedrive\.live\.com)\S*`)
)

func findLine(lines []string, re *regexp.Regexp) (string, int, bool) {
	for i, l := range lines {
		if re.MatchString(l) {
			return l, i, true
		}
	}
	return "", -1, false
}

func findLineFunc(lines []string, match func(string) bool) (string, int, bool) {
	for i, l := range lines {
		if match(l) {
			return l, i, true
		}
	}
	return "", -1, false
}

// extractClosingAt derives closing_at from the first CLOSING DATE|TIME
// line: a time range on that line wins (end of range), else the line's
// own date/time.
func extractClosingAt(lines []string, loc *time.Location) *time.Time {
	line, _, ok := findLine(lines, closingLineRe)
	if !ok {
		return nil
	}
	d := parse.ExtractTextualDateTime(line, loc)
	if d == nil {
		d = parse.ExtractNumericDateTime(line, loc)
	}
	if d == nil {
		return nil
	}
	if tr := parse.ExtractTimeRange(line, *d, loc); tr != nil {
		return &tr.End
	}
	return d
}

// extractBriefingAt derives briefing_at from the first BRIEFING line: a
// time range takes its start, and a "Briefing window ends at HH:MM" note
// is returned for append to briefing_details.
func extractBriefingAt(lines []string, loc *time.Location) (*time.Time, string) {
	line, _, ok := findLine(lines, briefingLineRe)
	if !ok {
		return nil, ""
	}
	d := parse.ExtractTextualDateTime(line, loc)
	if d == nil {
		d = parse.ExtractNumericDateTime(line, loc)
	}
	if d == nil {
		return nil, ""
	}
	if tr := parse.ExtractTimeRange(line, *d, loc); tr != nil {
		note := "Briefing window ends at " + tr.End.Format("15:04")
		return &tr.Start, note
	}
	return d, ""
}

// extractIssueAt derives issue_at from the first ISSUE DATE line.
func extractIssueAt(lines []string, loc *time.Location) *time.Time {
	line, _, ok := findLine(lines, issueLineRe)
	if !ok {
		return nil
	}
	if d := parse.ExtractTextualDateTime(line, loc); d != nil {
		return d
	}
	return parse.ExtractNumericDateTime(line, loc)
}

// extractBriefingVenue returns the first line matching the venue keyword
// regex, falling back to guessVenueFromLine applied to the BRIEFING line.
func extractBriefingVenue(lines []string) string {
	if line, _, ok := findLineFunc(lines, parse.HasVenueKeyword); ok {
		if v := parse.GuessVenueFromLine(line); v != nil {
			return *v
		}
	}
	if line, _, ok := findLine(lines, briefingLineRe); ok {
		if v := parse.GuessVenueFromLine(line); v != nil {
			return *v
		}
	}
	return ""
}

// extractSubmissionAddress builds the submission/tender-box address: from
// the COMPLETION AND DELIVERY line, the first of the next 10 lines
// matching the address markers, plus up to five following lines, joined
// by ", ".
func extractSubmissionAddress(lines []string) string {
	_, idx, ok := findLine(lines, completionLineRe)
	if !ok {
		return ""
	}

	end := idx + 1 + 10
	if end > len(lines) {
		end = len(lines)
	}
	for i := idx + 1; i < end; i++ {
		if addressLineRe.MatchString(lines[i]) {
			stop := i + 1 + 5
			if stop > len(lines) {
				stop = len(lines)
			}
			parts := make([]string, 0, stop-i)
			for j := i; j < stop; j++ {
				s := parse.SquashWhitespace(lines[j])
				if s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ", ")
		}
	}
	return ""
}

// extractSAPhone returns the first South-African-style phone number found
// in s, or "".
func extractSAPhone(s string) string {
	return saPhoneRe.FindString(s)
}

// extractSanralDocumentURLs returns URLs in s whose path ends in a document
// extension, or that point at a known file-share host.
func extractSanralDocumentURLs(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range fileExtURLRe.FindAllString(s, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, m := range fileShareHostRe.FindAllString(s, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// isTruncatedDescription reports whether short looks like a cut-off
// summary that should be replaced by the fuller prose: ends with "…",
// contains a dangling "&n", or is shorter than 80 chars.
func isTruncatedDescription(short string) bool {
	s := strings.TrimSpace(short)
	if s == "" {
		return true
	}
	if strings.HasSuffix(s, "…") || strings.Contains(s, "&n") {
		return true
	}
	return len(s) < 80
}
