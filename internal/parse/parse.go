// Package parse is a small library of pure string -> value extractors used
// by the source normalizers (internal/normalize) to pull dates, time
// ranges, contacts and venues out of free-text portal payloads. Every
// function here returns a zero value (nil, "", or false) for unrecognized
// input -- none of them panic or return an error.
package parse

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultZoneOffset is applied to any input timestamp lacking one.
const DefaultZoneOffset = "+02:00"

// Zone returns a fixed time.Location for the given "+HH:MM"/"-HH:MM"
// offset string, falling back to DefaultZoneOffset on a malformed value.
func Zone(offset string) *time.Location {
	secs, ok := parseOffsetSeconds(offset)
	if !ok {
		secs, _ = parseOffsetSeconds(DefaultZoneOffset)
	}
	return time.FixedZone(offset, secs)
}

func parseOffsetSeconds(offset string) (int, bool) {
	if len(offset) != 6 || (offset[0] != '+' && offset[0] != '-') {
		return 0, false
	}
	h, err1 := strconv.Atoi(offset[1:3])
	m, err2 := strconv.Atoi(offset[4:6])
	if err1 != nil || err2 != nil || offset[3] != ':' {
		return 0, false
	}
	secs := (h*3600 + m*60)
	if offset[0] == '-' {
		secs = -secs
	}
	return secs, true
}

var eskomMonths = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

var eskomDateRe = regexp.MustCompile(`^(\d{4})-([A-Za-z]{3})-(\d{2}) (\d{2}):(\d{2}):(\d{2})$`)

// ParseEskomDate parses "YYYY-Mon-DD HH:MM:SS" (three-letter English
// month), returning the absolute instant in the given zone, or nil.
func ParseEskomDate(s string, loc *time.Location) *time.Time {
	m := eskomDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}
	mon, ok := eskomMonths[m[2]]
	if !ok {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	min, _ := strconv.Atoi(m[5])
	sec, _ := strconv.Atoi(m[6])
	t := time.Date(year, mon, day, hour, min, sec, 0, loc)
	return &t
}

var sanralDateRe = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2}) (\d{2}):(\d{2})(?::(\d{2}))?$`)

// ParseSanralNumericDate parses "YYYY/MM/DD HH:MM[:SS]".
func ParseSanralNumericDate(s string, loc *time.Location) *time.Time {
	m := sanralDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	min, _ := strconv.Atoi(m[5])
	sec := 0
	if m[6] != "" {
		sec, _ = strconv.Atoi(m[6])
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, loc)
	return &t
}

var transnetDateRe = regexp.MustCompile(`(?i)^(\d{1,2})/(\d{1,2})/(\d{4}) (\d{1,2}):(\d{2})(?::(\d{2}))? ?(AM|PM)$`)

// ParseTransnetDate parses "M/D/YYYY H:MM[:SS] AM|PM", case-insensitive
// meridiem, single-digit day/month tolerated.
func ParseTransnetDate(s string, loc *time.Location) *time.Time {
	m := transnetDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	min, _ := strconv.Atoi(m[5])
	sec := 0
	if m[6] != "" {
		sec, _ = strconv.Atoi(m[6])
	}
	meridiem := strings.ToUpper(m[7])
	switch {
	case meridiem == "PM" && hour != 12:
		hour += 12
	case meridiem == "AM" && hour == 12:
		hour = 0
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, loc)
	return &t
}

// ParseIso parses an ISO-8601 instant (as used by OCDS data). An input
// without an offset is read at DefaultZoneOffset; ParseIso takes no
// *time.Location, so a configured TZ_OFFSET does not apply to it.
func ParseIso(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	loc := Zone(DefaultZoneOffset)
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

var textualMonths = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var textualDateTimeRe = regexp.MustCompile(
	`(?i)(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})(?:\s*[@Hh.]?\s*(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?)?`)

// ExtractTextualDateTime finds "D Month YYYY [HH[:MM] [AM|PM]]" anywhere in
// s, with optional separators @, H, h, "."; missing time defaults to 00:00.
func ExtractTextualDateTime(s string, loc *time.Location) *time.Time {
	m := textualDateTimeRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	mon, ok := textualMonths[strings.ToLower(m[2])]
	if !ok {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])

	hour, min := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		if m[5] != "" {
			min, _ = strconv.Atoi(m[5])
		}
		switch strings.ToUpper(m[6]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
	}
	t := time.Date(year, mon, day, hour, min, 0, 0, loc)
	return &t
}

var numericDateTimeRe = regexp.MustCompile(
	`(\d{4})[/\-.](\d{2})[/\-.](\d{2})(?:[ T](\d{2}):(\d{2}))?`)

// ExtractNumericDateTime finds "YYYY[/-.]MM[/-.]DD[ T HH:MM]?" anywhere in s.
func ExtractNumericDateTime(s string, loc *time.Location) *time.Time {
	m := numericDateTimeRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, min := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		min, _ = strconv.Atoi(m[5])
	}
	t := time.Date(year, time.Month(month), day, hour, min, 0, 0, loc)
	return &t
}

// TimeRange is the {start,end} pair returned by ExtractTimeRange.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

var timeRangeRe = regexp.MustCompile(
	`(\d{1,2})[:.hH](\d{2})\s*[\x{2013}-]\s*(\d{1,2})[:.hH](\d{2})`)

// ExtractTimeRange finds "HH[:.hH]MM - HH[:.hH]MM" (ASCII hyphen or
// en-dash) on the given date. Returns nil if no range is present.
func ExtractTimeRange(s string, date time.Time, loc *time.Location) *TimeRange {
	m := timeRangeRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	sh, _ := strconv.Atoi(m[1])
	sm, _ := strconv.Atoi(m[2])
	eh, _ := strconv.Atoi(m[3])
	em, _ := strconv.Atoi(m[4])
	y, mo, d := date.Date()
	return &TimeRange{
		Start: time.Date(y, mo, d, sh, sm, 0, 0, loc),
		End:   time.Date(y, mo, d, eh, em, 0, 0, loc),
	}
}

var emailRe = regexp.MustCompile(`(?i)[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}`)

// ExtractEmails returns the de-duplicated, order-preserved set of emails in s.
func ExtractEmails(s string) []string {
	return dedup(emailRe.FindAllString(s, -1))
}

var urlRe = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)

// ExtractUrls returns the de-duplicated, order-preserved set of URLs in s.
func ExtractUrls(s string) []string {
	return dedup(urlRe.FindAllString(s, -1))
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// SquashWhitespace collapses runs of whitespace to a single space and
// trims the ends; an all-whitespace input becomes "".
func SquashWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

var nbspRe = regexp.MustCompile(`&nbsp;|\x{00A0}`)

// CleanHtmlish decodes common HTML entities (&nbsp; &amp; &lt; &gt;) and
// non-breaking spaces, then squashes whitespace.
func CleanHtmlish(s string) string {
	s = nbspRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return SquashWhitespace(s)
}

var venueKeywordRe = regexp.MustCompile(`(?i)boardroom|building|house|hall|room|centre|center|street|road|offices? of`)
var atPrefixRe = regexp.MustCompile(`(?:^|\s)at ([^.]{5,})`)

// HasVenueKeyword reports whether s contains one of the venue keywords
// GuessVenueFromLine matches on.
func HasVenueKeyword(s string) bool {
	return venueKeywordRe.MatchString(s)
}

// GuessVenueFromLine returns the line verbatim if it contains any of the
// venue keywords; otherwise any text following a lowercase "at " prefix of
// length >= 5; otherwise nil.
func GuessVenueFromLine(s string) *string {
	if venueKeywordRe.MatchString(s) {
		v := strings.TrimSpace(s)
		return &v
	}
	if m := atPrefixRe.FindStringSubmatch(s); m != nil {
		v := strings.TrimSpace(m[1])
		if len(v) >= 5 {
			return &v
		}
	}
	return nil
}
