package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
	"github.com/co-za/tenders-ingest/internal/parse"
)

type sanralDetails struct {
	RawText    string   `json:"rawText"`
	Paragraphs []string `json:"paragraphs"`
}

type sanralRaw struct {
	TenderNumber     string         `json:"tenderNumber"`
	ShortDescription string         `json:"shortDescription"`
	Category         string         `json:"category"`
	Buyer            string         `json:"buyer"`
	Status           string         `json:"status"`
	QueriesTo        string         `json:"queriesTo"`
	Details          *sanralDetails `json:"details"`
}

type sanralNormalizer struct{}

func (sanralNormalizer) Normalize(raw json.RawMessage, loc *time.Location) ([]model.Item, error) {
	var records []sanralRaw
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding sanral payload: %w", err)
	}

	var items []model.Item
	for _, r := range records {
		externalID := parse.SquashWhitespace(r.TenderNumber)
		if externalID == "" {
			continue
		}

		lines, fullText := sanralLines(r.Details)

		issueAt := extractIssueAt(lines, loc)
		briefingAt, briefingNote := extractBriefingAt(lines, loc)
		closingAt := extractClosingAt(lines, loc)
		briefingVenue := extractBriefingVenue(lines)
		submissionAddress := extractSubmissionAddress(lines)

		briefingDetails := ""
		if _, bIdx, ok := findLine(lines, briefingLineRe); ok {
			briefingDetails = parse.SquashWhitespace(lines[bIdx])
		}
		if briefingNote != "" {
			if briefingDetails != "" {
				briefingDetails += "; " + briefingNote
			} else {
				briefingDetails = briefingNote
			}
		}

		description := parse.CleanHtmlish(r.ShortDescription)
		if isTruncatedDescription(r.ShortDescription) && fullText != "" {
			description = parse.CleanHtmlish(fullText)
		}

		t := model.Tender{
			ExternalID:       externalID,
			Title:            parse.SquashWhitespace(r.ShortDescription),
			Description:      description,
			Category:         parse.SquashWhitespace(r.Category),
			Buyer:            parse.SquashWhitespace(r.Buyer),
			Status:           parse.SquashWhitespace(r.Status),
			TenderBoxAddress: submissionAddress,
			PublishedAt:      issueAt,
			BriefingAt:       briefingAt,
			ClosingAt:        closingAt,
			BriefingVenue:    briefingVenue,
			BriefingDetails:  briefingDetails,
		}

		hash, err := computeHash(model.SourceSANRAL, t.ExternalID, t.Title, t.Description, t.Location,
			t.PublishedAt, t.ClosingAt, t.BriefingAt, map[string]string{"submission_address": submissionAddress})
		if err != nil {
			return nil, fmt.Errorf("hashing sanral tender %q: %w", externalID, err)
		}
		t.Hash = hash

		combinedText := r.QueriesTo + "\n" + fullText
		emails := parse.ExtractEmails(combinedText)
		phone := extractSAPhone(combinedText)

		var contacts []model.Contact
		for _, e := range emails {
			contacts = append(contacts, model.Contact{Email: e, Phone: phone})
		}

		var docs []model.Document
		for _, u := range extractSanralDocumentURLs(fullText) {
			docs = append(docs, model.Document{URL: u})
		}

		items = append(items, model.Item{Tender: t, Documents: docs, Contacts: contacts})
	}
	return items, nil
}

// sanralLines returns the prose as both a line slice (paragraphs preferred
// over a raw-text split) and the joined full text used for document/email
// extraction and the "full prose" description fallback.
func sanralLines(d *sanralDetails) ([]string, string) {
	if d == nil {
		return nil, ""
	}
	var lines []string
	if len(d.Paragraphs) > 0 {
		lines = d.Paragraphs
	} else if d.RawText != "" {
		lines = strings.Split(d.RawText, "\n")
	}
	return lines, strings.Join(lines, "\n")
}
