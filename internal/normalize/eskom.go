package normalize

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
	"github.com/co-za/tenders-ingest/internal/parse"
)

// eskomRaw is the flat record shape deposited by the Eskom scraper.
type eskomRaw struct {
	TenderID       string `json:"TenderID"`
	EnquiryNumber  string `json:"enquiryNumber"`
	Title          string `json:"title"`
	ScopeDetails   string `json:"scopeDetails"`
	Category       string `json:"dt"`
	TenderBoxAddr  string `json:"tenderBoxAddress"`
	Buyer          string `json:"buyer"`
	Status         string `json:"status"`
	Published      string `json:"published"`
	Closing        string `json:"closing"`
	ReadMore       string `json:"readMore"`
	DownloadLink   string `json:"downloadLink"`
	BriefingDate   string `json:"briefingDate"`
	BriefingVenue  string `json:"briefingVenue"`
	BriefingCompulsory bool `json:"briefingCompulsory"`
}

type eskomNormalizer struct{}

func (eskomNormalizer) Normalize(raw json.RawMessage, loc *time.Location) ([]model.Item, error) {
	var records []eskomRaw
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding eskom payload: %w", err)
	}

	var items []model.Item
	for _, r := range records {
		externalID := parse.SquashWhitespace(r.TenderID)
		if externalID == "" {
			continue
		}

		t := model.Tender{
			ExternalID:       externalID,
			SourceTenderID:   parse.SquashWhitespace(r.EnquiryNumber),
			Title:            parse.SquashWhitespace(r.Title),
			Description:      parse.CleanHtmlish(r.ScopeDetails),
			Category:         parse.SquashWhitespace(r.Category),
			Location:         parse.SquashWhitespace(r.TenderBoxAddr),
			Buyer:            parse.SquashWhitespace(r.Buyer),
			Status:           parse.SquashWhitespace(r.Status),
			TenderBoxAddress: parse.SquashWhitespace(r.TenderBoxAddr),
			URL:              r.ReadMore,
			PublishedAt:      parse.ParseEskomDate(r.Published, loc),
			ClosingAt:        parse.ParseEskomDate(r.Closing, loc),
			BriefingAt:       parse.ParseEskomDate(r.BriefingDate, loc),
			BriefingVenue:    parse.SquashWhitespace(r.BriefingVenue),
			BriefingCompulsory: r.BriefingCompulsory,
		}

		hash, err := computeHash(model.SourceEskom, t.ExternalID, t.Title, t.Description, t.Location,
			t.PublishedAt, t.ClosingAt, t.BriefingAt, nil)
		if err != nil {
			return nil, fmt.Errorf("hashing eskom tender %q: %w", externalID, err)
		}
		t.Hash = hash

		var docs []model.Document
		if r.DownloadLink != "" {
			docs = append(docs, model.Document{URL: r.DownloadLink})
		}

		items = append(items, model.Item{Tender: t, Documents: docs})
	}
	return items, nil
}
