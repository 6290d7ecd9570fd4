package normalize

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
	"github.com/co-za/tenders-ingest/internal/parse"
)

type transnetDocument struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

type transnetDetails struct {
	Description       string             `json:"description"`
	TenderCategory    string             `json:"tenderCategory"`
	LocationOfService string             `json:"locationOfService"`
	Institution       string             `json:"institution"`
	Documents         []transnetDocument `json:"documents"`
}

type transnetRaw struct {
	TenderNumber      string           `json:"tenderNumber"`
	TenderDescription string           `json:"tenderDescription"`
	TenderCategory    string           `json:"tenderCategory"`
	LocationOfService string           `json:"locationOfService"`
	Institution       string           `json:"institution"`
	ProcurementMethod string           `json:"procurementMethod"`
	Status            string           `json:"status"`
	PublishedDate     string           `json:"publishedDate"`
	ClosingDate       string           `json:"closingDate"`
	BriefingDate      string           `json:"briefingDate"`
	ContactPerson     string           `json:"contactPerson"`
	ContactEmail      string           `json:"contactEmail"`
	Details           *transnetDetails `json:"details"`
}

type transnetNormalizer struct{}

func (transnetNormalizer) Normalize(raw json.RawMessage, loc *time.Location) ([]model.Item, error) {
	var records []transnetRaw
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding transnet payload: %w", err)
	}

	var items []model.Item
	for _, r := range records {
		externalID := parse.SquashWhitespace(r.TenderNumber)
		if externalID == "" {
			continue
		}

		description := r.TenderDescription
		category := r.TenderCategory
		location := r.LocationOfService
		institution := r.Institution
		var docs []model.Document
		if r.Details != nil {
			if r.Details.Description != "" {
				description = r.Details.Description
			}
			if r.Details.TenderCategory != "" {
				category = r.Details.TenderCategory
			}
			if r.Details.LocationOfService != "" {
				location = r.Details.LocationOfService
			}
			if r.Details.Institution != "" {
				institution = r.Details.Institution
			}
			for _, d := range r.Details.Documents {
				docs = append(docs, model.Document{
					URL:      d.URL,
					Name:     d.Name,
					MimeType: d.MimeType,
				})
			}
		}

		t := model.Tender{
			ExternalID:        externalID,
			Title:             parse.SquashWhitespace(r.TenderDescription),
			Description:       parse.CleanHtmlish(description),
			Category:          parse.SquashWhitespace(category),
			Location:          parse.SquashWhitespace(location),
			Buyer:             parse.SquashWhitespace(institution),
			ProcurementMethod: parse.SquashWhitespace(r.ProcurementMethod),
			Status:            parse.SquashWhitespace(r.Status),
			PublishedAt:       parse.ParseTransnetDate(r.PublishedDate, loc),
			ClosingAt:         parse.ParseTransnetDate(r.ClosingDate, loc),
			BriefingAt:        parse.ParseTransnetDate(r.BriefingDate, loc),
		}

		hash, err := computeHash(model.SourceTransnet, t.ExternalID, t.Title, t.Description, t.Location,
			t.PublishedAt, t.ClosingAt, t.BriefingAt, nil)
		if err != nil {
			return nil, fmt.Errorf("hashing transnet tender %q: %w", externalID, err)
		}
		t.Hash = hash

		var contacts []model.Contact
		if r.ContactPerson != "" || r.ContactEmail != "" {
			contacts = append(contacts, model.Contact{
				Name:  parse.SquashWhitespace(r.ContactPerson),
				Email: parse.SquashWhitespace(r.ContactEmail),
			})
		}

		items = append(items, model.Item{Tender: t, Documents: docs, Contacts: contacts})
	}
	return items, nil
}
