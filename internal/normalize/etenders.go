package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
	"github.com/co-za/tenders-ingest/internal/parse"
)

type etendersValue struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

type etendersDocument struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type etendersRaw struct {
	TenderNo          string             `json:"tender_No"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Category          string             `json:"category"`
	Location          string             `json:"location"`
	Buyer             string             `json:"buyer"`
	ProcurementMethod string             `json:"procurementMethod"`
	Status            string             `json:"status"`
	DatePublished     string             `json:"datePublished"`
	ClosingDate       string             `json:"closingDate"`
	BriefingDate      string             `json:"briefingDate"`
	Value             *etendersValue     `json:"value"`
	SupportDocument   []etendersDocument `json:"supportDocument"`
	ContactPerson     string             `json:"contactPerson"`
	Email             string             `json:"email"`
	Telephone         string             `json:"telephone"`
	Fax               string             `json:"fax"`
}

type etendersEnvelope struct {
	Data []etendersRaw `json:"data"`
}

type etendersNormalizer struct{}

func (etendersNormalizer) Normalize(raw json.RawMessage, loc *time.Location) ([]model.Item, error) {
	var env etendersEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding etenders payload: %w", err)
	}

	var items []model.Item
	for _, r := range env.Data {
		externalID := parse.SquashWhitespace(r.TenderNo)
		if externalID == "" {
			continue
		}

		t := model.Tender{
			ExternalID:        externalID,
			Title:             parse.SquashWhitespace(r.Title),
			Description:       parse.CleanHtmlish(r.Description),
			Category:          parse.SquashWhitespace(r.Category),
			Location:          parse.SquashWhitespace(r.Location),
			Buyer:             parse.SquashWhitespace(r.Buyer),
			ProcurementMethod: parse.SquashWhitespace(r.ProcurementMethod),
			Status:            parse.SquashWhitespace(r.Status),
			PublishedAt:       parse.ParseIso(r.DatePublished),
			ClosingAt:         parse.ParseIso(r.ClosingDate),
			BriefingAt:        parse.ParseIso(r.BriefingDate),
			// TODO: attach a derived detail URL once the OCDS portal exposes one.
			URL: "",
		}
		if r.Value != nil {
			t.ValueAmount = r.Value.Amount
			t.ValueCurrency = r.Value.Currency
		}

		hash, err := computeHash(model.SourceETenders, t.ExternalID, t.Title, t.Description, t.Location,
			t.PublishedAt, t.ClosingAt, t.BriefingAt, nil)
		if err != nil {
			return nil, fmt.Errorf("hashing etenders tender %q: %w", externalID, err)
		}
		t.Hash = hash

		var docs []model.Document
		for _, d := range r.SupportDocument {
			mime := ""
			if strings.HasSuffix(strings.ToLower(d.URL), ".pdf") {
				mime = "application/pdf"
			}
			docs = append(docs, model.Document{URL: d.URL, Name: d.Name, MimeType: mime})
		}

		var contacts []model.Contact
		if r.ContactPerson != "" || r.Email != "" || r.Telephone != "" || r.Fax != "" {
			phone := r.Telephone
			if phone == "" {
				phone = r.Fax
			}
			contacts = append(contacts, model.Contact{
				Name:  parse.SquashWhitespace(r.ContactPerson),
				Email: parse.SquashWhitespace(r.Email),
				Phone: parse.SquashWhitespace(phone),
			})
		}

		items = append(items, model.Item{Tender: t, Documents: docs, Contacts: contacts})
	}
	return items, nil
}
