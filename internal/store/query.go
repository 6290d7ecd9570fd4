package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
)

// SortAllowList is the allow-list of sortable columns: any sort field
// outside this set is coerced to ClosingAt.
var SortAllowList = map[string]string{
	"closing_at":   "closing_at",
	"published_at": "published_at",
	"id":           "id",
}

// ListFilter is the query API's filter/paging/sort surface over /tenders.
type ListFilter struct {
	Source       string
	Status       string
	Buyer        string
	Category     string
	Q            string
	ClosingFrom  *time.Time
	ClosingTo    *time.Time
	PublishedFrom *time.Time
	PublishedTo  *time.Time

	Sort  string
	Order string

	Limit  int
	Offset int
}

// Normalize clamps Limit/Offset and coerces Sort/Order to their allowed
// values.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if _, ok := SortAllowList[f.Sort]; !ok {
		f.Sort = "closing_at"
	}
	if strings.ToUpper(f.Order) != "DESC" {
		f.Order = "ASC"
	} else {
		f.Order = "DESC"
	}
}

// TenderSummary wraps model.Tender. ListTenders returns plain model.Tender
// rows, not TenderSummary values.
type TenderSummary struct {
	model.Tender
}

// ListTenders runs the composed AND filter query and returns the matching
// page plus the total row count ignoring Limit/Offset.
func (s *Store) ListTenders(ctx context.Context, f ListFilter) ([]model.Tender, int, error) {
	f.Normalize()

	var where []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Source != "" {
		where = append(where, "sources.name = "+arg(f.Source))
	}
	if f.Status != "" {
		where = append(where, "tenders.status = "+arg(f.Status))
	}
	if f.Buyer != "" {
		where = append(where, "tenders.buyer = "+arg(f.Buyer))
	}
	if f.Category != "" {
		where = append(where, "tenders.category = "+arg(f.Category))
	}
	if f.Q != "" {
		where = append(where, fmt.Sprintf(
			"to_tsvector('english', coalesce(tenders.title,'') || ' ' || coalesce(tenders.description,'')) @@ plainto_tsquery('english', %s)",
			arg(f.Q)))
	}
	if f.ClosingFrom != nil {
		where = append(where, "tenders.closing_at >= "+arg(*f.ClosingFrom))
	}
	if f.ClosingTo != nil {
		where = append(where, "tenders.closing_at <= "+arg(*f.ClosingTo))
	}
	if f.PublishedFrom != nil {
		where = append(where, "tenders.published_at >= "+arg(*f.PublishedFrom))
	}
	if f.PublishedTo != nil {
		where = append(where, "tenders.published_at <= "+arg(*f.PublishedTo))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "where " + strings.Join(where, " and ")
	}

	countQ := fmt.Sprintf(`select count(*) from tenders join sources on sources.id = tenders.source_id %s`, whereSQL)
	var total int
	if err := s.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting tenders: %w", err)
	}

	sortCol := "tenders." + SortAllowList[f.Sort]
	limitArg := arg(f.Limit)
	offsetArg := arg(f.Offset)

	listQ := fmt.Sprintf(`
select tenders.id, tenders.source_id, tenders.external_id, tenders.source_tender_id,
       tenders.title, tenders.description, tenders.category, tenders.location, tenders.buyer,
       tenders.procurement_method, tenders.procurement_method_details, tenders.status, tenders.tender_type,
       tenders.published_at, tenders.briefing_at, tenders.tender_start_at, tenders.closing_at,
       tenders.briefing_venue, tenders.briefing_compulsory, tenders.briefing_details,
       tenders.value_amount, tenders.value_currency,
       tenders.hash, tenders.last_seen_at,
       tenders.tender_box_address, tenders.target_audience, tenders.contract_type, tenders.project_type, tenders.queries_to, tenders.url
from tenders
join sources on sources.id = tenders.source_id
%s
order by %s %s nulls last
limit %s offset %s`, whereSQL, sortCol, f.Order, limitArg, offsetArg)

	rows, err := s.db.QueryContext(ctx, listQ, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing tenders: %w", err)
	}
	defer rows.Close()

	var out []model.Tender
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating tenders: %w", err)
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTender(r rowScanner) (model.Tender, error) {
	var t model.Tender
	var sourceTenderID, title, description, category, location, buyer,
		procMethod, procMethodDetails, status, tenderType,
		briefingVenue, briefingDetails, valueCurrency,
		tenderBoxAddress, targetAudience, contractType, projectType, queriesTo, url *string

	err := r.Scan(
		&t.ID, &t.SourceID, &t.ExternalID, &sourceTenderID,
		&title, &description, &category, &location, &buyer,
		&procMethod, &procMethodDetails, &status, &tenderType,
		&t.PublishedAt, &t.BriefingAt, &t.TenderStartAt, &t.ClosingAt,
		&briefingVenue, &t.BriefingCompulsory, &briefingDetails,
		&t.ValueAmount, &valueCurrency,
		&t.Hash, &t.LastSeenAt,
		&tenderBoxAddress, &targetAudience, &contractType, &projectType, &queriesTo, &url,
	)
	if err != nil {
		return t, fmt.Errorf("scanning tender: %w", err)
	}

	t.SourceTenderID = deref(sourceTenderID)
	t.Title = deref(title)
	t.Description = deref(description)
	t.Category = deref(category)
	t.Location = deref(location)
	t.Buyer = deref(buyer)
	t.ProcurementMethod = deref(procMethod)
	t.ProcurementMethodDetails = deref(procMethodDetails)
	t.Status = deref(status)
	t.TenderType = deref(tenderType)
	t.BriefingVenue = deref(briefingVenue)
	t.BriefingDetails = deref(briefingDetails)
	t.ValueCurrency = deref(valueCurrency)
	t.TenderBoxAddress = deref(tenderBoxAddress)
	t.TargetAudience = deref(targetAudience)
	t.ContractType = deref(contractType)
	t.ProjectType = deref(projectType)
	t.QueriesTo = deref(queriesTo)
	t.URL = deref(url)
	return t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetTender fetches a single tender by id, or (zero, false, nil) if absent.
func (s *Store) GetTender(ctx context.Context, id int64) (model.Tender, bool, error) {
	const q = `
select tenders.id, tenders.source_id, tenders.external_id, tenders.source_tender_id,
       tenders.title, tenders.description, tenders.category, tenders.location, tenders.buyer,
       tenders.procurement_method, tenders.procurement_method_details, tenders.status, tenders.tender_type,
       tenders.published_at, tenders.briefing_at, tenders.tender_start_at, tenders.closing_at,
       tenders.briefing_venue, tenders.briefing_compulsory, tenders.briefing_details,
       tenders.value_amount, tenders.value_currency,
       tenders.hash, tenders.last_seen_at,
       tenders.tender_box_address, tenders.target_audience, tenders.contract_type, tenders.project_type, tenders.queries_to, tenders.url
from tenders where id = $1`

	row := s.db.QueryRowContext(ctx, q, id)
	t, err := scanTender(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tender{}, false, nil
	}
	if err != nil {
		return model.Tender{}, false, err
	}
	return t, true, nil
}

// GetDocuments returns tenderID's documents.
func (s *Store) GetDocuments(ctx context.Context, tenderID int64) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, `select id, tender_id, url, name, mime_type, published_at from documents where tender_id = $1`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var d model.Document
		var url, name, mimeType *string
		if err := rows.Scan(&d.ID, &d.TenderID, &url, &name, &mimeType, &d.PublishedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.URL, d.Name, d.MimeType = deref(url), deref(name), deref(mimeType)
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetContacts returns tenderID's contacts.
func (s *Store) GetContacts(ctx context.Context, tenderID int64) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `select id, tender_id, name, email, phone from contacts where tender_id = $1`, tenderID)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		var c model.Contact
		var name, email, phone *string
		if err := rows.Scan(&c.ID, &c.TenderID, &name, &email, &phone); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		c.Name, c.Email, c.Phone = deref(name), deref(email), deref(phone)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SavePreferences replaces userEmail's preference rows with categories.
// Returns false if no user with that email exists.
func (s *Store) SavePreferences(ctx context.Context, userEmail string, categories []string) (int64, bool, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `select id from users where email = $1`, userEmail).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up user: %w", err)
	}

	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `delete from user_preferences where user_id = $1`, userID); err != nil {
			return fmt.Errorf("deleting preferences: %w", err)
		}
		for _, c := range categories {
			if _, err := tx.ExecContext(ctx,
				`insert into user_preferences (user_id, tender_category) values ($1, $2) on conflict do nothing`,
				userID, c,
			); err != nil {
				return fmt.Errorf("inserting preference %q: %w", c, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return userID, true, nil
}
