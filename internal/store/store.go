// Package store is the relational persistence layer: schema, transactional
// upsert, child-collection replacement and the read surface backing the
// query API.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	_ "github.com/lib/pq"

	"github.com/co-za/tenders-ingest/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a *sql.DB and the per-instance source-id cache.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	sourceID map[string]int64
}

// Open opens (but does not ping) a Postgres connection pool for dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	return &Store{db: db, sourceID: make(map[string]int64)}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema. Safe to call on every startup: every
// statement is idempotent (CREATE ... IF NOT EXISTS / ON CONFLICT DO NOTHING).
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on a nil return and
// rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SourceID resolves a source name to its id, caching the result for the
// lifetime of the Store instance. Source rows are static reference data
// seeded by the schema.
func (s *Store) SourceID(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	s.mu.Lock()
	if id, ok := s.sourceID[name]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	var id int64
	if err := tx.QueryRowContext(ctx, `select id from sources where name = $1`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolving source %q: %w", name, err)
	}

	s.mu.Lock()
	s.sourceID[name] = id
	s.mu.Unlock()
	return id, nil
}

// UpsertTender performs the canonical upsert: insert on (source_id,
// external_id), or update every mutable column plus last_seen_at = now()
// on conflict. Returns the row id.
func (s *Store) UpsertTender(ctx context.Context, tx *sql.Tx, t model.Tender) (int64, error) {
	const q = `
insert into tenders (
    source_id, external_id, source_tender_id,
    title, description, category, location, buyer,
    procurement_method, procurement_method_details, status, tender_type,
    published_at, briefing_at, tender_start_at, closing_at,
    briefing_venue, briefing_compulsory, briefing_details,
    value_amount, value_currency,
    hash, last_seen_at,
    tender_box_address, target_audience, contract_type, project_type, queries_to, url
) values (
    $1, $2, $3,
    $4, $5, $6, $7, $8,
    $9, $10, $11, $12,
    $13, $14, $15, $16,
    $17, $18, $19,
    $20, $21,
    $22, now(),
    $23, $24, $25, $26, $27, $28
)
on conflict (source_id, external_id) do update set
    source_tender_id = excluded.source_tender_id,
    title = excluded.title,
    description = excluded.description,
    category = excluded.category,
    location = excluded.location,
    buyer = excluded.buyer,
    procurement_method = excluded.procurement_method,
    procurement_method_details = excluded.procurement_method_details,
    status = excluded.status,
    tender_type = excluded.tender_type,
    published_at = excluded.published_at,
    briefing_at = excluded.briefing_at,
    tender_start_at = excluded.tender_start_at,
    closing_at = excluded.closing_at,
    briefing_venue = excluded.briefing_venue,
    briefing_compulsory = excluded.briefing_compulsory,
    briefing_details = excluded.briefing_details,
    value_amount = excluded.value_amount,
    value_currency = excluded.value_currency,
    hash = excluded.hash,
    last_seen_at = now(),
    tender_box_address = excluded.tender_box_address,
    target_audience = excluded.target_audience,
    contract_type = excluded.contract_type,
    project_type = excluded.project_type,
    queries_to = excluded.queries_to,
    url = excluded.url
returning id`

	var id int64
	err := tx.QueryRowContext(ctx, q,
		t.SourceID, t.ExternalID, nullStr(t.SourceTenderID),
		nullStr(t.Title), nullStr(t.Description), nullStr(t.Category), nullStr(t.Location), nullStr(t.Buyer),
		nullStr(t.ProcurementMethod), nullStr(t.ProcurementMethodDetails), nullStr(t.Status), nullStr(t.TenderType),
		t.PublishedAt, t.BriefingAt, t.TenderStartAt, t.ClosingAt,
		nullStr(t.BriefingVenue), t.BriefingCompulsory, nullStr(t.BriefingDetails),
		t.ValueAmount, nullStr(t.ValueCurrency),
		t.Hash,
		nullStr(t.TenderBoxAddress), nullStr(t.TargetAudience), nullStr(t.ContractType), nullStr(t.ProjectType), nullStr(t.QueriesTo), nullStr(t.URL),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting tender %q: %w", t.ExternalID, err)
	}
	return id, nil
}

// ReplaceDocuments deletes and reinserts tenderID's documents within tx.
func (s *Store) ReplaceDocuments(ctx context.Context, tx *sql.Tx, tenderID int64, docs []model.Document) error {
	if _, err := tx.ExecContext(ctx, `delete from documents where tender_id = $1`, tenderID); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	for _, d := range docs {
		if _, err := tx.ExecContext(ctx,
			`insert into documents (tender_id, url, name, mime_type, published_at) values ($1, $2, $3, $4, $5)`,
			tenderID, nullStr(d.URL), nullStr(d.Name), nullStr(d.MimeType), d.PublishedAt,
		); err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
	}
	return nil
}

// ReplaceContacts deletes and reinserts tenderID's contacts within tx.
func (s *Store) ReplaceContacts(ctx context.Context, tx *sql.Tx, tenderID int64, contacts []model.Contact) error {
	if _, err := tx.ExecContext(ctx, `delete from contacts where tender_id = $1`, tenderID); err != nil {
		return fmt.Errorf("deleting contacts: %w", err)
	}
	for _, c := range contacts {
		if _, err := tx.ExecContext(ctx,
			`insert into contacts (tender_id, name, email, phone) values ($1, $2, $3, $4)`,
			tenderID, nullStr(c.Name), nullStr(c.Email), nullStr(c.Phone),
		); err != nil {
			return fmt.Errorf("inserting contact: %w", err)
		}
	}
	return nil
}

// WithSavepoint runs fn inside a named savepoint within an already-open
// transaction, releasing it on success and rolling back to it (without
// aborting tx itself) on error. This is what lets a single row fail and
// the rest of the batch still commit.
func (s *Store) WithSavepoint(ctx context.Context, tx *sql.Tx, name string, fn func() error) error {
	if _, err := tx.ExecContext(ctx, "savepoint "+name); err != nil {
		return fmt.Errorf("creating savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "rollback to savepoint "+name); rbErr != nil {
			return fmt.Errorf("row error: %v, savepoint rollback error: %w", err, rbErr)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, "release savepoint "+name); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}
	return nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
