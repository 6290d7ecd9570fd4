// Package model holds the normalized entities shared by the ingest worker,
// the OCDS fetcher and the query API.
package model

import "time"

// Source names recognized by the pipeline. The set is fixed; new portals
// require a code change, not configuration.
const (
	SourceEskom    = "eskom"
	SourceSANRAL   = "sanral"
	SourceTransnet = "transnet"
	SourceETenders = "etenders"
)

// Tender is the canonical unit of the pipeline. Fields map directly onto
// the tenders table; see internal/store/schema.sql for column definitions.
type Tender struct {
	ID       int64
	SourceID int64

	ExternalID     string
	SourceTenderID string

	Title                     string
	Description               string
	Category                  string
	Location                  string
	Buyer                     string
	ProcurementMethod         string
	ProcurementMethodDetails  string
	Status                    string
	TenderType                string

	PublishedAt   *time.Time
	BriefingAt    *time.Time
	TenderStartAt *time.Time
	ClosingAt     *time.Time

	BriefingVenue      string
	BriefingCompulsory bool
	BriefingDetails    string

	ValueAmount   *float64
	ValueCurrency string

	Hash       string
	LastSeenAt time.Time

	TenderBoxAddress string
	TargetAudience   string
	ContractType     string
	ProjectType      string
	QueriesTo        string
	URL              string
}

// Document is a weak child of Tender: fully replaced on every upsert.
type Document struct {
	ID          int64
	TenderID    int64
	URL         string
	Name        string
	MimeType    string
	PublishedAt *time.Time
}

// Contact is a weak child of Tender: fully replaced on every upsert.
type Contact struct {
	ID       int64
	TenderID int64
	Name     string
	Email    string
	Phone    string
}

// User is a query-API subscriber.
type User struct {
	ID    int64
	Email string
}

// Preference is one opted-in category for a user.
type Preference struct {
	UserID   int64
	Category string
}

// Item bundles a normalized tender with its child collections, the unit a
// Normalizer produces and the ingest worker upserts.
type Item struct {
	Tender    Tender
	Documents []Document
	Contacts  []Contact
}
