// Package ingest is the ingest worker: consume queue events, fetch the raw
// object, dispatch to the matching normalizer, upsert in batched
// transactions, and hand durably-committed rows to the publisher.
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
	"github.com/co-za/tenders-ingest/internal/normalize"
	"github.com/co-za/tenders-ingest/internal/notify"
	"github.com/co-za/tenders-ingest/internal/store"
)

// BatchSize is the fixed per-transaction batch size.
const BatchSize = 100

// Worker wires the object store, the relational store and the publisher
// together to process one queue message at a time.
type Worker struct {
	Objects   ObjectStore
	Store     *store.Store
	Publisher notify.Publisher
	Location  *time.Location
}

// HandleMessage processes one queue message body: parses its envelope,
// fetches and normalizes each referenced object, upserts in batches, and
// publishes after every batch for that object has committed.
//
// Errors returned here are the ones the caller should let the queue
// redeliver (object fetch, DB connect/commit); malformed input and
// per-row failures are logged and skipped rather than propagated.
func (w *Worker) HandleMessage(ctx context.Context, body []byte) error {
	notifications, err := ParseEnvelope(body)
	if err != nil {
		log.Printf("ingest: malformed envelope, skipping: %v", err)
		return nil
	}

	for _, n := range notifications {
		if err := w.processNotification(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) processNotification(ctx context.Context, n Notification) error {
	source, ok := sourceForKey(n.Key)
	if !ok {
		log.Printf("ingest: unrecognized key prefix %q, skipping", n.Key)
		return nil
	}

	raw, err := w.Objects.Get(ctx, n.Bucket, n.Key)
	if err != nil {
		return fmt.Errorf("fetching object %s/%s: %w", n.Bucket, n.Key, err)
	}

	if !looksLikeJSONValue(raw) {
		log.Printf("ingest: object %s is not a JSON object/array, skipping", n.Key)
		return nil
	}

	normalizer, _ := normalize.For(source)
	items, err := normalizer.Normalize(json.RawMessage(raw), w.Location)
	if err != nil {
		log.Printf("ingest: normalizing %s failed, skipping: %v", n.Key, err)
		return nil
	}

	var allIntents []notify.Message
	for start := 0; start < len(items); start += BatchSize {
		end := start + BatchSize
		if end > len(items) {
			end = len(items)
		}
		intents, err := w.processBatch(ctx, source, items[start:end])
		if err != nil {
			return fmt.Errorf("processing batch of %s: %w", n.Key, err)
		}
		allIntents = append(allIntents, intents...)
	}

	if len(allIntents) > 0 {
		if err := w.Publisher.Publish(allIntents); err != nil {
			log.Printf("ingest: publish failed for %s: %v", n.Key, err)
		}
	}
	return nil
}

// processBatch runs one OPEN -> UPSERTING -> COMMITTED/ABORTED cycle. A
// transaction-fatal error aborts and rolls back the whole batch; an
// individual row's error is caught by a savepoint, logged, and does not
// stop the rest of the batch from committing.
func (w *Worker) processBatch(ctx context.Context, source string, batch []model.Item) ([]notify.Message, error) {
	var intents []notify.Message

	err := w.Store.WithTx(ctx, func(tx *sql.Tx) error {
		sourceID, err := w.Store.SourceID(ctx, tx, source)
		if err != nil {
			return err
		}

		for i, item := range batch {
			item := item
			sp := "row_" + strconv.Itoa(i)
			rowErr := w.Store.WithSavepoint(ctx, tx, sp, func() error {
				item.Tender.SourceID = sourceID
				tenderID, err := w.Store.UpsertTender(ctx, tx, item.Tender)
				if err != nil {
					return err
				}
				if err := w.Store.ReplaceDocuments(ctx, tx, tenderID, item.Documents); err != nil {
					return err
				}
				if err := w.Store.ReplaceContacts(ctx, tx, tenderID, item.Contacts); err != nil {
					return err
				}
				intents = append(intents, buildMessage(item, tenderID, source))
				return nil
			})
			if rowErr != nil {
				log.Printf("ingest: row failed for source=%s external_id=%s: %v", source, item.Tender.ExternalID, rowErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return intents, nil
}

func buildMessage(item model.Item, tenderID int64, source string) notify.Message {
	return notify.Message{
		TenderID:    tenderID,
		Title:       item.Tender.Title,
		Category:    item.Tender.Category,
		Source:      source,
		PublishedAt: item.Tender.PublishedAt,
		ClosingAt:   item.Tender.ClosingAt,
		URL:         item.Tender.URL,
		Description: item.Tender.Description,
	}
}

func looksLikeJSONValue(raw []byte) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{', '[':
			return true
		default:
			return false
		}
	}
	return false
}
