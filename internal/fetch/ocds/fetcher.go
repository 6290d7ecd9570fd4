package ocds

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// connectBackoff and rateLimitBackoff are the fixed retry ladders: transient
// failures wait 5s/10s/20s, explicit rate-limiting waits longer at
// 10s/20s/30s.
var (
	connectBackoff   = []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}
	rateLimitBackoff = []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}
)

// runBudget is the ~5 minute budget a single invocation gets before it must
// self-continue; continuationMark is the point within it (~260s) where the
// fetcher hands off rather than risk a partial page near the ceiling.
const (
	runBudget        = 5 * time.Minute
	continuationMark = 260 * time.Second
)

// ObjectStore is the subset of the object store the fetcher needs: writing
// one page with metadata. Distinct from ingest.ObjectStore (which only
// reads) since the two packages' production implementations differ in
// which S3 calls they need.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body []byte, metadata map[string]string) error
}

// ContinuationPublisher re-enqueues a continuation message to the fetcher's
// own queue when a run hands off to its successor.
type ContinuationPublisher interface {
	PublishContinuation(ctx context.Context, state ContinuationState) error
}

// ContinuationState is what a fetcher run hands to its successor when it
// runs out of budget mid-crawl.
type ContinuationState struct {
	StartPage   int
	TotalSaved  int
	FailedPages []int
}

// Params configures one crawl invocation.
type Params struct {
	Bucket        string
	Prefix        string
	PageSize      int
	MaxPages      int // 0 means unbounded
	DateFrom      string
	DateTo        string
	ThrottleMS    int
	UseConcurrent bool
	StartPage     int
}

// Fetcher crawls the OCDS API page by page, persisting each page and
// self-continuing near the time budget.
type Fetcher struct {
	Client  *Client
	Objects ObjectStore
	Queue   ContinuationPublisher

	// now is overridable for tests; defaults to time.Now.
	now func() time.Time
}

// NewFetcher builds a Fetcher with the production clock.
func NewFetcher(client *Client, objects ObjectStore, queue ContinuationPublisher) *Fetcher {
	return &Fetcher{Client: client, Objects: objects, Queue: queue, now: time.Now}
}

// Summary reports what one invocation accomplished.
type Summary struct {
	PagesSaved   int
	FailedPages  []int
	Continued    bool
	LastPage     int
}

// Run crawls from p.StartPage until a 404 terminates the crawl, p.MaxPages
// is reached, or the run's time budget is exhausted (triggering
// self-continuation). Sequential by default; p.UseConcurrent fetches up to
// three pages in flight via errgroup, with allSettled semantics -- one
// page's failure doesn't cancel its siblings.
func (f *Fetcher) Run(ctx context.Context, p Params) (Summary, error) {
	start := f.clock()
	page := p.StartPage
	if page == 0 {
		page = 1
	}

	var summary Summary
	var failed []int

	for {
		if p.MaxPages > 0 && page > p.MaxPages {
			break
		}

		if f.clock().Sub(start) >= continuationMark {
			if f.Queue != nil {
				state := ContinuationState{StartPage: page, TotalSaved: summary.PagesSaved, FailedPages: failed}
				if err := f.Queue.PublishContinuation(ctx, state); err != nil {
					log.Printf("ocds: publishing continuation: %v", err)
				} else {
					summary.Continued = true
				}
			}
			break
		}

		batch := f.nextBatch(page, p)
		results := f.fetchBatch(ctx, batch, p)

		terminated := false
		for _, r := range results {
			switch {
			case r.err == nil:
				summary.PagesSaved++
				summary.LastPage = r.page
			case r.terminal:
				terminated = true
			default:
				failed = append(failed, r.page)
				log.Printf("ocds: page %d failed permanently after retries: %v", r.page, r.err)
			}
		}
		if terminated {
			break
		}

		page = batch[len(batch)-1] + 1

		if p.ThrottleMS > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(time.Duration(p.ThrottleMS) * time.Millisecond):
			}
		}
	}

	summary.FailedPages = failed
	return summary, nil
}

func (f *Fetcher) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}

// nextBatch returns the set of page numbers to attempt next: one page in
// sequential mode, up to three in concurrent mode.
func (f *Fetcher) nextBatch(page int, p Params) []int {
	if !p.UseConcurrent {
		return []int{page}
	}
	batch := []int{page, page + 1, page + 2}
	if p.MaxPages > 0 {
		out := batch[:0]
		for _, pg := range batch {
			if pg <= p.MaxPages {
				out = append(out, pg)
			}
		}
		return out
	}
	return batch
}

type pageOutcome struct {
	page     int
	err      error
	terminal bool // true on 404: "no such page", stop the crawl entirely
}

func (f *Fetcher) fetchBatch(ctx context.Context, pages []int, p Params) []pageOutcome {
	if !p.UseConcurrent || len(pages) == 1 {
		out := make([]pageOutcome, 0, len(pages))
		for _, pg := range pages {
			out = append(out, f.fetchOne(ctx, pg, p))
		}
		return out
	}

	out := make([]pageOutcome, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, pg := range pages {
		i, pg := i, pg
		g.Go(func() error {
			out[i] = f.fetchOne(gctx, pg, p)
			return nil // allSettled: a page's own error lives in pageOutcome, never fails the group
		})
	}
	_ = g.Wait()
	return out
}

// fetchOne fetches and persists a single page, retrying transient failures
// and explicit rate-limiting on their respective ladders.
func (f *Fetcher) fetchOne(ctx context.Context, page int, p Params) pageOutcome {
	var lastErr error

	for attempt := 0; attempt <= len(connectBackoff); attempt++ {
		res, err := f.Client.FetchPage(ctx, page, p.PageSize, p.DateFrom, p.DateTo)
		if err == nil && res.StatusCode == http.StatusNotFound {
			return pageOutcome{page: page, terminal: true}
		}
		if err == nil && res.StatusCode == http.StatusTooManyRequests {
			if attempt >= len(rateLimitBackoff) {
				return pageOutcome{page: page, err: fmt.Errorf("page %d: rate limited after retries", page)}
			}
			sleep(ctx, rateLimitBackoff[attempt])
			continue
		}
		if err == nil && res.StatusCode >= 500 {
			lastErr = fmt.Errorf("page %d: server error %d", page, res.StatusCode)
			if attempt >= len(connectBackoff) {
				break
			}
			sleep(ctx, connectBackoff[attempt])
			continue
		}
		if err != nil {
			if !isTransient(err) {
				return pageOutcome{page: page, err: fmt.Errorf("page %d: %w", page, err)}
			}
			lastErr = err
			if attempt >= len(connectBackoff) {
				break
			}
			sleep(ctx, connectBackoff[attempt])
			continue
		}
		if res.StatusCode != http.StatusOK {
			return pageOutcome{page: page, err: fmt.Errorf("page %d: unexpected status %d", page, res.StatusCode)}
		}

		key := fmt.Sprintf("%setenders-p%04d-%d.json", p.Prefix, page, f.clock().UnixMilli())
		meta := map[string]string{"page": strconv.Itoa(page), "timestamp": strconv.FormatInt(f.clock().UnixMilli(), 10)}
		if err := f.Objects.Put(ctx, p.Bucket, key, res.Body, meta); err != nil {
			return pageOutcome{page: page, err: fmt.Errorf("page %d: persisting: %w", page, err)}
		}
		return pageOutcome{page: page}
	}

	return pageOutcome{page: page, err: fmt.Errorf("page %d: exhausted retries: %w", page, lastErr)}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
