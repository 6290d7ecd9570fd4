// Command ocdsfetcher runs one OCDS crawl invocation: fetch pages, persist
// them to the object store, self-continue if the run nears its time budget.
// Meant to be invoked by a scheduler (cron, Lambda on a schedule, or its own
// continuation message) rather than run forever.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/co-za/tenders-ingest/internal/config"
	"github.com/co-za/tenders-ingest/internal/fetch/ocds"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sess, err := session.NewSession()
	if err != nil {
		log.Fatal(err)
	}

	client, err := ocds.NewClient(cfg.OCDSBaseURL)
	if err != nil {
		log.Fatal(err)
	}

	var continuation ocds.ContinuationPublisher
	if cfg.OCDSQueueURL != "" {
		continuation = &ocds.SQSContinuation{Client: sqs.New(sess), QueueURL: cfg.OCDSQueueURL}
	}

	f := ocds.NewFetcher(client, &ocds.S3Store{Client: s3.New(sess)}, continuation)

	summary, err := f.Run(context.Background(), ocds.Params{
		Bucket:        cfg.Bucket,
		Prefix:        cfg.Prefix,
		PageSize:      cfg.PageSize,
		MaxPages:      cfg.MaxPages,
		DateFrom:      cfg.OCDSDateFrom,
		DateTo:        cfg.OCDSDateTo,
		ThrottleMS:    cfg.ThrottleMS,
		UseConcurrent: cfg.UseConcurrent,
		StartPage:     cfg.OCDSStartPage,
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("ocdsfetcher: saved=%d failed=%v continued=%v lastPage=%d",
		summary.PagesSaved, summary.FailedPages, summary.Continued, summary.LastPage)
}
