// Command ingestworker long-polls the ingest queue and, for every message,
// normalizes and upserts the referenced object, publishing once all of its
// batches have committed.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/ssm"

	"github.com/co-za/tenders-ingest/internal/config"
	"github.com/co-za/tenders-ingest/internal/ingest"
	"github.com/co-za/tenders-ingest/internal/notify"
	"github.com/co-za/tenders-ingest/internal/parse"
	"github.com/co-za/tenders-ingest/internal/secret"
	"github.com/co-za/tenders-ingest/internal/store"
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

	secrets := &secret.Store{Client: ssm.New(sess)}
	password, err := secrets.Get(cfg.DB.PasswordParam)
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(dsn(cfg, password))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	loc := parse.Zone(cfg.TZOffset)

	var publisher notify.Publisher
	if cfg.TenderTopicARN != "" {
		publisher = &notify.SNSPublisher{Client: sns.New(sess), TopicARN: cfg.TenderTopicARN}
	} else {
		publisher = &notify.SendGridPublisher{
			APIKey:    cfg.SendGridAPIKey,
			FromName:  cfg.FromName,
			FromEmail: cfg.FromEmail,
			ToEmails:  splitEmails(cfg.ToEmails),
		}
	}

	w := &ingest.Worker{
		Objects:   &ingest.S3Store{Client: s3.New(sess)},
		Store:     db,
		Publisher: publisher,
		Location:  loc,
	}

	sqsClient := sqs.New(sess)

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Println("ingestworker: polling", cfg.IngestQueueURL)
	for {
		select {
		case <-stop.Done():
			log.Println("ingestworker: shutting down")
			return
		default:
		}

		out, err := sqsClient.ReceiveMessageWithContext(stop, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(cfg.IngestQueueURL),
			MaxNumberOfMessages: aws.Int64(10),
			WaitTimeSeconds:     aws.Int64(20),
		})
		if err != nil {
			log.Printf("ingestworker: receive failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, msg := range out.Messages {
			if err := w.HandleMessage(stop, []byte(aws.StringValue(msg.Body))); err != nil {
				log.Printf("ingestworker: handling message failed, leaving for redelivery: %v", err)
				continue
			}
			if _, err := sqsClient.DeleteMessageWithContext(stop, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(cfg.IngestQueueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				log.Printf("ingestworker: deleting message failed, will be redelivered: %v", err)
			}
		}
	}
}

func dsn(cfg *config.Config, password string) string {
	port := cfg.DB.Port
	if port == 0 {
		port = 5432
	}
	return "host=" + cfg.DB.Host +
		" port=" + strconv.Itoa(port) +
		" dbname=" + cfg.DB.Name +
		" user=" + cfg.DB.User +
		" password=" + password +
		" sslmode=require"
}

func splitEmails(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}

