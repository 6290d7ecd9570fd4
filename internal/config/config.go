// Package config decodes the process's environment variables into a typed
// struct with envdecode.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config holds every environment-sourced setting the pipeline needs.
type Config struct {
	DB struct {
		Host            string `env:"DB_HOST,required"`
		Port            int    `env:"DB_PORT,default=5432"`
		Name            string `env:"DB_NAME,required"`
		User            string `env:"DB_USER,required"`
		PasswordParam   string `env:"DB_PASSWORD_PARAM,required"`
	}

	TenderTopicARN string `env:"TENDER_TOPIC_ARN"`
	Bucket         string `env:"BUCKET,required"`
	Prefix         string `env:"PREFIX"`
	IngestQueueURL string `env:"INGEST_QUEUE_URL"`

	PageSize      int    `env:"PAGE_SIZE,default=100"`
	MaxPages      int    `env:"MAX_PAGES,default=0"`
	ThrottleMS    int    `env:"THROTTLE_MS,default=0"`
	UseConcurrent bool   `env:"USE_CONCURRENT,default=false"`
	TZOffset      string `env:"TZ_OFFSET,default=+02:00"`

	OCDSBaseURL  string `env:"OCDS_BASE_URL,default=https://ocds-api.etenders.gov.za"`
	OCDSDateFrom string `env:"OCDS_DATE_FROM"`
	OCDSDateTo   string `env:"OCDS_DATE_TO"`
	OCDSQueueURL string `env:"OCDS_QUEUE_URL"`
	OCDSStartPage int   `env:"OCDS_START_PAGE,default=1"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	FromName       string `env:"FROM_NAME"`
	FromEmail      string `env:"FROM_EMAIL"`
	ToEmails       string `env:"TO_EMAILS"`
}

// Load decodes Config from the process environment.
func Load() (*Config, error) {
	var c Config
	if err := envdecode.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &c, nil
}
