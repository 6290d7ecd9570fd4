package notify

import (
	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridPublisher sends one email per Message, driven by the ingest
// worker's publish intents. It is a local/dev fallback used when
// TENDER_TOPIC_ARN is unset.
type SendGridPublisher struct {
	APIKey    string
	FromName  string
	FromEmail string
	ToEmails  []string
}

// Publish sends one email per message via NewV3Mail/NewPersonalization.
func (p *SendGridPublisher) Publish(msgs []Message) error {
	if len(msgs) == 0 || len(p.ToEmails) == 0 {
		return nil
	}

	from := mail.NewEmail(p.FromName, p.FromEmail)

	var tos []*mail.Email
	for _, te := range p.ToEmails {
		em, err := mail.ParseEmail(te)
		if err != nil {
			return err
		}
		tos = append(tos, em)
	}

	client := sendgrid.NewSendClient(p.APIKey)
	for _, m := range msgs {
		content := mail.NewContent("text/plain", m.Description)

		email := mail.NewV3Mail()
		email.SetFrom(from)
		email.Subject = Subject(m)
		pers := mail.NewPersonalization()
		pers.AddTos(from)
		pers.AddBCCs(tos...)
		email.AddPersonalizations(pers)
		email.AddContent(content)

		if _, err := client.Send(email); err != nil {
			return err
		}
	}
	return nil
}
