package notify

import (
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
)

// SNSPublisher sends one SNS message per tender with a category message
// attribute, so subscriber filter policies receive only their categories.
type SNSPublisher struct {
	Client   snsiface.SNSAPI
	TopicARN string
}

// Publish sends every message, logging (not failing) on a per-message
// error -- notifications are best-effort once the row is durable.
func (p *SNSPublisher) Publish(msgs []Message) error {
	for _, m := range msgs {
		if err := p.publishOne(m); err != nil {
			log.Printf("notify: publishing tender %d: %v", m.TenderID, err)
		}
	}
	return nil
}

func (p *SNSPublisher) publishOne(m Message) error {
	b, err := Body(m)
	if err != nil {
		return fmt.Errorf("encoding body: %w", err)
	}

	_, err = p.Client.Publish(&sns.PublishInput{
		TopicArn: aws.String(p.TopicARN),
		Subject:  aws.String(Subject(m)),
		Message:  aws.String(string(b)),
		MessageAttributes: map[string]*sns.MessageAttributeValue{
			"category": {
				DataType:    aws.String("String"),
				StringValue: aws.String(CategoryAttribute(m)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
