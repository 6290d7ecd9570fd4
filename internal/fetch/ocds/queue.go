package ocds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// SQSContinuation re-enqueues a continuation message to the fetcher's own
// queue.
type SQSContinuation struct {
	Client   sqsiface.SQSAPI
	QueueURL string
}

// continuationBody is the {startPage, totalSaved, failedPages} payload for
// a self-continuation invocation.
type continuationBody struct {
	StartPage   int   `json:"startPage"`
	TotalSaved  int   `json:"totalSaved"`
	FailedPages []int `json:"failedPages"`
}

// PublishContinuation sends one SQS message encoding state.
func (q *SQSContinuation) PublishContinuation(ctx context.Context, state ContinuationState) error {
	body := continuationBody{
		StartPage:   state.StartPage,
		TotalSaved:  state.TotalSaved,
		FailedPages: state.FailedPages,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding continuation: %w", err)
	}

	_, err = q.Client.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.QueueURL),
		MessageBody: aws.String(string(b)),
	})
	if err != nil {
		return fmt.Errorf("sending continuation message: %w", err)
	}
	return nil
}
