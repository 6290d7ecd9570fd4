package ingest

import "encoding/json"

// Notification is one object-created event: which bucket/key to fetch.
type Notification struct {
	Bucket string
	Key    string
}

// s3Envelope is the "{Records:[{s3:{bucket:{name},object:{key}}}]}" shape
// new object events arrive in; any equivalent envelope that can be decoded
// into it works.
type s3Envelope struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ParseEnvelope decodes one queue message body into its Notifications.
func ParseEnvelope(body []byte) ([]Notification, error) {
	var env s3Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(env.Records))
	for _, r := range env.Records {
		out = append(out, Notification{Bucket: r.S3.Bucket.Name, Key: r.S3.Object.Key})
	}
	return out, nil
}
