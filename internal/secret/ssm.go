// Package secret fetches the DB password from SSM Parameter Store on first
// use and memoizes it, so it's never inlined in configuration.
package secret

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
)

// Store resolves SSM parameter names to decrypted values, lazily and once.
type Store struct {
	Client ssmiface.SSMAPI

	mu    sync.Mutex
	cache map[string]string
}

// Get returns the decrypted value of name, fetching it on first call and
// serving the cached value thereafter.
func (s *Store) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		s.cache = make(map[string]string)
	}
	if v, ok := s.cache[name]; ok {
		return v, nil
	}

	out, err := s.Client.GetParameter(&ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("fetching parameter %q: %w", name, err)
	}

	v := aws.StringValue(out.Parameter.Value)
	s.cache[name] = v
	return v, nil
}
