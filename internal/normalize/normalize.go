package normalize

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/co-za/tenders-ingest/internal/model"
)

// Normalizer turns one source's raw JSON payload into normalized items. It
// never touches the database or the network.
type Normalizer interface {
	Normalize(raw json.RawMessage, loc *time.Location) ([]model.Item, error)
}

// byName is the tagged-variant dispatch table: a fixed set of sources, no
// surprise branches on the hot path.
var byName = map[string]Normalizer{
	model.SourceEskom:    eskomNormalizer{},
	model.SourceSANRAL:   sanralNormalizer{},
	model.SourceTransnet: transnetNormalizer{},
	model.SourceETenders: etendersNormalizer{},
}

// For returns the Normalizer registered for source, or (nil, false) for an
// unrecognized name.
func For(source string) (Normalizer, bool) {
	n, ok := byName[source]
	return n, ok
}

var errMissingExternalID = fmt.Errorf("missing external id")
