package ingest

import (
	"strings"

	"github.com/co-za/tenders-ingest/internal/model"
)

// prefixToSource maps object-key prefixes to source names. A package-level
// table, not a branch chain; sourceForKey scans its entries for the prefix.
var prefixToSource = map[string]string{
	"eskom/":    model.SourceEskom,
	"sanral/":   model.SourceSANRAL,
	"transnet/": model.SourceTransnet,
	"etenders/": model.SourceETenders,
}

// sourceForKey returns the source name for key's prefix, or ("", false)
// for an unrecognized prefix.
func sourceForKey(key string) (string, bool) {
	for prefix, source := range prefixToSource {
		if strings.HasPrefix(key, prefix) {
			return source, true
		}
	}
	return "", false
}
