package querybuilder

import (
	"fmt"
	"strings"

	"github.com/roach88/recon/internal/recon"
)

// Kind names one of the reconciliation queries.
type Kind string

const (
	KindSampling  Kind = "sampling"
	KindThreshold Kind = "threshold"
	KindHash      Kind = "hash"
)

// Kinds lists every query kind in a stable order.
var Kinds = []Kind{KindSampling, KindThreshold, KindHash}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindSampling, KindThreshold, KindHash:
		return k, nil
	}
	return "", fmt.Errorf("unknown query kind %q (want sampling, threshold or hash)", s)
}

// Build renders the query of the given kind. keys is only consulted for
// sampling.
func (b *QueryBuilder) Build(kind Kind, keys recon.SampleKeys) (string, error) {
	switch kind {
	case KindSampling:
		return b.BuildSamplingQuery(keys)
	case KindThreshold:
		return b.BuildThresholdQuery()
	case KindHash:
		return b.BuildHashQuery()
	}
	return "", fmt.Errorf("unknown query kind %q", kind)
}
