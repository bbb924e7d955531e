package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// DomainQuery prefixes every query ID hash. The version suffix leaves room
// for a different identity scheme later.
const DomainQuery = "recon/query/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryID computes the content-addressed ID of a compiled query. SQL text
// is NFC-normalized first so that canonically equivalent text collides.
func QueryID(q CompiledQuery) (string, error) {
	data, err := marshalSorted(map[string]any{
		"dialect": q.Dialect,
		"kind":    q.Kind,
		"layer":   q.Layer,
		"run_id":  q.RunID,
		"sql":     norm.NFC.String(q.SQL),
		"table":   q.Table,
	})
	if err != nil {
		return "", fmt.Errorf("QueryID: %w", err)
	}
	return hashWithDomain(DomainQuery, data), nil
}

// marshalSorted encodes m as compact JSON with sorted keys and no HTML
// escaping, so the bytes only depend on the values.
func marshalSorted(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RunIDGenerator produces run identifiers.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs, so ListRuns
// returns runs in creation order.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate panics if the system random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined run IDs for testing.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID. Panics once all IDs have
// been consumed.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
