package recon

import (
	"fmt"
	"strings"
)

// Layer is the side of a reconciliation pair a column, filter or
// transformation belongs to.
type Layer string

const (
	Source Layer = "source"
	Target Layer = "target"
)

// ParseLayer parses a layer name case-insensitively.
func ParseLayer(s string) (Layer, error) {
	switch Layer(strings.ToLower(strings.TrimSpace(s))) {
	case Source:
		return Source, nil
	case Target:
		return Target, nil
	}
	return "", &ConfigError{
		Code:    ErrCodeInvalidLayer,
		Message: fmt.Sprintf("layer %q must be %q or %q", s, Source, Target),
	}
}

// IsSource reports whether l is the source layer. Every other value is
// treated as the target layer.
func (l Layer) IsSource() bool { return l == Source }

func (l Layer) String() string { return string(l) }
