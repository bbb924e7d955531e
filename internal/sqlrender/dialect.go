package sqlrender

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/recon/internal/sqlexpr"
)

// Names of the registered dialects.
const (
	Databricks = "databricks"
	Snowflake  = "snowflake"
	Oracle     = "oracle"
)

// ErrUnknownDialect is returned by Lookup for names that are not registered.
var ErrUnknownDialect = errors.New("unknown dialect")

// NullSafeStyle selects how a null-safe equality is spelled.
type NullSafeStyle int

const (
	// NullSafeSpaceship renders "l <=> r".
	NullSafeSpaceship NullSafeStyle = iota
	// NullSafeDistinct renders "l IS NOT DISTINCT FROM r".
	NullSafeDistinct
	// NullSafeDecode renders "DECODE(l, r, 1, 0) = 1".
	NullSafeDecode
)

// Dialect holds the spelling rules of one SQL dialect.
//
// Dialects are immutable once registered; Lookup hands out shared pointers.
type Dialect struct {
	// Name is the primary lower-case dialect name.
	Name string

	// Aliases are alternative names accepted by Lookup.
	Aliases []string

	// IdentQuote wraps quoted identifiers.
	IdentQuote string

	// TableAliasAS emits "tbl AS alias" instead of "tbl alias".
	TableAliasAS bool

	// DummyTable is added as FROM to selects without one. Empty means none.
	DummyTable string

	// NullSafe is the null-safe equality spelling.
	NullSafe NullSafeStyle

	// IfFunction renders If nodes as IF(c, t, f); otherwise as CASE.
	IfFunction bool

	// NumericBooleans renders TRUE/FALSE as 1/0.
	NumericBooleans bool

	// ConcatOperator renders concatenation with || instead of CONCAT(...).
	ConcatOperator bool

	// funcNames overrides the generic function names.
	funcNames map[sqlexpr.FuncKind]string
}

// FuncName returns the dialect's spelling of a function kind.
func (d *Dialect) FuncName(kind sqlexpr.FuncKind) string {
	if name, ok := d.funcNames[kind]; ok {
		return name
	}
	return kind.String()
}

func (d *Dialect) String() string { return d.Name }

var (
	dialects = map[string]*Dialect{}
	primary  []string
)

func register(d *Dialect) {
	dialects[d.Name] = d
	for _, alias := range d.Aliases {
		dialects[alias] = d
	}
	primary = append(primary, d.Name)
	sort.Strings(primary)
}

func init() {
	register(&Dialect{
		Name:         Databricks,
		Aliases:      []string{"spark", "sparksql"},
		IdentQuote:   "`",
		TableAliasAS: true,
		NullSafe:     NullSafeSpaceship,
		IfFunction:   true,
		funcNames: map[sqlexpr.FuncKind]string{
			sqlexpr.FuncJSONFormat:    "TO_JSON",
			sqlexpr.FuncArrayToString: "ARRAY_JOIN",
		},
	})
	register(&Dialect{
		Name:         Snowflake,
		IdentQuote:   `"`,
		TableAliasAS: true,
		NullSafe:     NullSafeDistinct,
		funcNames: map[sqlexpr.FuncKind]string{
			sqlexpr.FuncJSONFormat: "TO_JSON",
			sqlexpr.FuncSortArray:  "ARRAY_SORT",
		},
	})
	register(&Dialect{
		Name:            Oracle,
		IdentQuote:      `"`,
		DummyTable:      "dual",
		NullSafe:        NullSafeDecode,
		NumericBooleans: true,
		ConcatOperator:  true,
		funcNames: map[sqlexpr.FuncKind]string{
			sqlexpr.FuncJSONFormat: "JSON_SERIALIZE",
		},
	})
}

// Lookup returns the dialect registered under name or one of its aliases.
// Matching is case-insensitive.
func Lookup(name string) (*Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if d, ok := dialects[key]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownDialect, name, strings.Join(primary, ", "))
}

// MustLookup is Lookup for names fixed in program text. Panics on failure.
func MustLookup(name string) *Dialect {
	d, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Names returns the primary names of all registered dialects, sorted.
func Names() []string {
	out := make([]string, len(primary))
	copy(out, primary)
	return out
}
