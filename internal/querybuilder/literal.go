package querybuilder

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/recon/internal/sqlexpr"
)

// keyTimestampLayout renders time keys as warehouse-neutral literals.
const keyTimestampLayout = "2006-01-02 15:04:05.999999999"

// keyLiteral converts a sample key value into a SQL literal.
func keyLiteral(v any) (sqlexpr.Expr, error) {
	switch x := v.(type) {
	case nil:
		return &sqlexpr.Null{}, nil
	case string:
		return sqlexpr.Str(x), nil
	case bool:
		return &sqlexpr.Boolean{Value: x}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return sqlexpr.Num(fmt.Sprint(x)), nil
	case float32:
		return floatLiteral(float64(x))
	case float64:
		return floatLiteral(x)
	case decimal.Decimal:
		return sqlexpr.Num(x.String()), nil
	case time.Time:
		return sqlexpr.Str(x.UTC().Format(keyTimestampLayout)), nil
	default:
		return nil, fmt.Errorf("unsupported key value type %T", v)
	}
}

func floatLiteral(f float64) (sqlexpr.Expr, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("key value %v has no SQL literal", f)
	}
	return sqlexpr.Num(decimal.NewFromFloat(f).String()), nil
}
