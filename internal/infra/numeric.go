package infra

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Money columns are numeric(15,0) holding minor units (cents).

// NumericToInt64 reads a money column. NULL is an error; fractional digits,
// which a numeric(15,0) column never holds, are truncated toward zero.
func NumericToInt64(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}
	return minorUnits(n)
}

// SumToInt64 reads a SUM() over a money column. SUM over no rows yields NULL,
// which is zero here.
func SumToInt64(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, nil
	}
	return minorUnits(n)
}

func minorUnits(n pgtype.Numeric) (int64, error) {
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return 0, fmt.Errorf("numeric value is not finite")
	}
	if n.Int == nil {
		return 0, nil
	}
	bi := decimal.NewFromBigInt(n.Int, n.Exp).BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("numeric value %s overflows int64", bi.String())
	}
	return bi.Int64(), nil
}

// Int64ToNumeric encodes minor units for a money column.
func Int64ToNumeric(v int64) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(v), InfinityModifier: pgtype.Finite, Valid: true}
}
