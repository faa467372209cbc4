package infra

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericToInt64(t *testing.T) {
	tests := []struct {
		name string
		in   pgtype.Numeric
		want int64
	}{
		{"zero", Int64ToNumeric(0), 0},
		{"commission", Int64ToNumeric(12_550), 12_550},
		{"refund", Int64ToNumeric(-50_000), -50_000},
		{"column max", Int64ToNumeric(999_999_999_999_999), 999_999_999_999_999},
		{"positive exponent", pgtype.Numeric{Int: big.NewInt(500), Exp: 2, Valid: true}, 50_000},
		{"fraction truncated", pgtype.Numeric{Int: big.NewInt(50_099), Exp: -2, Valid: true}, 500},
		{"negative fraction truncated toward zero", pgtype.Numeric{Int: big.NewInt(-50_099), Exp: -2, Valid: true}, -500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NumericToInt64(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumericToInt64_Rejects(t *testing.T) {
	overflow := new(big.Int).SetInt64(math.MaxInt64)
	overflow.Add(overflow, big.NewInt(1))

	_, err := NumericToInt64(pgtype.Numeric{Valid: false})
	assert.ErrorContains(t, err, "NULL")

	_, err = NumericToInt64(pgtype.Numeric{Int: overflow, Valid: true})
	assert.ErrorContains(t, err, "overflows")

	_, err = NumericToInt64(pgtype.Numeric{NaN: true, Valid: true})
	assert.ErrorContains(t, err, "not finite")
}

func TestInt64ToNumeric_RoundTrip(t *testing.T) {
	for _, v := range []int64{1, -1, 100_000, math.MaxInt64, math.MinInt64} {
		got, err := NumericToInt64(Int64ToNumeric(v))
		require.NoError(t, err, "value: %d", v)
		assert.Equal(t, v, got)
	}
}

func TestSumToInt64_NullIsZero(t *testing.T) {
	v, err := SumToInt64(pgtype.Numeric{Valid: false})
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = SumToInt64(Int64ToNumeric(12_345))
	require.NoError(t, err)
	assert.Equal(t, int64(12_345), v)
}
