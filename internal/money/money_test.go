package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSplit(t *testing.T) {
	t.Run("distributes remainder cents to the first shares", func(t *testing.T) {
		shares := Split(dec("100.00"), 3)
		require.Len(t, shares, 3)
		assert.Equal(t, "33.34", shares[0].StringFixed(2))
		assert.Equal(t, "33.33", shares[1].StringFixed(2))
		assert.Equal(t, "33.33", shares[2].StringFixed(2))
	})

	t.Run("single share equals the total", func(t *testing.T) {
		shares := Split(dec("123.45"), 1)
		require.Len(t, shares, 1)
		assert.True(t, shares[0].Equal(dec("123.45")))
	})

	t.Run("even division has no remainder", func(t *testing.T) {
		shares := Split(dec("300.00"), 12)
		require.Len(t, shares, 12)
		for _, s := range shares {
			assert.Equal(t, "25.00", s.StringFixed(2))
		}
	})

	t.Run("sum reconstructs the total exactly", func(t *testing.T) {
		totals := []string{"100.00", "0.01", "99.99", "1000.37", "7.03", "123456.78"}
		for _, raw := range totals {
			total := dec(raw)
			for n := 1; n <= 17; n++ {
				shares := Split(total, n)
				sum := decimal.Zero
				for _, s := range shares {
					assert.True(t, s.GreaterThanOrEqual(decimal.Zero))
					sum = sum.Add(s)
				}
				assert.Truef(t, sum.Equal(total), "total %s over %d shares: sum %s", raw, n, sum)
			}
		}
	})
}

func TestFormatBR(t *testing.T) {
	cases := map[string]string{
		"0.00":       "R$ 0,00",
		"25.00":      "R$ 25,00",
		"1234.56":    "R$ 1.234,56",
		"1234567.89": "R$ 1.234.567,89",
		"-1234.56":   "R$ -1.234,56",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatBR(dec(in)), "input %s", in)
	}
}
