package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var cent = decimal.New(1, -2) // 0.01

// Split divides total into n shares accurate to the cent. The base share
// is total/n floored to two decimals; the leftover cents go to the first
// shares, one cent each, so the result always sums back to total.
func Split(total decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		n = 1
	}
	unit := total.DivRound(decimal.NewFromInt(int64(n)), 8).RoundFloor(2)
	distributed := unit.Mul(decimal.NewFromInt(int64(n)))
	remainderCents := int(total.Sub(distributed).Mul(decimal.NewFromInt(100)).Round(0).IntPart())

	shares := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		if i < remainderCents {
			shares[i] = unit.Add(cent)
		} else {
			shares[i] = unit
		}
	}
	return shares
}

// FormatBR renders an amount as Brazilian currency: "R$ 1.234,56".
func FormatBR(amount decimal.Decimal) string {
	s := amount.StringFixed(2) // e.g. "-1234.56"
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + fracPart
	if negative {
		out = "R$ -" + b.String() + "," + fracPart
	}
	return out
}
