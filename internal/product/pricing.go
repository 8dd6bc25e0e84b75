package product

import (
	"github.com/shopspring/decimal"
)

// ResolvePrice picks the caller's tier price, then the first tier, then the
// flat price. A product with neither is priced at zero.
func ResolvePrice(tiers []TierPrice, flat decimal.NullDecimal, tier string) decimal.Decimal {
	for _, t := range tiers {
		if t.TierName == tier {
			return t.Price
		}
	}
	if len(tiers) > 0 {
		return tiers[0].Price
	}
	if flat.Valid {
		return flat.Decimal
	}
	return decimal.Zero
}

// ToMinor converts a major-unit amount to minor units (cents).
func ToMinor(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromMinor converts minor units (cents) to a major-unit amount.
func FromMinor(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

func boundsOrDefault(lo, hi int) (int, int) {
	if lo < 1 {
		lo = DefaultMinQuantity
	}
	if hi < 1 {
		hi = DefaultMaxQuantity
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
