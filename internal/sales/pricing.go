package sales

import "math"

// clampDiscount caps a requested percentage discount at the product's
// maximum. Negative requests count as zero.
func clampDiscount(requested, max float64) float64 {
	if requested < 0 {
		requested = 0
	}
	return math.Min(requested, max)
}

// linePrice is the discounted total for one line, rounded to cents.
func linePrice(unitPrice, discount float64, quantity int64) float64 {
	return round2((unitPrice - unitPrice*discount/100) * float64(quantity))
}

// sumItems totals the stored line prices, rounded to cents.
func sumItems(items []LineItem) float64 {
	sum := 0.0
	for _, item := range items {
		sum += item.FinalPrice
	}
	return round2(sum)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
