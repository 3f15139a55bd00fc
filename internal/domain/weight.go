package domain

import "strings"

// Per-unit weights (kg) by product bucket. Springs and single absorbers go
// out in small boxes, a full set ships as one large parcel.
const (
	weightAxlePair    = 5
	weightFullSet     = 10
	weightSportSpring = 8
	weightDefault     = 5
)

// EstimateWeight sums the shipment weight for an order's items. Rate checks
// and shipment submissions must both go through here so the two quotes can
// never drift apart. Position tags win over type tags; the first matching
// bucket takes the item. Unknown or empty tags fall into the default bucket,
// non-positive quantities contribute nothing.
func EstimateWeight(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		qty := float64(it.Quantity)
		switch {
		case strings.Contains(it.Position, "FRONT") || strings.Contains(it.Position, "REAR"):
			total += weightAxlePair * qty
		case strings.Contains(it.Position, "1SET"):
			total += weightFullSet * qty
		case strings.Contains(it.Type, "Sport Spring"):
			total += weightSportSpring * qty
		default:
			total += weightDefault * qty
		}
	}
	return total
}
