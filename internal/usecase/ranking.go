package usecase

import (
	"sort"

	"github.com/skysweep/skysweep/internal/domain"
)

// Ranked decorates an offer with its computed score for the duration of one
// ranking call. The score is not part of the offer's identity and is never
// persisted.
type Ranked struct {
	domain.Offer
	Score float64 `json:"score"`
}

// Rank orders offers best-first under the policy's weighted-sum score and
// returns new decorated copies; the input slice is never reordered or
// mutated. The order is fully deterministic regardless of input order: exact
// score ties break by lower total duration, then fewer stops, then lower
// price, then lexicographically smaller id.
//
// Offers are scored on four criteria, each normalized to [0,1] with lower
// meaning better:
//
//   - price and duration: min-max normalized across the input set, with the
//     span floored at 1 so a degenerate set (all equal) scores 0 everywhere
//     instead of dividing by zero
//   - transfers: min(stops, maxTransfers) / maxTransfers
//   - connection risk: 0 for direct, 0.5 for one stop, 1 for two or more
//     (a proxy; no explicit risk signal exists in the provider data)
//
// Negative or unrecognized weights contribute 0, preserving lower-is-better.
func Rank(offers []domain.Offer, policy domain.Policy) []Ranked {
	if len(offers) == 0 {
		return []Ranked{}
	}

	minPrice, maxPrice := priceRange(offers)
	minDuration, maxDuration := durationRange(offers)

	spanPrice := spanOrOne(maxPrice - minPrice)
	spanDuration := spanOrOne(float64(maxDuration - minDuration))

	maxTransfers := policy.Limits.MaxTransfersTotal
	if maxTransfers < 1 {
		maxTransfers = 1
	}

	w := clampedWeights(policy.Weights)

	ranked := make([]Ranked, len(offers))
	for i, o := range offers {
		priceNorm := (o.PriceTotal - minPrice) / spanPrice
		durationNorm := float64(o.DurationTotalMinutes-minDuration) / spanDuration
		transfersNorm := float64(min(o.Stops, maxTransfers)) / float64(maxTransfers)
		riskNorm := connectionRisk(o.Stops)

		ranked[i] = Ranked{
			Offer: o,
			Score: w.Price*priceNorm +
				w.Duration*durationNorm +
				w.Transfers*transfersNorm +
				w.ConnectionRisk*riskNorm,
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.DurationTotalMinutes != b.DurationTotalMinutes {
			return a.DurationTotalMinutes < b.DurationTotalMinutes
		}
		if a.Stops != b.Stops {
			return a.Stops < b.Stops
		}
		if a.PriceTotal != b.PriceTotal {
			return a.PriceTotal < b.PriceTotal
		}
		return a.ID < b.ID
	})

	return ranked
}

// RankOffers is Rank without the score decoration, for callers that only
// need the ordering.
func RankOffers(offers []domain.Offer, policy domain.Policy) []domain.Offer {
	ranked := Rank(offers, policy)
	result := make([]domain.Offer, len(ranked))
	for i, r := range ranked {
		result[i] = r.Offer
	}
	return result
}

// Rationale templates keyed by the policy's dominant criterion.
const (
	reasonPriceLed     = "Ordered by price, weighing duration and connections."
	reasonDurationLed  = "Prioritizing total travel time and safe connections."
	reasonTransfersLed = "Minimizing transfers while balancing price and duration."
	reasonBalanced     = "Balancing price, duration and transfers."
)

// Explain returns a short plain-language rationale describing the dominant
// ranking criterion of the policy.
func Explain(policy domain.Policy) string {
	switch policy.DominantCriterion() {
	case domain.CriterionPrice:
		return reasonPriceLed
	case domain.CriterionDuration:
		return reasonDurationLed
	case domain.CriterionTransfers:
		return reasonTransfersLed
	default:
		return reasonBalanced
	}
}

// connectionRisk is the stop-count risk proxy: direct flights carry none,
// one connection carries half, two or more carry full risk.
func connectionRisk(stops int) float64 {
	switch {
	case stops <= 0:
		return 0
	case stops == 1:
		return 0.5
	default:
		return 1
	}
}

// clampedWeights floors every weight at 0 so a misconfigured negative weight
// cannot invert the lower-score-is-better ordering.
func clampedWeights(w domain.Weights) domain.Weights {
	return domain.Weights{
		Price:          max(w.Price, 0),
		Duration:       max(w.Duration, 0),
		Transfers:      max(w.Transfers, 0),
		ConnectionRisk: max(w.ConnectionRisk, 0),
	}
}

// spanOrOne floors a normalization span at 1 to avoid dividing by zero on
// degenerate input sets.
func spanOrOne(span float64) float64 {
	if span < 1 {
		return 1
	}
	return span
}

// priceRange finds the minimum and maximum price across all offers.
func priceRange(offers []domain.Offer) (minPrice, maxPrice float64) {
	minPrice, maxPrice = offers[0].PriceTotal, offers[0].PriceTotal
	for _, o := range offers[1:] {
		if o.PriceTotal < minPrice {
			minPrice = o.PriceTotal
		}
		if o.PriceTotal > maxPrice {
			maxPrice = o.PriceTotal
		}
	}
	return minPrice, maxPrice
}

// durationRange finds the minimum and maximum total duration across all offers.
func durationRange(offers []domain.Offer) (minDuration, maxDuration int) {
	minDuration, maxDuration = offers[0].DurationTotalMinutes, offers[0].DurationTotalMinutes
	for _, o := range offers[1:] {
		if o.DurationTotalMinutes < minDuration {
			minDuration = o.DurationTotalMinutes
		}
		if o.DurationTotalMinutes > maxDuration {
			maxDuration = o.DurationTotalMinutes
		}
	}
	return minDuration, maxDuration
}
