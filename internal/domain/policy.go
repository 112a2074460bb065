package domain

// Criterion names a ranking objective recognized by the policy.
type Criterion string

// Recognized ranking criteria.
const (
	CriterionPrice          Criterion = "price"
	CriterionDuration       Criterion = "duration"
	CriterionTransfers      Criterion = "transfers"
	CriterionConnectionRisk Criterion = "connection_risk"
)

// criterionPreference is the fixed tie-break order used when two criteria
// carry the same weight: price beats duration beats transfers beats
// connection risk.
var criterionPreference = []Criterion{
	CriterionPrice,
	CriterionDuration,
	CriterionTransfers,
	CriterionConnectionRisk,
}

// Weights maps each ranking criterion to its non-negative importance.
// A zero weight removes the criterion from the score entirely.
type Weights struct {
	Price          float64 `json:"price"`
	Duration       float64 `json:"duration"`
	Transfers      float64 `json:"transfers"`
	ConnectionRisk float64 `json:"connection_risk"`
}

// Get returns the weight for a criterion, or 0 for an unrecognized one.
func (w Weights) Get(c Criterion) float64 {
	switch c {
	case CriterionPrice:
		return w.Price
	case CriterionDuration:
		return w.Duration
	case CriterionTransfers:
		return w.Transfers
	case CriterionConnectionRisk:
		return w.ConnectionRisk
	default:
		return 0
	}
}

// Limits holds the hard bounds a policy imposes on offers.
type Limits struct {
	// MaxTransfersTotal is used both as a feasibility cutoff before ranking
	// and as the normalization denominator for the transfers criterion.
	MaxTransfersTotal int `json:"max_transfers_total"`
}

// Policy is the declarative weighting configuration controlling ranking and
// feasibility filtering. It is validated once at the load boundary and
// treated as immutable input everywhere else.
type Policy struct {
	Weights Weights `json:"weights"`
	Limits  Limits  `json:"limits"`
}

// Feasible reports whether an offer satisfies the policy's hard limits.
func (p Policy) Feasible(o Offer) bool {
	return o.Stops <= p.Limits.MaxTransfersTotal
}

// DominantCriterion returns the criterion with the strictly largest weight.
// Ties resolve by the fixed preference order price > duration > transfers >
// connection_risk, so the result is deterministic for any weight set.
func (p Policy) DominantCriterion() Criterion {
	best := criterionPreference[0]
	bestWeight := p.Weights.Get(best)
	for _, c := range criterionPreference[1:] {
		if p.Weights.Get(c) > bestWeight {
			best = c
			bestWeight = p.Weights.Get(c)
		}
	}
	return best
}
