// Package policy loads the declarative travel policy that controls offer
// ranking and feasibility filtering. The raw configuration file is parsed and
// validated here, at the load boundary; everything downstream only ever sees
// the validated domain.Policy value.
package policy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/skysweep/skysweep/internal/domain"
)

//go:embed travel_policy.json
var defaultPolicyJSON []byte

// file mirrors the on-disk policy shape: weights live under
// objectives.weights, limits under defaults.
type file struct {
	Objectives struct {
		Weights map[string]float64 `json:"weights"`
	} `json:"objectives"`
	Defaults struct {
		MaxTransfersTotal *int `json:"max_transfers_total"`
	} `json:"defaults"`
}

// fallbackMaxTransfers applies when the file omits max_transfers_total.
const fallbackMaxTransfers = 2

// Default returns the embedded travel policy.
// The embedded file is validated at build time by the loader tests, so this
// cannot fail at runtime.
func Default() domain.Policy {
	p, err := parse(defaultPolicyJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded travel policy is invalid: %v", err))
	}
	return p
}

// LoadFile reads and validates a policy from the given path.
// An empty path returns the embedded default.
func LoadFile(path string) (domain.Policy, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	p, err := parse(data)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	return p, nil
}

// parse decodes and validates the raw policy document. Unknown weight keys
// are ignored, missing ones default to 0, and negative weights are clamped
// to 0 so a misconfigured file cannot invert the ranking order.
func parse(data []byte) (domain.Policy, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return domain.Policy{}, err
	}

	w := f.Objectives.Weights
	p := domain.Policy{
		Weights: domain.Weights{
			Price:          clamp(w[string(domain.CriterionPrice)]),
			Duration:       clamp(w[string(domain.CriterionDuration)]),
			Transfers:      clamp(w[string(domain.CriterionTransfers)]),
			ConnectionRisk: clamp(w[string(domain.CriterionConnectionRisk)]),
		},
	}

	if f.Defaults.MaxTransfersTotal != nil {
		if *f.Defaults.MaxTransfersTotal < 0 {
			return domain.Policy{}, fmt.Errorf("max_transfers_total must be non-negative, got %d", *f.Defaults.MaxTransfersTotal)
		}
		p.Limits.MaxTransfersTotal = *f.Defaults.MaxTransfersTotal
	} else {
		p.Limits.MaxTransfersTotal = fallbackMaxTransfers
	}

	total := p.Weights.Price + p.Weights.Duration + p.Weights.Transfers + p.Weights.ConnectionRisk
	if total == 0 {
		return domain.Policy{}, fmt.Errorf("policy must define at least one positive objective weight")
	}

	return p, nil
}

func clamp(w float64) float64 {
	if w < 0 {
		return 0
	}
	return w
}
