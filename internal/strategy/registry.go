package strategy

import (
	"fmt"

	"github.com/vkozyrev/ragdex/internal/manifest"
)

// Active pairs a built strategy with its configured fusion weight.
type Active struct {
	Strategy Strategy
	Weight   float64
}

// Build constructs the active strategy set from project settings, preserving
// declaration order. An unknown strategy ID is an error: silently dropping a
// configured strategy would make fused results inconsistent with settings.
func Build(configs []manifest.StrategyConfig) ([]Active, error) {
	var active []Active
	seen := make(map[string]bool)

	for _, sc := range configs {
		if !sc.Enabled {
			continue
		}
		if seen[sc.ID] {
			return nil, fmt.Errorf("strategy %q configured twice", sc.ID)
		}
		seen[sc.ID] = true

		s, err := byID(sc.ID)
		if err != nil {
			return nil, err
		}

		weight := sc.Weight
		if weight <= 0 {
			weight = 1.0
		}
		active = append(active, Active{Strategy: s, Weight: weight})
	}
	return active, nil
}

// AllIDs returns every registered strategy ID.
func AllIDs() []string {
	return []string{DirectID, KeywordsID, SummaryID}
}

func byID(id string) (Strategy, error) {
	switch id {
	case DirectID:
		return NewDirect(), nil
	case KeywordsID:
		return NewKeywords(), nil
	case SummaryID:
		return NewSummary(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", id)
	}
}
