package fusion

import (
	"fmt"
	"sort"

	"github.com/vkozyrev/ragdex/internal/vectorstore"
)

// Method selects how per-strategy result lists are combined.
type Method string

const (
	// MethodRRF is Reciprocal Rank Fusion: rank-based, robust to differing
	// score scales across strategies.
	MethodRRF Method = "rrf"
	// MethodWeighted sums weight × raw similarity score with no rank damping.
	MethodWeighted Method = "weighted"
)

// RRFK is the standard damping constant for Reciprocal Rank Fusion.
const RRFK = 60

// Default is the fusion method used when neither the request nor the project
// settings specify one.
const Default = MethodRRF

// ParseMethod validates a fusion method name. Empty input yields the default.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "":
		return Default, nil
	case MethodRRF, MethodWeighted:
		return Method(s), nil
	default:
		return "", fmt.Errorf("unknown fusion method %q", s)
	}
}

// StrategyResults is one strategy's ranked result list with its fusion weight.
// Results must already be sorted by the strategy's own similarity, descending.
type StrategyResults struct {
	StrategyID string
	Weight     float64
	Results    []vectorstore.Result
}

// Result is a fused result: the record, its combined score, and the raw
// per-strategy scores it was fused from.
type Result struct {
	vectorstore.Record
	FusedScore     float64
	StrategyScores map[string]float32
}

// Fuse merges the per-strategy lists into one list ranked by fused score,
// truncated to topK. Records are matched across lists by vector-record ID.
// Ties keep encounter order: first list order, then rank within a list.
func Fuse(method Method, lists []StrategyResults, topK int) []Result {
	type slot struct {
		result Result
		order  int
	}
	slots := make(map[string]*slot)
	var ordered []*slot

	for _, list := range lists {
		for rank, r := range list.Results {
			var contribution float64
			switch method {
			case MethodWeighted:
				contribution = list.Weight * float64(r.Score)
			default:
				// 1-based rank with the standard damping constant.
				contribution = list.Weight / float64(RRFK+rank+1)
			}

			s, ok := slots[r.ID]
			if !ok {
				s = &slot{
					result: Result{
						Record:         r.Record,
						StrategyScores: make(map[string]float32),
					},
					order: len(ordered),
				}
				slots[r.ID] = s
				ordered = append(ordered, s)
			}
			s.result.FusedScore += contribution
			s.result.StrategyScores[list.StrategyID] = r.Score
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].result.FusedScore > ordered[j].result.FusedScore
	})

	if topK > 0 && len(ordered) > topK {
		ordered = ordered[:topK]
	}

	fused := make([]Result, len(ordered))
	for i, s := range ordered {
		fused[i] = s.result
	}
	return fused
}
