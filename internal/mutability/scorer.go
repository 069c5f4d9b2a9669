package mutability

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"mutafriches/internal/parcel"
	"mutafriches/pkg/numeric"
)

// Contribution is the weighted effect of one criterion on one usage.
type Contribution struct {
	Criterion parcel.Criterion `json:"criterion"`
	Value     string           `json:"value"`
	RawScore  float64          `json:"rawScore"`
	Weight    float64          `json:"weight"`
	Weighted  float64          `json:"weighted"`
}

// UsageResult is the score of one usage within an evaluation.
// Rank 1 is the most suitable usage.
type UsageResult struct {
	Usage       Usage          `json:"usage"`
	Rank        int            `json:"rank"`
	Index       float64        `json:"index"`
	Advantages  float64        `json:"advantages"`
	Constraints float64        `json:"constraints"`
	Explanation string         `json:"explanation"`
	Details     []Contribution `json:"details"`
}

// Scorer turns a parcel into ranked usage results. It holds no mutable state
// and is safe for concurrent use.
type Scorer struct {
	matrix *Matrix
}

// NewScorer returns a scorer over m, or over DefaultMatrix when m is nil.
func NewScorer(m *Matrix) *Scorer {
	if m == nil {
		m = DefaultMatrix()
	}
	return &Scorer{matrix: m}
}

// Matrix returns the scoring matrix in use.
func (s *Scorer) Matrix() *Matrix { return s.matrix }

// Score returns one result per usage, ordered by rank. Missing and unknown
// criteria do not contribute, so an empty parcel scores 0 everywhere.
func (s *Scorer) Score(p parcel.Parcel) []UsageResult {
	values := p.Criteria()
	results := make([]UsageResult, 0, UsageCount)
	for i, usage := range Usages {
		results = append(results, s.scoreUsage(i, usage, values))
	}

	// Stable: equal indices keep usage enumeration order.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Index > results[b].Index
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

func (s *Scorer) scoreUsage(i int, usage Usage, values []parcel.Value) UsageResult {
	res := UsageResult{Usage: usage, Details: []Contribution{}}
	for _, v := range values {
		if !v.Known() {
			continue
		}
		scores, weight, ok := s.matrix.lookup(v)
		if !ok {
			continue
		}
		weighted := scores[i] * weight
		if weighted >= 0 {
			res.Advantages += weighted
		} else {
			res.Constraints += -weighted
		}
		res.Details = append(res.Details, Contribution{
			Criterion: v.Criterion,
			Value:     displayValue(v),
			RawScore:  scores[i],
			Weight:    weight,
			Weighted:  weighted,
		})
	}
	res.Index = ComputeIndex(res.Advantages, res.Constraints)
	res.Explanation = explain(res)
	return res
}

// ComputeIndex returns round1(advantages / (advantages + constraints) * 100),
// or 0 when both are zero.
func ComputeIndex(advantages, constraints float64) float64 {
	total := advantages + constraints
	if total == 0 {
		return 0
	}
	return numeric.Round1(advantages / total * 100)
}

func displayValue(v parcel.Value) string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Key
}

const explainTop = 3

func explain(r UsageResult) string {
	if len(r.Details) == 0 {
		return "no criterion available for this usage"
	}
	pros := slices.Clone(r.Details)
	slices.SortStableFunc(pros, func(a, b Contribution) int { return cmp.Compare(b.Weighted, a.Weighted) })
	cons := slices.Clone(r.Details)
	slices.SortStableFunc(cons, func(a, b Contribution) int { return cmp.Compare(a.Weighted, b.Weighted) })

	var b strings.Builder
	fmt.Fprintf(&b, "index %.1f from %d criteria", r.Index, len(r.Details))
	if names := topNames(pros, func(c Contribution) bool { return c.Weighted > 0 }); names != "" {
		fmt.Fprintf(&b, "; main advantages: %s", names)
	}
	if names := topNames(cons, func(c Contribution) bool { return c.Weighted < 0 }); names != "" {
		fmt.Fprintf(&b, "; main constraints: %s", names)
	}
	return b.String()
}

func topNames(sorted []Contribution, keep func(Contribution) bool) string {
	names := make([]string, 0, explainTop)
	for _, c := range sorted {
		if len(names) == explainTop {
			break
		}
		if keep(c) {
			names = append(names, string(c.Criterion))
		}
	}
	return strings.Join(names, ", ")
}
