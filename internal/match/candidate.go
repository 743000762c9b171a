package match

import (
	"sort"

	"object-mapper/internal/meta"
)

// Candidate is a possible source for a target member that no rule accepted.
type Candidate struct {
	Source meta.Member
	Target meta.Member

	NameScore     float64 // normalized Levenshtein similarity (0-1)
	TypeCompat    TypeCompatibilityResult
	CombinedScore float64 // ranking score, higher is better
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Name and type weights of the combined score.
const (
	nameWeight = 0.6
	typeWeight = 0.4
)

// Confidence thresholds for suggestions.
const (
	// DefaultMinScore is the minimum combined score worth reporting.
	DefaultMinScore = 0.5
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.1
)

// RankCandidates scores every source member against target, best first.
func RankCandidates(target meta.Member, sources []meta.Member, checker *Checker) CandidateList {
	candidates := make(CandidateList, 0, len(sources))

	for _, source := range sources {
		nameScore := NameSimilarity(source.Name, target.Name)
		nameScore = max(nameScore, NameSimilarity(StripAccessorPrefix(source.Name), StripAccessorPrefix(target.Name)))

		compat := checker.Score(source.Type, target.Type)

		candidates = append(candidates, Candidate{
			Source:        source,
			Target:        target,
			NameScore:     nameScore,
			TypeCompat:    compat,
			CombinedScore: nameScore*nameWeight + compat.Compatibility.Score()*typeWeight,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface: combined score descending, then source name.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Source.Name < c[j].Source.Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].CombinedScore-c[1].CombinedScore < threshold
}

// AboveThreshold returns candidates with combined score above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.CombinedScore >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Suggest returns up to limit names from options resembling name, most similar
// first. Options below half similarity are dropped; nil when none qualify.
func Suggest(name string, options []string, limit int) []string {
	type scored struct {
		name  string
		score float64
	}

	var ranked []scored

	for _, opt := range options {
		if score := NameSimilarity(name, opt); score >= DefaultMinScore {
			ranked = append(ranked, scored{opt, score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var out []string
	for i := 0; i < len(ranked) && i < limit; i++ {
		out = append(out, ranked[i].name)
	}

	return out
}
