package triage

import (
	"fmt"
	"strings"
)

// Likelihood is the safe-search scale returned by image annotation services.
type Likelihood string

var likelihoodRank = map[Likelihood]int{
	"UNKNOWN":       0,
	"VERY_UNLIKELY": 1,
	"UNLIKELY":      2,
	"POSSIBLE":      3,
	"LIKELY":        4,
	"VERY_LIKELY":   5,
}

// Rank orders likelihoods; unrecognised values rank as UNKNOWN.
func (l Likelihood) Rank() int {
	return likelihoodRank[Likelihood(strings.ToUpper(string(l)))]
}

// Label is one detected label with its confidence in [0, 1].
type Label struct {
	Description string
	Score       float64
}

// ScoringRules turns labels and a violence likelihood into points.
type ScoringRules struct {
	Keywords           []string
	HighConfidence     float64
	MediumConfidence   float64
	ViolenceLikelihood Likelihood
	ViolencePoints     int
	Threshold          int
}

// DefaultScoringRules returns the stock keyword list and point scale.
func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		Keywords: []string{
			"fire", "flame", "smoke", "burning", "ambulance", "police",
			"fire engine", "accident", "crash", "blood", "injured", "emergency",
		},
		HighConfidence:     0.85,
		MediumConfidence:   0.70,
		ViolenceLikelihood: "LIKELY",
		ViolencePoints:     2,
		Threshold:          2,
	}
}

// Score awards 3, 2 or 1 points for every keyword contained in a label,
// depending on the label's confidence, plus ViolencePoints when violence
// reaches ViolenceLikelihood. The verdict is an emergency at Threshold points.
func (r ScoringRules) Score(labels []Label, violence Likelihood) Verdict {
	v := Verdict{Strategy: StrategyVision}
	for _, l := range labels {
		desc := strings.ToLower(l.Description)
		for _, k := range r.Keywords {
			if !strings.Contains(desc, strings.ToLower(k)) {
				continue
			}
			switch {
			case l.Score > r.HighConfidence:
				v.Score += 3
			case l.Score > r.MediumConfidence:
				v.Score += 2
			default:
				v.Score++
			}
			v.Signals = append(v.Signals, fmt.Sprintf("%s (%.2f)", desc, l.Score))
		}
	}
	if violence.Rank() >= r.ViolenceLikelihood.Rank() && r.ViolenceLikelihood.Rank() > 0 {
		v.Score += r.ViolencePoints
		v.Signals = append(v.Signals, "violence "+strings.ToLower(string(violence)))
	}
	v.Emergency = v.Score >= r.Threshold
	return v
}
