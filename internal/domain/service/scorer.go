package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Scorer – domain service
// ---------------------------------------------------------------------------

const (
	// DefaultScoreThreshold is the probability at or above which a loan is
	// classified as likely to default.
	DefaultScoreThreshold = 0.5

	// DefaultReasonCodeCount is how many top contributions accompany a score.
	DefaultReasonCodeCount = 5

	minReasonCodeCount = 3
	maxReasonCodeCount = 5
)

// Scorer produces a default probability, a binary decision, and ranked reason
// codes for an encoded loan against a trained artifact. Scoring is pure and
// deterministic.
type Scorer struct {
	threshold float64
	topK      int
}

// NewScorer validates and returns a scorer. The threshold must lie in (0, 1)
// and the reason-code count in [3, 5].
func NewScorer(threshold float64, topK int) (*Scorer, error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("score threshold must be in (0, 1), got %v", threshold)
	}
	if topK < minReasonCodeCount || topK > maxReasonCodeCount {
		return nil, fmt.Errorf("reason code count must be in [%d, %d], got %d", minReasonCodeCount, maxReasonCodeCount, topK)
	}
	return &Scorer{threshold: threshold, topK: topK}, nil
}

// Threshold returns the decision cutoff.
func (s *Scorer) Threshold() float64 { return s.threshold }

// Score evaluates the vector against the artifact. The vector must be encoded
// under the exact schema version the artifact was trained with; anything else
// fails with *SchemaMismatchError.
func (s *Scorer) Score(vec valueobject.FeatureVector, artifact model.ModelArtifact) (valueobject.ScoreResult, error) {
	if vec.SchemaVersion() != artifact.SchemaVersion() || vec.Len() != artifact.FeatureCount() {
		return valueobject.ScoreResult{}, &SchemaMismatchError{
			VectorVersion:   vec.SchemaVersion(),
			ArtifactVersion: artifact.SchemaVersion(),
		}
	}

	values := vec.Values()
	means := artifact.Means()
	scales := artifact.Scales()
	weights := artifact.Weights()
	names := artifact.FeatureNames()

	logit := artifact.Bias()
	contributions := make([]valueobject.ReasonCode, len(values))
	for i, v := range values {
		z := (v - means[i]) / scales[i]
		c := weights[i] * z
		logit += c
		contributions[i] = valueobject.ReasonCode{Feature: names[i], Contribution: c}
	}

	probability := stableSigmoid(logit)

	decision := 0
	if probability >= s.threshold {
		decision = 1
	}

	// Rank by contribution magnitude; stable sort keeps schema order on ties.
	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Contribution) > math.Abs(contributions[j].Contribution)
	})
	k := s.topK
	if k > len(contributions) {
		k = len(contributions)
	}

	return valueobject.NewScoreResult(
		probability,
		decision,
		valueobject.RiskBandFromProbability(probability),
		contributions[:k],
		artifact.ID(),
		artifact.SchemaVersion(),
	)
}

// stableSigmoid evaluates 1/(1+e^-x) without overflow for any finite input:
// for non-negative x it computes the direct form, for negative x the
// algebraically equivalent e^x/(1+e^x), so the exponent is never positive.
func stableSigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	ex := math.Exp(x)
	return ex / (1 + ex)
}
