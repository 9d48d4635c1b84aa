package valueobject

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors raised by score attachment and retrieval.
var (
	// ErrAlreadyScored is returned when attaching a score to an already-scored
	// record under the REJECT overwrite policy.
	ErrAlreadyScored = errors.New("loan record already scored")

	// ErrNotScored is returned when a score is requested for a record that
	// has none attached.
	ErrNotScored = errors.New("loan record has no score attached")
)

// ReasonCode is one ranked feature contribution explaining a probability.
// Contribution is the model's own linear term (weight * standardized value);
// positive contributions push the probability toward default.
type ReasonCode struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// IncreasesRisk reports whether the feature pushed the probability up.
func (rc ReasonCode) IncreasesRisk() bool { return rc.Contribution > 0 }

// Direction renders the contribution sign for human consumption.
func (rc ReasonCode) Direction() string {
	if rc.IncreasesRisk() {
		return "increases_risk"
	}
	return "decreases_risk"
}

// ---------------------------------------------------------------------------
// ScoreResult – immutable value object
// ---------------------------------------------------------------------------

// ScoreResult is a complete scoring outcome: probability, thresholded
// decision, risk band, ranked reason codes, and the identity of the artifact
// that produced it. It is attached to exactly one loan record and is
// replaced, never merged, on rescoring.
type ScoreResult struct {
	probability   float64
	decision      int
	band          RiskBand
	reasonCodes   []ReasonCode
	artifactID    uuid.UUID
	schemaVersion int
}

// NewScoreResult validates and builds a ScoreResult. Probability and decision
// are only ever set together; a partially populated result cannot exist.
func NewScoreResult(
	probability float64,
	decision int,
	band RiskBand,
	reasonCodes []ReasonCode,
	artifactID uuid.UUID,
	schemaVersion int,
) (ScoreResult, error) {
	if probability < 0 || probability > 1 {
		return ScoreResult{}, fmt.Errorf("probability must be in [0,1], got %v", probability)
	}
	if decision != 0 && decision != 1 {
		return ScoreResult{}, fmt.Errorf("decision must be 0 or 1, got %d", decision)
	}
	if band.IsZero() {
		return ScoreResult{}, errors.New("risk band is required")
	}
	if len(reasonCodes) == 0 {
		return ScoreResult{}, errors.New("at least one reason code is required")
	}
	if artifactID == uuid.Nil {
		return ScoreResult{}, errors.New("artifact ID is required")
	}
	if schemaVersion <= 0 {
		return ScoreResult{}, fmt.Errorf("schema version must be positive, got %d", schemaVersion)
	}

	copied := make([]ReasonCode, len(reasonCodes))
	copy(copied, reasonCodes)

	return ScoreResult{
		probability:   probability,
		decision:      decision,
		band:          band,
		reasonCodes:   copied,
		artifactID:    artifactID,
		schemaVersion: schemaVersion,
	}, nil
}

// Probability returns the default probability in [0,1].
func (s ScoreResult) Probability() float64 { return s.probability }

// Decision returns the thresholded binary prediction (1 = default).
func (s ScoreResult) Decision() int { return s.decision }

// Band returns the coarse risk band for the probability.
func (s ScoreResult) Band() RiskBand { return s.band }

// ReasonCodes returns a copy of the ranked reason codes.
func (s ScoreResult) ReasonCodes() []ReasonCode {
	out := make([]ReasonCode, len(s.reasonCodes))
	copy(out, s.reasonCodes)
	return out
}

// ArtifactID identifies the model artifact that produced this result.
func (s ScoreResult) ArtifactID() uuid.UUID { return s.artifactID }

// SchemaVersion returns the feature schema version the result was scored under.
func (s ScoreResult) SchemaVersion() int { return s.schemaVersion }
