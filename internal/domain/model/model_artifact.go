package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// ModelArtifact aggregate root
// ---------------------------------------------------------------------------

// ModelArtifact is an immutable snapshot of a trained logistic model: its
// parameters, the normalization statistics captured at training time, and
// provenance. A new training run always produces a new artifact; existing
// artifacts are superseded, never mutated or deleted.
type ModelArtifact struct {
	id              uuid.UUID
	schemaVersion   int
	featureNames    []string
	means           []float64
	scales          []float64
	weights         []float64
	bias            float64
	trainedAt       time.Time
	recordCount     int
	holdoutAccuracy float64
	holdoutAUC      float64
}

// NewModelArtifact validates and builds an artifact from a completed training run.
func NewModelArtifact(
	schemaVersion int,
	featureNames []string,
	means, scales, weights []float64,
	bias float64,
	trainedAt time.Time,
	recordCount int,
	holdoutAccuracy, holdoutAUC float64,
) (ModelArtifact, error) {
	if schemaVersion <= 0 {
		return ModelArtifact{}, fmt.Errorf("schema version must be positive, got %d", schemaVersion)
	}
	n := len(featureNames)
	if n == 0 {
		return ModelArtifact{}, errors.New("feature names are required")
	}
	if len(means) != n || len(scales) != n || len(weights) != n {
		return ModelArtifact{}, fmt.Errorf(
			"parameter lengths must match %d features: means=%d scales=%d weights=%d",
			n, len(means), len(scales), len(weights),
		)
	}
	for i, s := range scales {
		if s <= 0 {
			return ModelArtifact{}, fmt.Errorf("scale for feature %q must be positive, got %v", featureNames[i], s)
		}
	}
	if recordCount <= 0 {
		return ModelArtifact{}, fmt.Errorf("record count must be positive, got %d", recordCount)
	}

	return ModelArtifact{
		id:              uuid.New(),
		schemaVersion:   schemaVersion,
		featureNames:    copyStrings(featureNames),
		means:           copyFloats(means),
		scales:          copyFloats(scales),
		weights:         copyFloats(weights),
		bias:            bias,
		trainedAt:       trainedAt,
		recordCount:     recordCount,
		holdoutAccuracy: holdoutAccuracy,
		holdoutAUC:      holdoutAUC,
	}, nil
}

// ReconstructModelArtifact rebuilds an artifact from persistence without validation.
func ReconstructModelArtifact(
	id uuid.UUID,
	schemaVersion int,
	featureNames []string,
	means, scales, weights []float64,
	bias float64,
	trainedAt time.Time,
	recordCount int,
	holdoutAccuracy, holdoutAUC float64,
) ModelArtifact {
	return ModelArtifact{
		id:              id,
		schemaVersion:   schemaVersion,
		featureNames:    copyStrings(featureNames),
		means:           copyFloats(means),
		scales:          copyFloats(scales),
		weights:         copyFloats(weights),
		bias:            bias,
		trainedAt:       trainedAt,
		recordCount:     recordCount,
		holdoutAccuracy: holdoutAccuracy,
		holdoutAUC:      holdoutAUC,
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a ModelArtifact) ID() uuid.UUID            { return a.id }
func (a ModelArtifact) SchemaVersion() int       { return a.schemaVersion }
func (a ModelArtifact) FeatureNames() []string   { return copyStrings(a.featureNames) }
func (a ModelArtifact) Means() []float64         { return copyFloats(a.means) }
func (a ModelArtifact) Scales() []float64        { return copyFloats(a.scales) }
func (a ModelArtifact) Weights() []float64       { return copyFloats(a.weights) }
func (a ModelArtifact) Bias() float64            { return a.bias }
func (a ModelArtifact) TrainedAt() time.Time     { return a.trainedAt }
func (a ModelArtifact) RecordCount() int         { return a.recordCount }
func (a ModelArtifact) HoldoutAccuracy() float64 { return a.holdoutAccuracy }
func (a ModelArtifact) HoldoutAUC() float64      { return a.holdoutAUC }

// FeatureCount returns the number of model parameters (one per feature).
func (a ModelArtifact) FeatureCount() int { return len(a.weights) }

func copyStrings(src []string) []string {
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

func copyFloats(src []float64) []float64 {
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}
