package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// artifactFormatVersion is the current serialization format for stored model
// artifacts. Readers accept documents at or below this version and refuse
// newer ones instead of guessing at unknown fields.
const artifactFormatVersion = 1

// UnsupportedArtifactFormatError reports a stored artifact written by a newer
// release than this binary understands.
type UnsupportedArtifactFormatError struct {
	ArtifactID uuid.UUID
	Format     int
	Supported  int
}

func (e *UnsupportedArtifactFormatError) Error() string {
	return fmt.Sprintf(
		"artifact %s uses format version %d, this binary supports up to %d",
		e.ArtifactID, e.Format, e.Supported,
	)
}

// artifactDocument is the JSON shape persisted for a model artifact.
type artifactDocument struct {
	FormatVersion   int       `json:"format_version"`
	ID              uuid.UUID `json:"id"`
	SchemaVersion   int       `json:"schema_version"`
	FeatureNames    []string  `json:"feature_names"`
	Means           []float64 `json:"means"`
	Scales          []float64 `json:"scales"`
	Weights         []float64 `json:"weights"`
	Bias            float64   `json:"bias"`
	TrainedAt       time.Time `json:"trained_at"`
	RecordCount     int       `json:"record_count"`
	HoldoutAccuracy float64   `json:"holdout_accuracy"`
	HoldoutAUC      float64   `json:"holdout_auc"`
}

func marshalArtifact(artifact model.ModelArtifact) ([]byte, error) {
	doc := artifactDocument{
		FormatVersion:   artifactFormatVersion,
		ID:              artifact.ID(),
		SchemaVersion:   artifact.SchemaVersion(),
		FeatureNames:    artifact.FeatureNames(),
		Means:           artifact.Means(),
		Scales:          artifact.Scales(),
		Weights:         artifact.Weights(),
		Bias:            artifact.Bias(),
		TrainedAt:       artifact.TrainedAt(),
		RecordCount:     artifact.RecordCount(),
		HoldoutAccuracy: artifact.HoldoutAccuracy(),
		HoldoutAUC:      artifact.HoldoutAUC(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact %s: %w", artifact.ID(), err)
	}
	return data, nil
}

func unmarshalArtifact(data []byte) (model.ModelArtifact, error) {
	var doc artifactDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.ModelArtifact{}, fmt.Errorf("unmarshal artifact document: %w", err)
	}
	if doc.FormatVersion > artifactFormatVersion {
		return model.ModelArtifact{}, &UnsupportedArtifactFormatError{
			ArtifactID: doc.ID,
			Format:     doc.FormatVersion,
			Supported:  artifactFormatVersion,
		}
	}

	n := len(doc.FeatureNames)
	if n == 0 || len(doc.Means) != n || len(doc.Scales) != n || len(doc.Weights) != n {
		return model.ModelArtifact{}, fmt.Errorf("artifact %s: inconsistent parameter lengths", doc.ID)
	}

	return model.ReconstructModelArtifact(
		doc.ID, doc.SchemaVersion, doc.FeatureNames,
		doc.Means, doc.Scales, doc.Weights, doc.Bias,
		doc.TrainedAt, doc.RecordCount,
		doc.HoldoutAccuracy, doc.HoldoutAUC,
	), nil
}
