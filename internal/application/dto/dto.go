package dto

import (
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// TrainModelRequest triggers a training run over all labeled records.
// Hyperparameters are fixed server-side; the request carries no knobs.
type TrainModelRequest struct{}

// ScoreLoanRequest identifies a loan to score. ArtifactID selects a specific
// model artifact; uuid.Nil means the latest one.
type ScoreLoanRequest struct {
	LoanID     uuid.UUID `json:"loan_id"`
	ArtifactID uuid.UUID `json:"artifact_id,omitempty"`
}

// GetScoreRequest identifies a loan whose attached score to retrieve.
type GetScoreRequest struct {
	LoanID uuid.UUID `json:"loan_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ArtifactResponse is the external representation of a trained model artifact.
type ArtifactResponse struct {
	ID              uuid.UUID `json:"id"`
	SchemaVersion   int       `json:"schema_version"`
	FeatureNames    []string  `json:"feature_names"`
	RecordCount     int       `json:"record_count"`
	HoldoutAccuracy float64   `json:"holdout_accuracy"`
	HoldoutAUC      float64   `json:"holdout_auc"`
	TrainedAt       time.Time `json:"trained_at"`
}

// ReasonCodeResponse is one ranked feature contribution on a score.
type ReasonCodeResponse struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"`
}

// ScoreResponse is the external representation of a loan's attached score.
type ScoreResponse struct {
	LoanID        uuid.UUID            `json:"loan_id"`
	Probability   float64              `json:"probability"`
	Decision      int                  `json:"decision"`
	RiskBand      string               `json:"risk_band"`
	ReasonCodes   []ReasonCodeResponse `json:"reason_codes"`
	ArtifactID    uuid.UUID            `json:"artifact_id"`
	SchemaVersion int                  `json:"schema_version"`
	ScoredAt      time.Time            `json:"scored_at"`
}
