package event

import (
	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Model lifecycle events
// ---------------------------------------------------------------------------

// ModelTrained is raised when a training run completes and a new artifact
// has been produced.
type ModelTrained struct {
	events.BaseEvent
	SchemaVersion   int     `json:"schema_version"`
	RecordCount     int     `json:"record_count"`
	HoldoutAccuracy float64 `json:"holdout_accuracy"`
	HoldoutAUC      float64 `json:"holdout_auc"`
}

func NewModelTrained(artifactID uuid.UUID, schemaVersion, recordCount int, holdoutAccuracy, holdoutAUC float64) ModelTrained {
	return ModelTrained{
		BaseEvent:       events.NewBaseEvent("risk.model.trained", artifactID, "ModelArtifact"),
		SchemaVersion:   schemaVersion,
		RecordCount:     recordCount,
		HoldoutAccuracy: holdoutAccuracy,
		HoldoutAUC:      holdoutAUC,
	}
}

// ---------------------------------------------------------------------------
// Scoring events
// ---------------------------------------------------------------------------

// LoanScored is raised when a score is attached to a previously unscored record.
type LoanScored struct {
	events.BaseEvent
	ArtifactID  uuid.UUID `json:"artifact_id"`
	Probability float64   `json:"probability"`
	Decision    int       `json:"decision"`
	RiskBand    string    `json:"risk_band"`
}

func NewLoanScored(recordID, artifactID uuid.UUID, probability float64, decision int, riskBand string) LoanScored {
	return LoanScored{
		BaseEvent:   events.NewBaseEvent("risk.loan.scored", recordID, "LoanRecord"),
		ArtifactID:  artifactID,
		Probability: probability,
		Decision:    decision,
		RiskBand:    riskBand,
	}
}

// ScoreSuperseded is raised when rescoring replaces an existing result under
// the VERSION_AND_REPLACE overwrite policy.
type ScoreSuperseded struct {
	events.BaseEvent
	ArtifactID       uuid.UUID `json:"artifact_id"`
	Probability      float64   `json:"probability"`
	Decision         int       `json:"decision"`
	PriorArtifactID  uuid.UUID `json:"prior_artifact_id"`
	PriorProbability float64   `json:"prior_probability"`
	PriorDecision    int       `json:"prior_decision"`
}

func NewScoreSuperseded(
	recordID, artifactID uuid.UUID,
	probability float64, decision int,
	priorArtifactID uuid.UUID,
	priorProbability float64, priorDecision int,
) ScoreSuperseded {
	return ScoreSuperseded{
		BaseEvent:        events.NewBaseEvent("risk.loan.score_superseded", recordID, "LoanRecord"),
		ArtifactID:       artifactID,
		Probability:      probability,
		Decision:         decision,
		PriorArtifactID:  priorArtifactID,
		PriorProbability: priorProbability,
		PriorDecision:    priorDecision,
	}
}
