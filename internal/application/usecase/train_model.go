package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
)

// TrainModelUseCase runs a full training pass: it loads every labeled record,
// encodes it under the trainer's schema, fits a fresh model, persists the
// resulting artifact, and publishes the ModelTrained event.
type TrainModelUseCase struct {
	recordRepo   port.LoanRecordRepository
	artifactRepo port.ArtifactRepository
	publisher    port.EventPublisher
	encoder      *service.FeatureEncoder
	trainer      *service.Trainer
}

// NewTrainModelUseCase wires dependencies.
func NewTrainModelUseCase(
	recordRepo port.LoanRecordRepository,
	artifactRepo port.ArtifactRepository,
	publisher port.EventPublisher,
	encoder *service.FeatureEncoder,
	trainer *service.Trainer,
) *TrainModelUseCase {
	return &TrainModelUseCase{
		recordRepo:   recordRepo,
		artifactRepo: artifactRepo,
		publisher:    publisher,
		encoder:      encoder,
		trainer:      trainer,
	}
}

// Execute trains a new model artifact from the labeled history. A record that
// fails encoding fails the whole run: a model must never be fit on a silently
// reduced dataset.
func (uc *TrainModelUseCase) Execute(ctx context.Context, _ dto.TrainModelRequest) (dto.ArtifactResponse, error) {
	now := time.Now().UTC()
	schema := uc.trainer.Schema()

	// 1. Load the labeled history.
	records, err := uc.recordRepo.FindLabeled(ctx)
	if err != nil {
		return dto.ArtifactResponse{}, fmt.Errorf("find labeled records: %w", err)
	}

	// 2. Encode every record under the training schema.
	examples := make([]service.TrainingExample, 0, len(records))
	for _, rec := range records {
		vec, err := uc.encoder.Encode(rec, schema)
		if err != nil {
			return dto.ArtifactResponse{}, fmt.Errorf("encode record %s: %w", rec.ID(), err)
		}
		examples = append(examples, service.TrainingExample{
			Vector:    vec,
			Defaulted: rec.Outcome().Defaulted(),
		})
	}

	// 3. Fit the model.
	artifact, err := uc.trainer.Train(examples, now)
	if err != nil {
		return dto.ArtifactResponse{}, fmt.Errorf("train model: %w", err)
	}

	// 4. Persist the new artifact (insert-only; prior artifacts stay readable).
	if err := uc.artifactRepo.Save(ctx, artifact); err != nil {
		return dto.ArtifactResponse{}, fmt.Errorf("save artifact: %w", err)
	}

	// 5. Publish the lifecycle event.
	evt := event.NewModelTrained(
		artifact.ID(), artifact.SchemaVersion(), artifact.RecordCount(),
		artifact.HoldoutAccuracy(), artifact.HoldoutAUC(),
	)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.ArtifactResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toArtifactResponse(artifact), nil
}

func toArtifactResponse(artifact model.ModelArtifact) dto.ArtifactResponse {
	return dto.ArtifactResponse{
		ID:              artifact.ID(),
		SchemaVersion:   artifact.SchemaVersion(),
		FeatureNames:    artifact.FeatureNames(),
		RecordCount:     artifact.RecordCount(),
		HoldoutAccuracy: artifact.HoldoutAccuracy(),
		HoldoutAUC:      artifact.HoldoutAUC(),
		TrainedAt:       artifact.TrainedAt(),
	}
}
