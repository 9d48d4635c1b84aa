package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// scoreRetryAttempts bounds how often a scoring pass is retried after losing
// a version race against a concurrent writer.
const scoreRetryAttempts = 3

// ScoreLoanUseCase scores one loan record against a model artifact and writes
// the result back in a single atomic, version-checked update. Losing the
// version race triggers a bounded re-read / re-score / re-write cycle so the
// persisted score always derives from the record state it was written against.
type ScoreLoanUseCase struct {
	recordRepo   port.LoanRecordRepository
	artifactRepo port.ArtifactRepository
	publisher    port.EventPublisher
	encoder      *service.FeatureEncoder
	scorer       *service.Scorer
	policy       valueobject.OverwritePolicy
}

// NewScoreLoanUseCase wires dependencies.
func NewScoreLoanUseCase(
	recordRepo port.LoanRecordRepository,
	artifactRepo port.ArtifactRepository,
	publisher port.EventPublisher,
	encoder *service.FeatureEncoder,
	scorer *service.Scorer,
	policy valueobject.OverwritePolicy,
) *ScoreLoanUseCase {
	return &ScoreLoanUseCase{
		recordRepo:   recordRepo,
		artifactRepo: artifactRepo,
		publisher:    publisher,
		encoder:      encoder,
		scorer:       scorer,
		policy:       policy,
	}
}

// Execute scores the requested loan. Only a lost version race is retried;
// every other failure is surfaced immediately.
func (uc *ScoreLoanUseCase) Execute(ctx context.Context, req dto.ScoreLoanRequest) (dto.ScoreResponse, error) {
	if req.LoanID == uuid.Nil {
		return dto.ScoreResponse{}, errors.New("loan ID is required")
	}

	var resp dto.ScoreResponse
	operation := func() error {
		var err error
		resp, err = uc.scoreOnce(ctx, req)
		if err != nil {
			if errors.Is(err, port.ErrConcurrentModification) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	retry := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), scoreRetryAttempts-1),
		ctx,
	)
	if err := backoff.Retry(operation, retry); err != nil {
		return dto.ScoreResponse{}, err
	}
	return resp, nil
}

// scoreOnce performs one full read / score / write pass.
func (uc *ScoreLoanUseCase) scoreOnce(ctx context.Context, req dto.ScoreLoanRequest) (dto.ScoreResponse, error) {
	now := time.Now().UTC()

	// 1. Read the record at its current version.
	rec, err := uc.recordRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("find loan record: %w", err)
	}

	// 2. Resolve the artifact: the requested one, or the latest.
	artifact, err := uc.resolveArtifact(ctx, req.ArtifactID)
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	// 3. Re-derive the schema the artifact was trained under.
	schema, err := valueobject.SchemaByVersion(artifact.SchemaVersion())
	if err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("resolve schema: %w", err)
	}

	// 4. Encode and score.
	vec, err := uc.encoder.Encode(rec, schema)
	if err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("encode record %s: %w", rec.ID(), err)
	}
	result, err := uc.scorer.Score(vec, artifact)
	if err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("score record %s: %w", rec.ID(), err)
	}

	// 5. Attach in the domain (enforces the rescoring policy) and write back
	//    with the version check.
	scored, err := rec.AttachScore(result, uc.policy, now)
	if err != nil {
		return dto.ScoreResponse{}, err
	}
	if err := uc.recordRepo.AttachScore(ctx, scored); err != nil {
		return dto.ScoreResponse{}, err
	}

	// 6. Publish scoring events.
	if err := uc.publisher.Publish(ctx, scored.DomainEvents()...); err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toScoreResponse(scored.ID(), result, now), nil
}

func (uc *ScoreLoanUseCase) resolveArtifact(ctx context.Context, id uuid.UUID) (model.ModelArtifact, error) {
	if id == uuid.Nil {
		artifact, err := uc.artifactRepo.FindLatest(ctx)
		if err != nil {
			return model.ModelArtifact{}, fmt.Errorf("find latest artifact: %w", err)
		}
		return artifact, nil
	}
	artifact, err := uc.artifactRepo.FindByID(ctx, id)
	if err != nil {
		return model.ModelArtifact{}, fmt.Errorf("find artifact %s: %w", id, err)
	}
	return artifact, nil
}

func toScoreResponse(loanID uuid.UUID, result valueobject.ScoreResult, scoredAt time.Time) dto.ScoreResponse {
	codes := result.ReasonCodes()
	out := make([]dto.ReasonCodeResponse, len(codes))
	for i, rc := range codes {
		out[i] = dto.ReasonCodeResponse{
			Feature:      rc.Feature,
			Contribution: rc.Contribution,
			Direction:    rc.Direction(),
		}
	}

	return dto.ScoreResponse{
		LoanID:        loanID,
		Probability:   result.Probability(),
		Decision:      result.Decision(),
		RiskBand:      result.Band().String(),
		ReasonCodes:   out,
		ArtifactID:    result.ArtifactID(),
		SchemaVersion: result.SchemaVersion(),
		ScoredAt:      scoredAt,
	}
}
