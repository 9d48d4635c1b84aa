package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

func newScoreUseCase(
	recordRepo *mockLoanRecordRepository,
	artifactRepo *mockArtifactRepository,
	publisher *mockEventPublisher,
	policy valueobject.OverwritePolicy,
) *usecase.ScoreLoanUseCase {
	scorer, err := service.NewScorer(service.DefaultScoreThreshold, service.DefaultReasonCodeCount)
	if err != nil {
		panic(err)
	}
	return usecase.NewScoreLoanUseCase(
		recordRepo, artifactRepo, publisher,
		service.NewFeatureEncoder(), scorer, policy,
	)
}

func TestScoreLoan_Execute(t *testing.T) {
	t.Run("scores against the latest artifact and writes back once", func(t *testing.T) {
		rec := unscoredRecord(t)
		art := neutralArtifact(t)

		recordRepo := &mockLoanRecordRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
				return rec, nil
			},
		}
		recordRepo.attachScoreFunc = func(ctx context.Context, r model.LoanRecord) error {
			recordRepo.attached = append(recordRepo.attached, r)
			return nil
		}
		artifactRepo := &mockArtifactRepository{
			findLatestFunc: func(ctx context.Context) (model.ModelArtifact, error) {
				return art, nil
			},
		}
		publisher := &mockEventPublisher{}

		uc := newScoreUseCase(recordRepo, artifactRepo, publisher, valueobject.OverwritePolicyReject)
		resp, err := uc.Execute(context.Background(), dto.ScoreLoanRequest{LoanID: rec.ID()})

		require.NoError(t, err)
		assert.Equal(t, rec.ID(), resp.LoanID)
		assert.Equal(t, 0.5, resp.Probability)
		assert.Equal(t, 1, resp.Decision)
		assert.Equal(t, "MEDIUM", resp.RiskBand)
		assert.Equal(t, art.ID(), resp.ArtifactID)
		assert.Len(t, resp.ReasonCodes, 5)

		require.Len(t, recordRepo.attached, 1)
		written := recordRepo.attached[0]
		assert.True(t, written.Scored())

		require.Len(t, publisher.publishedEvents, 1)
		evt, ok := publisher.publishedEvents[0].(event.LoanScored)
		require.True(t, ok)
		assert.Equal(t, rec.ID(), evt.AggregateID())
		assert.Equal(t, art.ID(), evt.ArtifactID)
	})

	t.Run("a named artifact bypasses latest selection", func(t *testing.T) {
		rec := unscoredRecord(t)
		art := neutralArtifact(t)

		recordRepo := &mockLoanRecordRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
				return rec, nil
			},
		}
		artifactRepo := &mockArtifactRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.ModelArtifact, error) {
				require.Equal(t, art.ID(), id)
				return art, nil
			},
		}

		uc := newScoreUseCase(recordRepo, artifactRepo, &mockEventPublisher{}, valueobject.OverwritePolicyReject)
		resp, err := uc.Execute(context.Background(), dto.ScoreLoanRequest{LoanID: rec.ID(), ArtifactID: art.ID()})

		require.NoError(t, err)
		assert.Equal(t, art.ID(), resp.ArtifactID)
		assert.Zero(t, artifactRepo.findLatestCall)
	})

	t.Run("rejects rescoring under the reject policy", func(t *testing.T) {
		rec := unscoredRecord(t)
		art := neutralArtifact(t)

		res, err := valueobject.NewScoreResult(
			0.72, 1, valueobject.RiskBandHigh,
			[]valueobject.ReasonCode{{Feature: "dti", Contribution: 1.1}},
			art.ID(), 1,
		)
		require.NoError(t, err)
		scored, err := rec.AttachScore(res, valueobject.OverwritePolicyReject, time.Now().UTC())
		require.NoError(t, err)
		scored = scored.ClearEvents()

		recordRepo := &mockLoanRecordRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
				return scored, nil
			},
		}
		artifactRepo := &mockArtifactRepository{
			findLatestFunc: func(ctx context.Context) (model.ModelArtifact, error) {
				return art, nil
			},
		}

		uc := newScoreUseCase(recordRepo, artifactRepo, &mockEventPublisher{}, valueobject.OverwritePolicyReject)
		_, err = uc.Execute(context.Background(), dto.ScoreLoanRequest{LoanID: rec.ID()})

		require.ErrorIs(t, err, valueobject.ErrAlreadyScored)
		assert.Empty(t, recordRepo.attached)
		assert.Equal(t, 1, recordRepo.findByIDCalls)
	})

	t.Run("replaces the score under the overwrite policy", func(t *testing.T) {
		rec := unscoredRecord(t)
		art := neutralArtifact(t)

		res, err := valueobject.NewScoreResult(
			0.72, 1, valueobject.RiskBandHigh,
			[]valueobject.ReasonCode{{Feature: "dti", Contribution: 1.1}},
			uuid.New(), 1,
		)
		require.NoError(t, err)
		scored, err := rec.AttachScore(res, valueobject.OverwritePolicyVersionAndReplace, time.Now().UTC())
		require.NoError(t, err)
		scored = scored.ClearEvents()

		recordRepo := &mockLoanRecordRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
				return scored, nil
			},
		}
		artifactRepo := &mockArtifactRepository{
			findLatestFunc: func(ctx context.Context) (model.ModelArtifact, error) {
				return art, nil
			},
		}
		publisher := &mockEventPublisher{}

		uc := newScoreUseCase(recordRepo, artifactRepo, publisher, valueobject.OverwritePolicyVersionAndReplace)
		resp, err := uc.Execute(context.Background(), dto.ScoreLoanRequest{LoanID: rec.ID()})

		require.NoError(t, err)
		assert.Equal(t, 0.5, resp.Probability)
		assert.Equal(t, art.ID(), resp.ArtifactID)

		require.Len(t, publisher.publishedEvents, 1)
		evt, ok := publisher.publishedEvents[0].(event.ScoreSuperseded)
		require.True(t, ok)
		assert.Equal(t, 0.72, evt.PriorProbability)
	})

	t.Run("fails when the record does not exist", func(t *testing.T) {
		uc := newScoreUseCase(&mockLoanRecordRepository{}, &mockArtifactRepository{}, &mockEventPublisher{}, valueobject.OverwritePolicyReject)
		_, err := uc.Execute(context.Background(), dto.ScoreLoanRequest{LoanID: uuid.New()})

		require.ErrorIs(t, err, port.ErrRecordNotFound)
	})

	t.Run("fails when no artifact has been trained", func(t *testing.T) {
		rec := unscoredRecord(t)
		recordRepo := &mockLoanRecordRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
				return rec, nil
			},
		}

		uc := newScoreUseCase(recordRepo, &mockArtifactRepository{}, &mockEventPublisher{}, valueobject.OverwritePolicyReject)
		_, err := uc.Execute(context.Background(), dto.ScoreLoanRequest{LoanID: rec.ID()})

		require.ErrorIs(t, err, port.ErrArtifactNotFound)
	})

	t.Run("retries a lost version race and succeeds", func(t *testing.T) {
		rec := unscoredRecord(t)
		art := neutralArtifact(t)

		conflicts := 2
		recordRepo := &mockLoanRecordRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
				return rec, nil
			},
		}
		recordRepo.attachScoreFunc = func(ctx context.Context, r model.LoanRecord) error {
			if conflicts > 0 {
				conflicts--
				return port.ErrConcurrentModification
			}
			recordRepo.attached = append(recordRepo.attached, r)
			return nil
		}
		artifactRepo := &mockArtifactRepository{
			findLatestFunc: func(ctx context.Context) (model.ModelArtifact, error) {
				return art, nil
			},
		}

		uc := newScoreUseCase(recordRepo, artifactRepo, &mockEventPublisher{}, valueobject.OverwritePolicyReject)
		resp, err := uc.Execute(context.Background(), dto.ScoreLoanRequest{LoanID: rec.ID()})

		require.NoError(t, err)
		assert.Equal(t, 0.5, resp.Probability)
		// Each attempt re-reads the record before re-scoring.
		assert.Equal(t, 3, recordRepo.findByIDCalls)
		require.Len(t, recordRepo.attached, 1)
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		rec := unscoredRecord(t)
		art := neutralArtifact(t)

		attempts := 0
		recordRepo := &mockLoanRecordRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
				return rec, nil
			},
		}
		recordRepo.attachScoreFunc = func(ctx context.Context, r model.LoanRecord) error {
			attempts++
			return port.ErrConcurrentModification
		}
		artifactRepo := &mockArtifactRepository{
			findLatestFunc: func(ctx context.Context) (model.ModelArtifact, error) {
				return art, nil
			},
		}

		uc := newScoreUseCase(recordRepo, artifactRepo, &mockEventPublisher{}, valueobject.OverwritePolicyReject)
		_, err := uc.Execute(context.Background(), dto.ScoreLoanRequest{LoanID: rec.ID()})

		require.ErrorIs(t, err, port.ErrConcurrentModification)
		assert.Equal(t, 3, attempts)
	})

	t.Run("requires a loan ID", func(t *testing.T) {
		uc := newScoreUseCase(&mockLoanRecordRepository{}, &mockArtifactRepository{}, &mockEventPublisher{}, valueobject.OverwritePolicyReject)
		_, err := uc.Execute(context.Background(), dto.ScoreLoanRequest{})
		require.Error(t, err)
	})
}

// TestTrainThenScore exercises the full pipeline end to end against real
// domain services: train on labeled history, then score a fresh application
// with the artifact that training produced.
func TestTrainThenScore(t *testing.T) {
	ctx := context.Background()
	records := labeledHistory(t, 60)

	recordRepo := &mockLoanRecordRepository{
		findLabeledFunc: func(ctx context.Context) ([]model.LoanRecord, error) {
			return records, nil
		},
	}
	artifactRepo := &mockArtifactRepository{}
	publisher := &mockEventPublisher{}

	trainUC := newTrainUseCase(recordRepo, artifactRepo, publisher)
	trained, err := trainUC.Execute(ctx, dto.TrainModelRequest{})
	require.NoError(t, err)
	require.Len(t, artifactRepo.saved, 1)
	artifact := artifactRepo.saved[0]

	applicant := unscoredRecord(t)
	scoreRepo := &mockLoanRecordRepository{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
			require.Equal(t, applicant.ID(), id)
			return applicant, nil
		},
	}
	lookupRepo := &mockArtifactRepository{
		findLatestFunc: func(ctx context.Context) (model.ModelArtifact, error) {
			return artifact, nil
		},
	}

	scoreUC := newScoreUseCase(scoreRepo, lookupRepo, publisher, valueobject.OverwritePolicyReject)
	resp, err := scoreUC.Execute(ctx, dto.ScoreLoanRequest{LoanID: applicant.ID()})
	require.NoError(t, err)

	assert.Equal(t, trained.ID, resp.ArtifactID)
	assert.GreaterOrEqual(t, resp.Probability, 0.0)
	assert.LessOrEqual(t, resp.Probability, 1.0)
	assert.Contains(t, []int{0, 1}, resp.Decision)
	assert.GreaterOrEqual(t, len(resp.ReasonCodes), 3)
	assert.LessOrEqual(t, len(resp.ReasonCodes), 5)
	require.Len(t, scoreRepo.attached, 1)
	assert.True(t, scoreRepo.attached[0].Scored())
}
