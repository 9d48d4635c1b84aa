package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockLoanRecordRepository struct {
	findByIDFunc    func(ctx context.Context, id uuid.UUID) (model.LoanRecord, error)
	findLabeledFunc func(ctx context.Context) ([]model.LoanRecord, error)
	attachScoreFunc func(ctx context.Context, rec model.LoanRecord) error
	attached        []model.LoanRecord
	findByIDCalls   int
}

func (m *mockLoanRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
	m.findByIDCalls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.LoanRecord{}, port.ErrRecordNotFound
}

func (m *mockLoanRecordRepository) FindLabeled(ctx context.Context) ([]model.LoanRecord, error) {
	if m.findLabeledFunc != nil {
		return m.findLabeledFunc(ctx)
	}
	return nil, nil
}

func (m *mockLoanRecordRepository) AttachScore(ctx context.Context, rec model.LoanRecord) error {
	if m.attachScoreFunc != nil {
		return m.attachScoreFunc(ctx, rec)
	}
	m.attached = append(m.attached, rec)
	return nil
}

type mockArtifactRepository struct {
	saveFunc       func(ctx context.Context, artifact model.ModelArtifact) error
	findByIDFunc   func(ctx context.Context, id uuid.UUID) (model.ModelArtifact, error)
	findLatestFunc func(ctx context.Context) (model.ModelArtifact, error)
	saved          []model.ModelArtifact
	findLatestCall int
}

func (m *mockArtifactRepository) Save(ctx context.Context, artifact model.ModelArtifact) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, artifact)
	}
	m.saved = append(m.saved, artifact)
	return nil
}

func (m *mockArtifactRepository) FindByID(ctx context.Context, id uuid.UUID) (model.ModelArtifact, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.ModelArtifact{}, port.ErrArtifactNotFound
}

func (m *mockArtifactRepository) FindLatest(ctx context.Context) (model.ModelArtifact, error) {
	m.findLatestCall++
	if m.findLatestFunc != nil {
		return m.findLatestFunc(ctx)
	}
	return model.ModelArtifact{}, port.ErrArtifactNotFound
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, evts ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// labeledHistory builds n records with known outcomes, alternating profiles so
// both classes are present and roughly separable.
func labeledHistory(t *testing.T, n int) []model.LoanRecord {
	t.Helper()
	now := time.Now().UTC()

	records := make([]model.LoanRecord, 0, n)
	for i := 0; i < n; i++ {
		defaulted := i%2 == 0

		income := decimal.NewFromInt(800_000)
		credit := 760
		debt := decimal.NewFromInt(60_000)
		if defaulted {
			income = decimal.NewFromInt(300_000)
			credit = 540
			debt = decimal.NewFromInt(260_000)
		}

		rec, err := model.NewLoanRecord(
			uuid.New(), uuid.New(),
			income, 4+i%10, credit,
			debt, decimal.NewFromInt(int64(150_000+i*1_000)), 36,
			decimal.NewFromFloat(11.5), true, now,
		)
		require.NoError(t, err)

		outcome := valueobject.OutcomeRepaid
		if defaulted {
			outcome = valueobject.OutcomeDefaulted
		}
		rec, err = rec.RecordOutcome(outcome, now)
		require.NoError(t, err)

		records = append(records, rec)
	}
	return records
}

// unscoredRecord builds the reference loan used across the scoring tests.
func unscoredRecord(t *testing.T) model.LoanRecord {
	t.Helper()
	rec, err := model.NewLoanRecord(
		uuid.New(), uuid.New(),
		decimal.NewFromInt(600_000),
		5, 720,
		decimal.NewFromInt(50_000),
		decimal.NewFromInt(200_000),
		36,
		decimal.NewFromFloat(12.5),
		true,
		time.Now().UTC(),
	)
	require.NoError(t, err)
	return rec
}

// neutralArtifact builds a v1 artifact with zero weights and bias, so every
// score comes out at exactly 0.5.
func neutralArtifact(t *testing.T) model.ModelArtifact {
	t.Helper()
	schema := valueobject.FeatureSchemaV1()
	means := make([]float64, schema.Len())
	scales := make([]float64, schema.Len())
	for i := range scales {
		scales[i] = 1
	}
	art, err := model.NewModelArtifact(
		schema.Version(), schema.FeatureNames(),
		means, scales, make([]float64, schema.Len()), 0,
		time.Now().UTC(), 40, 0.9, 0.95,
	)
	require.NoError(t, err)
	return art
}
