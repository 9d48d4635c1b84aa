package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/creditrisk/pkg/postgres"
)

type scannable interface {
	Scan(dest ...any) error
}

// LoanRecordRepo implements port.LoanRecordRepository.
type LoanRecordRepo struct {
	db pkgpostgres.Querier
}

// NewLoanRecordRepo creates a new PostgreSQL-backed loan record repository.
// It accepts a pool or an open transaction.
func NewLoanRecordRepo(db pkgpostgres.Querier) *LoanRecordRepo {
	return &LoanRecordRepo{db: db}
}

const loanRecordColumns = `
	id, customer_id, officer_id,
	annual_income, employment_years, credit_score,
	existing_debt, loan_amount, term_months, interest_rate,
	officer_approved, outcome,
	ai_default_prob, ai_default_pred, ai_risk_band, ai_reason_codes,
	ai_artifact_id, ai_schema_version, scored_at,
	version, created_at, updated_at
`

// FindByID retrieves a loan record by ID.
func (r *LoanRecordRepo) FindByID(ctx context.Context, id uuid.UUID) (model.LoanRecord, error) {
	query := `SELECT ` + loanRecordColumns + ` FROM loans WHERE id = $1`

	rec, err := scanLoanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LoanRecord{}, port.ErrRecordNotFound
	}
	return rec, err
}

// FindLabeled retrieves all records with a known repayment outcome, in stable
// creation order so repeated training runs see identical input ordering.
func (r *LoanRecordRepo) FindLabeled(ctx context.Context) ([]model.LoanRecord, error) {
	query := `SELECT ` + loanRecordColumns + ` FROM loans WHERE outcome <> 'UNKNOWN' ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query labeled loans: %w", err)
	}
	defer rows.Close()

	var result []model.LoanRecord
	for rows.Next() {
		rec, err := scanLoanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// AttachScore writes the record's score fields in one version-checked UPDATE.
// All score columns change together or not at all; a reader can never observe
// a probability without its decision. A version mismatch surfaces as
// ErrConcurrentModification so the caller can re-read and retry.
func (r *LoanRecordRepo) AttachScore(ctx context.Context, rec model.LoanRecord) error {
	result, ok := rec.Score()
	if !ok {
		return errors.New("attach score: record carries no score")
	}
	codesJSON, err := json.Marshal(result.ReasonCodes())
	if err != nil {
		return fmt.Errorf("marshal reason codes: %w", err)
	}

	query := `
		UPDATE loans SET
			ai_default_prob   = $1,
			ai_default_pred   = $2,
			ai_risk_band      = $3,
			ai_reason_codes   = $4,
			ai_artifact_id    = $5,
			ai_schema_version = $6,
			scored_at         = $7,
			version           = version + 1,
			updated_at        = $8
		WHERE id = $9 AND version = $10
	`
	tag, err := r.db.Exec(ctx, query,
		result.Probability(), result.Decision(), result.Band().String(),
		codesJSON, result.ArtifactID(), result.SchemaVersion(),
		rec.ScoredAt(), rec.UpdatedAt(),
		rec.ID(), rec.Version(),
	)
	if err != nil {
		return fmt.Errorf("attach score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`, rec.ID()).Scan(&exists); err != nil {
			return fmt.Errorf("attach score: check existence: %w", err)
		}
		if !exists {
			return port.ErrRecordNotFound
		}
		return port.ErrConcurrentModification
	}
	return nil
}

func scanLoanRecord(s scannable) (model.LoanRecord, error) {
	var (
		id, customerID, officerID                            uuid.UUID
		annualIncome, existingDebt, loanAmount, interestRate decimal.Decimal
		employmentYears, creditScore, termMonths             int
		officerApproved                                      bool
		outcomeStr                                           string
		prob                                                 *float64
		pred, schemaVersion                                  *int
		bandStr                                              *string
		codesJSON                                            []byte
		artifactID                                           *uuid.UUID
		scoredAt                                             *time.Time
		version                                              int
		createdAt, updatedAt                                 time.Time
	)

	err := s.Scan(
		&id, &customerID, &officerID,
		&annualIncome, &employmentYears, &creditScore,
		&existingDebt, &loanAmount, &termMonths, &interestRate,
		&officerApproved, &outcomeStr,
		&prob, &pred, &bandStr, &codesJSON,
		&artifactID, &schemaVersion, &scoredAt,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LoanRecord{}, err
		}
		return model.LoanRecord{}, fmt.Errorf("scan loan record: %w", err)
	}

	outcome, err := valueobject.NewOutcome(outcomeStr)
	if err != nil {
		return model.LoanRecord{}, fmt.Errorf("parse outcome: %w", err)
	}

	score, scoredTime, err := reassembleScore(prob, pred, bandStr, codesJSON, artifactID, schemaVersion, scoredAt)
	if err != nil {
		return model.LoanRecord{}, fmt.Errorf("loan record %s: %w", id, err)
	}

	return model.ReconstructLoanRecord(
		id, customerID, officerID,
		annualIncome, employmentYears, creditScore,
		existingDebt, loanAmount, termMonths, interestRate,
		officerApproved, outcome,
		score, scoredTime,
		version, createdAt, updatedAt,
	), nil
}

// reassembleScore rebuilds the ScoreResult value object from its columns. The
// score fields are written atomically, so they must be all present or all
// absent; anything in between is corrupt data and refuses to load.
func reassembleScore(
	prob *float64, pred *int, bandStr *string, codesJSON []byte,
	artifactID *uuid.UUID, schemaVersion *int, scoredAt *time.Time,
) (*valueobject.ScoreResult, time.Time, error) {
	if prob == nil {
		if pred != nil || bandStr != nil || artifactID != nil {
			return nil, time.Time{}, errors.New("partial score columns on unscored record")
		}
		return nil, time.Time{}, nil
	}
	if pred == nil || bandStr == nil || artifactID == nil || schemaVersion == nil || scoredAt == nil {
		return nil, time.Time{}, errors.New("incomplete score columns on scored record")
	}

	band, err := valueobject.NewRiskBand(*bandStr)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse risk band: %w", err)
	}
	var codes []valueobject.ReasonCode
	if err := json.Unmarshal(codesJSON, &codes); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshal reason codes: %w", err)
	}

	result, err := valueobject.NewScoreResult(*prob, *pred, band, codes, *artifactID, *schemaVersion)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reassemble score: %w", err)
	}
	return &result, *scoredAt, nil
}
