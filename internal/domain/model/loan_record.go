package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// LoanRecord aggregate root
// ---------------------------------------------------------------------------

// LoanRecord is an immutable aggregate. Every mutation returns a new copy.
// Records are created by the surrounding loan-origination system; this core
// only ever reads them and attaches risk scores.
type LoanRecord struct {
	id              uuid.UUID
	customerID      uuid.UUID
	officerID       uuid.UUID
	annualIncome    decimal.Decimal
	employmentYears int
	creditScore     int
	existingDebt    decimal.Decimal
	loanAmount      decimal.Decimal
	termMonths      int
	interestRate    decimal.Decimal
	officerApproved bool
	outcome         valueobject.Outcome
	score           *valueobject.ScoreResult
	scoredAt        time.Time
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// NewLoanRecord creates a fresh, unscored loan record with an unknown outcome.
func NewLoanRecord(
	customerID, officerID uuid.UUID,
	annualIncome decimal.Decimal,
	employmentYears, creditScore int,
	existingDebt, loanAmount decimal.Decimal,
	termMonths int,
	interestRate decimal.Decimal,
	officerApproved bool,
	now time.Time,
) (LoanRecord, error) {
	if customerID == uuid.Nil {
		return LoanRecord{}, errors.New("customer ID is required")
	}
	if officerID == uuid.Nil {
		return LoanRecord{}, errors.New("officer ID is required")
	}
	if annualIncome.IsNegative() {
		return LoanRecord{}, errors.New("annual income must not be negative")
	}
	if existingDebt.IsNegative() {
		return LoanRecord{}, errors.New("existing debt must not be negative")
	}
	if loanAmount.LessThanOrEqual(decimal.Zero) {
		return LoanRecord{}, errors.New("loan amount must be positive")
	}
	if termMonths <= 0 {
		return LoanRecord{}, errors.New("loan term must be positive")
	}
	if interestRate.IsNegative() {
		return LoanRecord{}, errors.New("interest rate must not be negative")
	}

	return LoanRecord{
		id:              uuid.New(),
		customerID:      customerID,
		officerID:       officerID,
		annualIncome:    annualIncome,
		employmentYears: employmentYears,
		creditScore:     creditScore,
		existingDebt:    existingDebt,
		loanAmount:      loanAmount,
		termMonths:      termMonths,
		interestRate:    interestRate,
		officerApproved: officerApproved,
		outcome:         valueobject.OutcomeUnknown,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructLoanRecord rebuilds an aggregate from persistence without side-effects.
// The score pointer is nil for unscored records; scoredAt is the zero time then.
func ReconstructLoanRecord(
	id, customerID, officerID uuid.UUID,
	annualIncome decimal.Decimal,
	employmentYears, creditScore int,
	existingDebt, loanAmount decimal.Decimal,
	termMonths int,
	interestRate decimal.Decimal,
	officerApproved bool,
	outcome valueobject.Outcome,
	score *valueobject.ScoreResult,
	scoredAt time.Time,
	version int,
	createdAt, updatedAt time.Time,
) LoanRecord {
	var copied *valueobject.ScoreResult
	if score != nil {
		sc := *score
		copied = &sc
	}
	return LoanRecord{
		id:              id,
		customerID:      customerID,
		officerID:       officerID,
		annualIncome:    annualIncome,
		employmentYears: employmentYears,
		creditScore:     creditScore,
		existingDebt:    existingDebt,
		loanAmount:      loanAmount,
		termMonths:      termMonths,
		interestRate:    interestRate,
		officerApproved: officerApproved,
		outcome:         outcome,
		score:           copied,
		scoredAt:        scoredAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// AttachScore transitions Unscored -> Scored. Rescoring an already-scored
// record is permitted only when the policy allows overwriting; the new
// result then replaces the prior one entirely.
func (r LoanRecord) AttachScore(
	result valueobject.ScoreResult,
	policy valueobject.OverwritePolicy,
	now time.Time,
) (LoanRecord, error) {
	if r.score != nil && !policy.AllowsOverwrite() {
		return r, valueobject.ErrAlreadyScored
	}

	prior := r.score

	next := r
	sc := result
	next.score = &sc
	next.scoredAt = now
	next.updatedAt = now
	next.domainEvents = copyEvents(r.domainEvents)

	if prior == nil {
		next.domainEvents = append(next.domainEvents, event.NewLoanScored(
			r.id, result.ArtifactID(), result.Probability(), result.Decision(), result.Band().String(),
		))
	} else {
		next.domainEvents = append(next.domainEvents, event.NewScoreSuperseded(
			r.id, result.ArtifactID(), result.Probability(), result.Decision(),
			prior.ArtifactID(), prior.Probability(), prior.Decision(),
		))
	}

	return next, nil
}

// RecordOutcome sets the observed repayment outcome on a historical record.
func (r LoanRecord) RecordOutcome(outcome valueobject.Outcome, now time.Time) (LoanRecord, error) {
	if !outcome.Known() {
		return r, errors.New("recorded outcome must be known")
	}
	next := r
	next.outcome = outcome
	next.updatedAt = now
	next.domainEvents = copyEvents(r.domainEvents)
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (r LoanRecord) ID() uuid.UUID                 { return r.id }
func (r LoanRecord) CustomerID() uuid.UUID         { return r.customerID }
func (r LoanRecord) OfficerID() uuid.UUID          { return r.officerID }
func (r LoanRecord) AnnualIncome() decimal.Decimal { return r.annualIncome }
func (r LoanRecord) EmploymentYears() int          { return r.employmentYears }
func (r LoanRecord) CreditScore() int              { return r.creditScore }
func (r LoanRecord) ExistingDebt() decimal.Decimal { return r.existingDebt }
func (r LoanRecord) LoanAmount() decimal.Decimal   { return r.loanAmount }
func (r LoanRecord) TermMonths() int               { return r.termMonths }
func (r LoanRecord) InterestRate() decimal.Decimal { return r.interestRate }
func (r LoanRecord) OfficerApproved() bool         { return r.officerApproved }
func (r LoanRecord) Outcome() valueobject.Outcome  { return r.outcome }
func (r LoanRecord) Version() int                  { return r.version }
func (r LoanRecord) CreatedAt() time.Time          { return r.createdAt }
func (r LoanRecord) UpdatedAt() time.Time          { return r.updatedAt }

// Scored reports whether a score result is attached.
func (r LoanRecord) Scored() bool { return r.score != nil }

// Score returns the attached score result, or false when the record is unscored.
func (r LoanRecord) Score() (valueobject.ScoreResult, bool) {
	if r.score == nil {
		return valueobject.ScoreResult{}, false
	}
	return *r.score, true
}

// ScoredAt returns the time the current score was attached (zero when unscored).
func (r LoanRecord) ScoredAt() time.Time { return r.scoredAt }

// DomainEvents returns the events collected on this copy of the aggregate.
func (r LoanRecord) DomainEvents() []event.DomainEvent { return r.domainEvents }

// ClearEvents returns a copy with an empty event list (call after publishing).
func (r LoanRecord) ClearEvents() LoanRecord {
	next := r
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
