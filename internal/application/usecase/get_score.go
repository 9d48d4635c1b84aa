package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// GetScoreUseCase retrieves the score attached to a loan record.
type GetScoreUseCase struct {
	recordRepo port.LoanRecordRepository
}

// NewGetScoreUseCase wires dependencies.
func NewGetScoreUseCase(recordRepo port.LoanRecordRepository) *GetScoreUseCase {
	return &GetScoreUseCase{recordRepo: recordRepo}
}

// Execute returns the loan's attached score, or ErrNotScored when none exists.
func (uc *GetScoreUseCase) Execute(ctx context.Context, req dto.GetScoreRequest) (dto.ScoreResponse, error) {
	if req.LoanID == uuid.Nil {
		return dto.ScoreResponse{}, errors.New("loan ID is required")
	}

	rec, err := uc.recordRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("find loan record: %w", err)
	}

	result, ok := rec.Score()
	if !ok {
		return dto.ScoreResponse{}, valueobject.ErrNotScored
	}

	return toScoreResponse(rec.ID(), result, rec.ScoredAt()), nil
}
