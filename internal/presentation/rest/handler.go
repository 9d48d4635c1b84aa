package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

type trainModelUseCase interface {
	Execute(ctx context.Context, req dto.TrainModelRequest) (dto.ArtifactResponse, error)
}

type scoreLoanUseCase interface {
	Execute(ctx context.Context, req dto.ScoreLoanRequest) (dto.ScoreResponse, error)
}

type getScoreUseCase interface {
	Execute(ctx context.Context, req dto.GetScoreRequest) (dto.ScoreResponse, error)
}

// RiskHandler exposes the scoring pipeline over HTTP.
type RiskHandler struct {
	trainModel trainModelUseCase
	scoreLoan  scoreLoanUseCase
	getScore   getScoreUseCase
	logger     *slog.Logger
}

// NewRiskHandler creates the HTTP handler for training and scoring.
func NewRiskHandler(
	trainModel trainModelUseCase,
	scoreLoan scoreLoanUseCase,
	getScore getScoreUseCase,
	logger *slog.Logger,
) *RiskHandler {
	return &RiskHandler{
		trainModel: trainModel,
		scoreLoan:  scoreLoan,
		getScore:   getScore,
		logger:     logger,
	}
}

// RegisterRoutes attaches the risk API routes to the given mux.
func (h *RiskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/models/train", h.handleTrain)
	mux.HandleFunc("POST /v1/loans/{id}/score", h.handleScore)
	mux.HandleFunc("GET /v1/loans/{id}/score", h.handleGetScore)
}

func (h *RiskHandler) handleTrain(w http.ResponseWriter, r *http.Request) {
	resp, err := h.trainModel.Execute(r.Context(), dto.TrainModelRequest{})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// scoreRequestBody is the optional POST body; an absent or empty body scores
// against the latest artifact.
type scoreRequestBody struct {
	ArtifactID uuid.UUID `json:"artifact_id"`
}

func (h *RiskHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid loan ID"))
		return
	}

	var body scoreRequestBody
	if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
			return
		}
	}

	resp, err := h.scoreLoan.Execute(r.Context(), dto.ScoreLoanRequest{
		LoanID:     loanID,
		ArtifactID: body.ArtifactID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *RiskHandler) handleGetScore(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid loan ID"))
		return
	}

	resp, err := h.getScore.Execute(r.Context(), dto.GetScoreRequest{LoanID: loanID})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps domain and port errors onto HTTP status codes.
func (h *RiskHandler) writeError(w http.ResponseWriter, err error) {
	var (
		encodingErr     *service.EncodingError
		insufficientErr *service.InsufficientDataError
		imbalanceErr    *service.LabelImbalanceError
		mismatchErr     *service.SchemaMismatchError
	)

	switch {
	case errors.Is(err, port.ErrRecordNotFound),
		errors.Is(err, port.ErrArtifactNotFound),
		errors.Is(err, valueobject.ErrNotScored):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))

	case errors.Is(err, valueobject.ErrAlreadyScored),
		errors.Is(err, port.ErrConcurrentModification),
		errors.As(err, &mismatchErr):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))

	case errors.As(err, &encodingErr),
		errors.As(err, &insufficientErr),
		errors.As(err, &imbalanceErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))

	default:
		h.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
