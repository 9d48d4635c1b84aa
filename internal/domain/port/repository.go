package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
)

// Persistence errors surfaced by repository implementations.
var (
	// ErrRecordNotFound indicates the requested loan record does not exist.
	ErrRecordNotFound = errors.New("loan record not found")

	// ErrArtifactNotFound indicates no matching model artifact exists.
	ErrArtifactNotFound = errors.New("model artifact not found")

	// ErrConcurrentModification indicates the record's version changed
	// between read and write. Callers may re-read, re-score, and retry.
	ErrConcurrentModification = errors.New("loan record modified concurrently")
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRecordRepository reads loan records and writes scores back onto them.
// This core never creates or deletes records; AttachScore is its only write.
type LoanRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (model.LoanRecord, error)

	// FindLabeled returns the historical records whose repayment outcome is
	// known, in stable creation order.
	FindLabeled(ctx context.Context) ([]model.LoanRecord, error)

	// AttachScore persists the record's score fields in a single atomic,
	// version-checked update. Probability and decision are never observable
	// separately. Returns ErrConcurrentModification when the stored version
	// no longer matches the one the record was read at.
	AttachScore(ctx context.Context, rec model.LoanRecord) error
}

// ArtifactRepository is the insert-only store for trained model artifacts.
// Artifacts are write-once: retraining saves a new artifact and supersedes,
// never replaces, earlier ones.
type ArtifactRepository interface {
	Save(ctx context.Context, artifact model.ModelArtifact) error
	FindByID(ctx context.Context, id uuid.UUID) (model.ModelArtifact, error)

	// FindLatest returns the most recently trained artifact, ties broken by
	// highest insertion sequence.
	FindLatest(ctx context.Context) (model.ModelArtifact, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
