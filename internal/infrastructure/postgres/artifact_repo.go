package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	pkgpostgres "github.com/bibbank/creditrisk/pkg/postgres"
)

// ArtifactRepo implements port.ArtifactRepository. The table is insert-only:
// artifacts are never updated or deleted, so every historical score stays
// attributable to the exact parameters that produced it.
type ArtifactRepo struct {
	db pkgpostgres.Querier
}

// NewArtifactRepo creates a new PostgreSQL-backed artifact repository.
func NewArtifactRepo(db pkgpostgres.Querier) *ArtifactRepo {
	return &ArtifactRepo{db: db}
}

// Save inserts a new artifact. Saving the same ID twice is an error.
func (r *ArtifactRepo) Save(ctx context.Context, artifact model.ModelArtifact) error {
	doc, err := marshalArtifact(artifact)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO model_artifacts (id, schema_version, trained_at, record_count, document)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query,
		artifact.ID(), artifact.SchemaVersion(), artifact.TrainedAt(),
		artifact.RecordCount(), doc,
	); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

// FindByID retrieves an artifact by ID.
func (r *ArtifactRepo) FindByID(ctx context.Context, id uuid.UUID) (model.ModelArtifact, error) {
	query := `SELECT document FROM model_artifacts WHERE id = $1`

	var doc []byte
	if err := r.db.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ModelArtifact{}, port.ErrArtifactNotFound
		}
		return model.ModelArtifact{}, fmt.Errorf("query artifact: %w", err)
	}
	return unmarshalArtifact(doc)
}

// FindLatest retrieves the most recently trained artifact. Equal training
// times are broken by insertion order, so "latest" is always unambiguous.
func (r *ArtifactRepo) FindLatest(ctx context.Context) (model.ModelArtifact, error) {
	query := `SELECT document FROM model_artifacts ORDER BY trained_at DESC, seq DESC LIMIT 1`

	var doc []byte
	if err := r.db.QueryRow(ctx, query).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ModelArtifact{}, port.ErrArtifactNotFound
		}
		return model.ModelArtifact{}, fmt.Errorf("query latest artifact: %w", err)
	}
	return unmarshalArtifact(doc)
}
