package run

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists Run records.
type Repository interface {
	Save(ctx context.Context, r *Run) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	List(ctx context.Context, limit int) ([]*Run, error)
}

//Personal.AI order the ending
