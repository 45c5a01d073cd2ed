package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// Repository persists the single console session.
type Repository interface {
	// Load returns (nil, nil) when nobody is logged in.
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Touch(ctx context.Context, at time.Time) error
	Clear(ctx context.Context) error
}
