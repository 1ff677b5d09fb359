package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/models"
	"taxiline/internal/query"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)

	// List runs the listing engine over the users collection; password and
	// salt are excluded from every returned record.
	List(ctx context.Context, params *query.Params) ([]*models.User, int64, error)

	// Save replaces the stored document with the given in-memory entity.
	Save(ctx context.Context, user *models.User) error

	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	UpdateRate(ctx context.Context, id primitive.ObjectID, rate float64) error
	ToggleActivation(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
