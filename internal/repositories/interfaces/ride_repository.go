package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/models"
	"taxiline/internal/query"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	List(ctx context.Context, params *query.Params) ([]*models.Ride, int64, error)
	Save(ctx context.Context, ride *models.Ride) error
	UpdateLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) error

	// MarkSettled flips is_settled to true. The flag is monotonic; there is
	// deliberately no way back.
	MarkSettled(ctx context.Context, id primitive.ObjectID) error

	Delete(ctx context.Context, id primitive.ObjectID) error
}

type SettlementRepository interface {
	Create(ctx context.Context, settlement *models.Settlement) error
	List(ctx context.Context) ([]*models.Settlement, error)
}
