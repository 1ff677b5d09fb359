package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"taxiline/internal/apperrors"
	"taxiline/internal/models"
	"taxiline/internal/query"
	"taxiline/internal/repositories/interfaces"
)

var rideSearchFields = query.NewFieldSet(
	[]string{"status", "payment_method", "description"},
	[]string{"active", "rate", "date"},
)

type rideRepository struct {
	collection *mongo.Collection
}

func NewRideRepository(db *mongo.Database) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return apperrors.NewPersistence("create ride", err)
	}

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("ride")
		}
		return nil, apperrors.NewPersistence("get ride", err)
	}

	return &ride, nil
}

func (r *rideRepository) List(ctx context.Context, params *query.Params) ([]*models.Ride, int64, error) {
	filter, err := rideSearchFields.BuildPredicate(params.Search)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewPersistence("count rides", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.FindOptions())
	if err != nil {
		return nil, 0, apperrors.NewPersistence("find rides", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, 0, apperrors.NewPersistence("decode ride", err)
		}
		rides = append(rides, &ride)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, apperrors.NewPersistence("iterate rides", err)
	}

	return rides, total, nil
}

func (r *rideRepository) Save(ctx context.Context, ride *models.Ride) error {
	ride.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ride.ID}, ride)
	if err != nil {
		return apperrors.NewPersistence("save ride", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFound("ride")
	}

	return nil
}

func (r *rideRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"loc": loc, "updated_at": time.Now()}},
	)
	if err != nil {
		return apperrors.NewPersistence("update ride location", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFound("ride")
	}

	return nil
}

func (r *rideRepository) MarkSettled(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_settled": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return apperrors.NewPersistence("mark ride settled", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFound("ride")
	}

	return nil
}

func (r *rideRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.NewPersistence("delete ride", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFound("ride")
	}

	return nil
}
