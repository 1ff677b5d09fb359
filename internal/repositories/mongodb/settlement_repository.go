package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taxiline/internal/apperrors"
	"taxiline/internal/models"
	"taxiline/internal/repositories/interfaces"
)

type settlementRepository struct {
	collection *mongo.Collection
}

func NewSettlementRepository(db *mongo.Database) interfaces.SettlementRepository {
	return &settlementRepository{
		collection: db.Collection("settlements"),
	}
}

func (r *settlementRepository) Create(ctx context.Context, settlement *models.Settlement) error {
	settlement.ID = primitive.NewObjectID()
	if settlement.Date.IsZero() {
		settlement.Date = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, settlement)
	if err != nil {
		return apperrors.NewPersistence("create settlement", err)
	}

	return nil
}

func (r *settlementRepository) List(ctx context.Context) ([]*models.Settlement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperrors.NewPersistence("find settlements", err)
	}
	defer cursor.Close(ctx)

	var settlements []*models.Settlement
	for cursor.Next(ctx) {
		var settlement models.Settlement
		if err := cursor.Decode(&settlement); err != nil {
			return nil, apperrors.NewPersistence("decode settlement", err)
		}
		settlements = append(settlements, &settlement)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.NewPersistence("iterate settlements", err)
	}

	return settlements, nil
}
