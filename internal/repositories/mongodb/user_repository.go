package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"taxiline/internal/apperrors"
	"taxiline/internal/models"
	"taxiline/internal/query"
	"taxiline/internal/repositories/interfaces"
)

// Searchable user fields. The exact set {active, rate, date} is matched
// literally; everything else becomes a case-insensitive substring filter.
var userSearchFields = query.NewFieldSet(
	[]string{"name", "mobile", "national_code", "email", "account_number", "driver_state", "app_id", "last_state"},
	[]string{"active", "rate", "date"},
)

type userRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewUserRepository(db *mongo.Database, cache CacheService) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
		cache:      cache,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return apperrors.NewPersistence("create user", err)
	}

	r.cacheUser(ctx, user)

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if user := r.getUserFromCache(ctx, id.Hex()); user != nil {
		return user, nil
	}

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewPersistence("get user", err)
	}

	r.cacheUser(ctx, &user)

	return &user, nil
}

func (r *userRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewPersistence("get user by mobile", err)
	}

	return &user, nil
}

func (r *userRepository) List(ctx context.Context, params *query.Params) ([]*models.User, int64, error) {
	filter, err := userSearchFields.BuildPredicate(params.Search)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewPersistence("count users", err)
	}

	opts := params.FindOptions("password", "salt")
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperrors.NewPersistence("find users", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, 0, apperrors.NewPersistence("decode user", err)
		}
		users = append(users, &user)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, apperrors.NewPersistence("iterate users", err)
	}

	return users, total, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return apperrors.NewPersistence("save user", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFound("user")
	}

	r.invalidateUserCache(ctx, user.ID.Hex())

	return nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return apperrors.NewPersistence("update user", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFound("user")
	}

	r.invalidateUserCache(ctx, id.Hex())

	return nil
}

func (r *userRepository) UpdateRate(ctx context.Context, id primitive.ObjectID, rate float64) error {
	return r.Update(ctx, id, map[string]interface{}{"rate": rate})
}

func (r *userRepository) ToggleActivation(ctx context.Context, id primitive.ObjectID) error {
	// Two-step toggle; callers serialize admin toggles so the read-modify-write
	// is not racy in practice.
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return r.Update(ctx, id, map[string]interface{}{"active": !user.Active})
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.NewPersistence("delete user", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFound("user")
	}

	r.invalidateUserCache(ctx, id.Hex())

	return nil
}

func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("user:%s", user.ID.Hex())
		r.cache.Set(ctx, cacheKey, user, userCacheTTL)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, userID string) *models.User {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("user:%s", userID)
	var user models.User
	err := r.cache.Get(ctx, cacheKey, &user)
	if err != nil {
		return nil
	}

	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, userID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("user:%s", userID)
		r.cache.Delete(ctx, cacheKey)
	}
}
