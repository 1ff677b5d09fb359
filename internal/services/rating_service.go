package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/repositories/interfaces"
	"taxiline/pkg/logger"
)

// RatingService recomputes a driver's displayed rating when a ride is
// finalized. The new rating is the mean of the current rating and the ride
// rating, a moving average weighted toward recent rides.
type RatingService struct {
	users interfaces.UserRepository
	log   *logger.Logger

	// One mutex per driver id. Concurrent finalizations for the same driver
	// serialize here so the read-modify-write never loses an update.
	locks sync.Map
}

func NewRatingService(users interfaces.UserRepository, log *logger.Logger) *RatingService {
	return &RatingService{
		users: users,
		log:   log,
	}
}

// AggregateDriverRate loads the driver, folds the ride rating into their
// rate and persists the result. The dependent ride save must not proceed
// until this returns; a missing driver fails the whole operation.
func (s *RatingService) AggregateDriverRate(ctx context.Context, driverID primitive.ObjectID, rideRate float64) (float64, error) {
	mu := s.lockFor(driverID)
	mu.Lock()
	defer mu.Unlock()

	driver, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		return 0, err
	}

	newRate := (driver.Rate + rideRate) / 2

	if err := s.users.UpdateRate(ctx, driverID, newRate); err != nil {
		return 0, err
	}

	s.log.WithUserID(driverID).WithFields(map[string]interface{}{
		"previous_rate": driver.Rate,
		"ride_rate":     rideRate,
		"new_rate":      newRate,
	}).Debug("Driver rate aggregated")

	return newRate, nil
}

func (s *RatingService) lockFor(driverID primitive.ObjectID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(driverID.Hex(), &sync.Mutex{})
	return mu.(*sync.Mutex)
}
