package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/apperrors"
	"taxiline/internal/models"
	"taxiline/internal/patch"
	"taxiline/internal/query"
	"taxiline/internal/repositories/interfaces"
	"taxiline/internal/validators"
	"taxiline/pkg/logger"
)

// RideBroadcaster is the subscription point for live ride updates, keyed by
// the subscriber identifiers a ride carries.
type RideBroadcaster interface {
	Publish(keys []string, msgType string, data interface{})
}

// RideService governs the ride lifecycle. Every persist goes through a
// pre-commit step that validates the status against the injected status set
// and, when the caller did not touch the ride rating, folds the carried-over
// rating into the driver's rate before the ride write completes.
type RideService struct {
	rides       interfaces.RideRepository
	settlements interfaces.SettlementRepository
	ratings     *RatingService
	statuses    *models.StatusSet
	broadcaster RideBroadcaster
	log         *logger.Logger
}

func NewRideService(
	rides interfaces.RideRepository,
	settlements interfaces.SettlementRepository,
	ratings *RatingService,
	statuses *models.StatusSet,
	broadcaster RideBroadcaster,
	log *logger.Logger,
) *RideService {
	return &RideService{
		rides:       rides,
		settlements: settlements,
		ratings:     ratings,
		statuses:    statuses,
		broadcaster: broadcaster,
		log:         log,
	}
}

// Create persists a new ride. rateTouched reports whether the caller
// explicitly supplied a rating; an untouched rating carries the default and
// triggers aggregation, exactly like any other save.
func (s *RideService) Create(ctx context.Context, ride *models.Ride, rateTouched bool) (*models.Ride, error) {
	if ride.Status == "" {
		ride.Status = s.statuses.Default()
	}
	if !rateTouched {
		ride.Rate = models.DefaultRate
	}
	if ride.Loc.Type == "" {
		ride.Loc = models.Origin()
	}
	if ride.Date.IsZero() {
		ride.Date = time.Now()
	}

	if err := s.prePersist(ctx, ride, rateTouched); err != nil {
		return nil, err
	}

	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.log.LogRideEvent(ride.ID, "created", map[string]interface{}{"status": ride.Status})
	s.notifySubscribers(ride)

	return ride, nil
}

// Save persists changes to an existing ride through the same pre-commit step
// as Create.
func (s *RideService) Save(ctx context.Context, ride *models.Ride, rateTouched bool) (*models.Ride, error) {
	if err := s.prePersist(ctx, ride, rateTouched); err != nil {
		return nil, err
	}

	if err := s.rides.Save(ctx, ride); err != nil {
		return nil, err
	}

	s.log.LogRideEvent(ride.ID, "saved", map[string]interface{}{"status": ride.Status})
	s.notifySubscribers(ride)

	return ride, nil
}

func (s *RideService) Show(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	return s.rides.GetByID(ctx, id)
}

func (s *RideService) List(ctx context.Context, params *query.Params) (*query.Envelope, error) {
	rides, count, err := s.rides.List(ctx, params)
	if err != nil {
		return nil, err
	}

	if rides == nil {
		rides = []*models.Ride{}
	}

	return &query.Envelope{
		Data:          rides,
		NumberOfPages: query.NumberOfPages(count, params.Pagination.Number),
	}, nil
}

// Patch applies an ordered set of field edits to a ride, validates the result
// and persists it. A failing operation aborts before anything is written.
func (s *RideService) Patch(ctx context.Context, id primitive.ObjectID, ops []patch.Operation) (*models.Ride, error) {
	ride, err := s.rides.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := patch.Apply(ops, ridePatchFields(ride)); err != nil {
		return nil, err
	}

	return s.Save(ctx, ride, touchesRate(ops))
}

func (s *RideService) UpdateLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) (*models.Ride, error) {
	ride, err := s.rides.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rides.UpdateLocation(ctx, id, loc); err != nil {
		return nil, err
	}

	ride.Loc = loc
	s.notifySubscribers(ride)

	return ride, nil
}

// Settle marks a ride settled and records the settlement event. The flag is
// monotonic; settling twice is a no-op.
func (s *RideService) Settle(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rides.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ride.IsSettled {
		return ride, nil
	}

	if err := s.rides.MarkSettled(ctx, id); err != nil {
		return nil, err
	}

	if err := s.settlements.Create(ctx, &models.Settlement{Date: time.Now()}); err != nil {
		return nil, err
	}

	ride.IsSettled = true
	s.log.LogRideEvent(ride.ID, "settled", nil)
	s.notifySubscribers(ride)

	return ride, nil
}

func (s *RideService) Destroy(ctx context.Context, id primitive.ObjectID) error {
	return s.rides.Delete(ctx, id)
}

// prePersist is the single hook point ahead of every ride write: the status
// must belong to the injected set, the entity must validate, and an untouched
// rating triggers driver rate aggregation before the write goes through.
func (s *RideService) prePersist(ctx context.Context, ride *models.Ride, rateTouched bool) error {
	if verrs := validators.ValidateRide(ride, s.statuses); len(verrs) > 0 {
		return apperrors.NewValidation(verrs.ToMap())
	}

	if !rateTouched {
		if _, err := s.ratings.AggregateDriverRate(ctx, ride.Driver, ride.Rate); err != nil {
			return err
		}
	}

	return nil
}

func (s *RideService) notifySubscribers(ride *models.Ride) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(ride.Subscribers, "ride_update", ride)
}

// ridePatchFields exposes the patchable ride fields through typed accessors.
// The settled flag and the user/driver references are deliberately absent.
func ridePatchFields(ride *models.Ride) patch.Registry {
	return patch.Registry{
		"distance":       patch.Float64(&ride.Distance),
		"duration":       patch.Float64(&ride.Duration),
		"cost":           patch.Float64(&ride.Cost),
		"payment_method": patch.String(&ride.PaymentMethod),
		"rate":           patch.Float64(&ride.Rate),
		"description":    patch.String(&ride.Description),
		"status":         patch.String(&ride.Status),
		"subscribers":    patch.StringSlice(&ride.Subscribers),
	}
}

// touchesRate reports whether any operation explicitly edits the rating.
func touchesRate(ops []patch.Operation) bool {
	for _, op := range ops {
		if op.Path == "rate" || op.Path == "/rate" {
			return true
		}
	}
	return false
}
