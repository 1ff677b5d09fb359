package services

import (
	"context"
	"testing"

	"taxiline/internal/apperrors"
	"taxiline/internal/models"
	"taxiline/internal/patch"
	"taxiline/internal/query"
)

type rideFixture struct {
	svc         *RideService
	rides       *mockRideRepo
	settlements *mockSettlementRepo
	users       *mockUserRepo
	broadcaster *mockBroadcaster
	driver      *models.User
}

func newRideFixture(t *testing.T) *rideFixture {
	t.Helper()

	users := newMockUserRepo()
	rides := newMockRideRepo()
	settlements := &mockSettlementRepo{}
	broadcaster := &mockBroadcaster{}
	log := testLogger(t)

	driver := users.put(&models.User{
		Name:   "Driver",
		Mobile: "+15550001111",
		Role:   models.RoleDriver,
		Rate:   models.DefaultRate,
	})

	svc := NewRideService(
		rides,
		settlements,
		NewRatingService(users, log),
		models.NewStatusSet(nil),
		broadcaster,
		log,
	)

	return &rideFixture{
		svc:         svc,
		rides:       rides,
		settlements: settlements,
		users:       users,
		broadcaster: broadcaster,
		driver:      driver,
	}
}

func (f *rideFixture) newRide() *models.Ride {
	return &models.Ride{
		Driver:      f.driver.ID,
		Subscribers: []string{"device-1"},
	}
}

func TestRideCreateDefaults(t *testing.T) {
	f := newRideFixture(t)

	ride, err := f.svc.Create(context.Background(), f.newRide(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != "requested" {
		t.Errorf("status = %q, want requested", ride.Status)
	}
	if ride.Rate != models.DefaultRate {
		t.Errorf("rate = %v, want default", ride.Rate)
	}
	if ride.Loc.Type != "Point" {
		t.Errorf("loc not defaulted: %+v", ride.Loc)
	}
	if ride.Date.IsZero() {
		t.Error("date not defaulted")
	}
	if f.rides.createCalls != 1 {
		t.Errorf("create calls = %d", f.rides.createCalls)
	}
	if f.broadcaster.count() != 1 {
		t.Errorf("published events = %d, want 1", f.broadcaster.count())
	}
}

func TestRideCreateUntouchedRateAggregatesOnce(t *testing.T) {
	f := newRideFixture(t)

	if _, err := f.svc.Create(context.Background(), f.newRide(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.users.rateUpdates != 1 {
		t.Errorf("rate updates = %d, want exactly 1", f.users.rateUpdates)
	}
	// Default ride rate against a default driver rate is a fixed point.
	if stored := f.users.stored(f.driver.ID); stored.Rate != models.DefaultRate {
		t.Errorf("driver rate = %v, want %v", stored.Rate, models.DefaultRate)
	}
}

func TestRideCreateTouchedRateSkipsAggregation(t *testing.T) {
	f := newRideFixture(t)

	ride := f.newRide()
	ride.Rate = 4

	created, err := f.svc.Create(context.Background(), ride, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Rate != 4 {
		t.Errorf("rate = %v, want 4", created.Rate)
	}
	if f.users.rateUpdates != 0 {
		t.Errorf("rate updates = %d, explicit rating must not aggregate", f.users.rateUpdates)
	}
}

func TestRideSaveCarriedRateAggregates(t *testing.T) {
	f := newRideFixture(t)

	// An earlier save left a 4 on the ride. Finalizing without touching the
	// rating folds that carried value into the driver rate.
	ride := f.newRide()
	ride.Rate = 4
	if _, err := f.svc.Create(context.Background(), ride, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ride.Status = "finished"
	if _, err := f.svc.Save(context.Background(), ride, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored := f.users.stored(f.driver.ID); stored.Rate != 7 {
		t.Errorf("driver rate = %v, want 7", stored.Rate)
	}
}

func TestRideCreateRejectsUnknownStatus(t *testing.T) {
	f := newRideFixture(t)

	ride := f.newRide()
	ride.Status = "flying"

	_, err := f.svc.Create(context.Background(), ride, false)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %T", err)
	}
	if f.rides.createCalls != 0 {
		t.Error("invalid ride reached the repository")
	}
	if f.users.rateUpdates != 0 {
		t.Error("validation failure must precede aggregation")
	}
}

func TestRideCreateAcceptsCancelled(t *testing.T) {
	f := newRideFixture(t)

	ride := f.newRide()
	ride.Status = models.StatusCancelled

	if _, err := f.svc.Create(context.Background(), ride, false); err != nil {
		t.Fatalf("cancelled must always validate: %v", err)
	}
}

func TestRideCreateMissingDriver(t *testing.T) {
	f := newRideFixture(t)

	ride := &models.Ride{}

	_, err := f.svc.Create(context.Background(), ride, false)
	if err == nil {
		t.Fatal("expected error for missing driver reference")
	}
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %T", err)
	}
}

func TestRidePatch(t *testing.T) {
	f := newRideFixture(t)

	ride := f.newRide()
	if _, err := f.svc.Create(context.Background(), ride, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updatesBefore := f.users.rateUpdates

	patched, err := f.svc.Patch(context.Background(), ride.ID, []patch.Operation{
		{Op: patch.OpSet, Path: "cost", Value: 42.0},
		{Op: patch.OpSet, Path: "status", Value: "accepted"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if patched.Cost != 42 || patched.Status != "accepted" {
		t.Errorf("patch not applied: %+v", patched)
	}
	if stored := f.rides.stored(ride.ID); stored.Cost != 42 {
		t.Errorf("patch not persisted: %+v", stored)
	}
	// No rate edit in the patch, so the save aggregates again.
	if f.users.rateUpdates != updatesBefore+1 {
		t.Errorf("rate updates = %d, want %d", f.users.rateUpdates, updatesBefore+1)
	}
}

func TestRidePatchTouchingRateSkipsAggregation(t *testing.T) {
	f := newRideFixture(t)

	ride := f.newRide()
	if _, err := f.svc.Create(context.Background(), ride, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updatesBefore := f.users.rateUpdates

	patched, err := f.svc.Patch(context.Background(), ride.ID, []patch.Operation{
		{Op: patch.OpSet, Path: "rate", Value: 3.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if patched.Rate != 3 {
		t.Errorf("rate = %v, want 3", patched.Rate)
	}
	if f.users.rateUpdates != updatesBefore {
		t.Error("explicit rate edit must not aggregate")
	}
}

func TestRidePatchInvalidOpLeavesStoreUntouched(t *testing.T) {
	f := newRideFixture(t)

	ride := f.newRide()
	ride.Description = "original"
	if _, err := f.svc.Create(context.Background(), ride, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.Patch(context.Background(), ride.ID, []patch.Operation{
		{Op: patch.OpSet, Path: "description", Value: "changed"},
		{Op: patch.OpSet, Path: "is_settled", Value: true},
	})
	if err == nil {
		t.Fatal("expected error, is_settled is not patchable")
	}

	if f.rides.saveCalls != 0 {
		t.Error("failed patch must not persist")
	}
	if stored := f.rides.stored(ride.ID); stored.Description != "original" {
		t.Errorf("stored description = %q, want original", stored.Description)
	}
}

func TestRideSettle(t *testing.T) {
	f := newRideFixture(t)

	ride := f.newRide()
	if _, err := f.svc.Create(context.Background(), ride, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	settled, err := f.svc.Settle(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !settled.IsSettled {
		t.Error("ride not settled")
	}
	if f.rides.markSettledCalls != 1 {
		t.Errorf("mark settled calls = %d", f.rides.markSettledCalls)
	}
	if len(f.settlements.created) != 1 {
		t.Errorf("settlement records = %d, want 1", len(f.settlements.created))
	}

	// Settling again is a no-op. The flag is monotonic.
	if _, err := f.svc.Settle(context.Background(), ride.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.rides.markSettledCalls != 1 {
		t.Error("second settle must not write")
	}
	if len(f.settlements.created) != 1 {
		t.Error("second settle must not record a settlement")
	}
}

func TestRideUpdateLocation(t *testing.T) {
	f := newRideFixture(t)

	ride := f.newRide()
	if _, err := f.svc.Create(context.Background(), ride, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventsBefore := f.broadcaster.count()

	loc := models.NewGeoPoint(51.389, 35.689)
	updated, err := f.svc.UpdateLocation(context.Background(), ride.ID, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Loc.Coordinates[0] != 51.389 {
		t.Errorf("loc = %+v", updated.Loc)
	}
	if stored := f.rides.stored(ride.ID); stored.Loc.Coordinates[1] != 35.689 {
		t.Errorf("stored loc = %+v", stored.Loc)
	}
	if f.broadcaster.count() != eventsBefore+1 {
		t.Error("location update must notify subscribers")
	}
}

func TestRideList(t *testing.T) {
	f := newRideFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Create(context.Background(), f.newRide(), false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	envelope, err := f.svc.List(context.Background(), &query.Params{
		Pagination: query.PageSpec{Start: 0, Number: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if envelope.NumberOfPages != 2 {
		t.Errorf("numberOfPages = %d, want 2", envelope.NumberOfPages)
	}
	rides, ok := envelope.Data.([]*models.Ride)
	if !ok {
		t.Fatalf("data is %T", envelope.Data)
	}
	if len(rides) != 3 {
		t.Errorf("rides = %d, want 3", len(rides))
	}
}
