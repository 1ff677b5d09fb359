package services

import (
	"context"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/apperrors"
	"taxiline/internal/models"
)

func TestAggregateDriverRate(t *testing.T) {
	users := newMockUserRepo()
	svc := NewRatingService(users, testLogger(t))

	driver := users.put(&models.User{
		Name:   "Driver",
		Mobile: "+15550001111",
		Role:   models.RoleDriver,
		Rate:   models.DefaultRate,
	})

	// A perfect ride keeps a perfect driver at 10.
	rate, err := svc.AggregateDriverRate(context.Background(), driver.ID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 10 {
		t.Errorf("rate = %v, want 10", rate)
	}

	// A 4-star ride halves the distance to the current rate.
	rate, err = svc.AggregateDriverRate(context.Background(), driver.ID, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 7 {
		t.Errorf("rate = %v, want 7", rate)
	}

	// Recent rides weigh heavier than old ones.
	rate, err = svc.AggregateDriverRate(context.Background(), driver.ID, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 5.5 {
		t.Errorf("rate = %v, want 5.5", rate)
	}

	if stored := users.stored(driver.ID); stored.Rate != 5.5 {
		t.Errorf("stored rate = %v, want 5.5", stored.Rate)
	}
}

func TestAggregateDriverRateMissingDriver(t *testing.T) {
	users := newMockUserRepo()
	svc := NewRatingService(users, testLogger(t))

	_, err := svc.AggregateDriverRate(context.Background(), primitive.NewObjectID(), 5)
	if err == nil {
		t.Fatal("expected error for missing driver")
	}
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not found, got %T", err)
	}
	if users.rateUpdates != 0 {
		t.Errorf("rate updated despite missing driver")
	}
}

func TestAggregateDriverRateSerializesPerDriver(t *testing.T) {
	users := newMockUserRepo()
	svc := NewRatingService(users, testLogger(t))

	driver := users.put(&models.User{
		Name:   "Driver",
		Mobile: "+15550001111",
		Role:   models.RoleDriver,
		Rate:   10,
	})

	const workers = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.AggregateDriverRate(context.Background(), driver.ID, 10); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// (10+10)/2 is a fixed point, so every serialized pass lands back on 10
	// and none of the read-modify-write cycles may be lost.
	if stored := users.stored(driver.ID); stored.Rate != 10 {
		t.Errorf("stored rate = %v, want 10", stored.Rate)
	}
	if users.rateUpdates != workers {
		t.Errorf("rate updates = %d, want %d", users.rateUpdates, workers)
	}
}
