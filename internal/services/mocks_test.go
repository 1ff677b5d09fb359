package services

import (
	"context"
	"io"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/apperrors"
	"taxiline/internal/models"
	"taxiline/internal/query"
	"taxiline/pkg/logger"
	"taxiline/pkg/sms"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	log.SetOutput(io.Discard)
	return log
}

// mockUserRepo is an in-memory UserRepository. Reads hand out copies so a
// caller mutating an entity cannot leak into the store without a write call.
type mockUserRepo struct {
	mu          sync.Mutex
	users       map[primitive.ObjectID]*models.User
	rateUpdates int
	saveCalls   int
	updates     []map[string]interface{}
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *mockUserRepo) put(user *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	m.users[user.ID] = &cp
	return user
}

func (m *mockUserRepo) stored(id primitive.ObjectID) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.put(user)
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user")
	}
	cp := *user
	return &cp, nil
}

func (m *mockUserRepo) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Mobile == mobile {
			cp := *user
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("user")
}

func (m *mockUserRepo) List(ctx context.Context, params *query.Params) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*models.User, 0, len(m.users))
	for _, user := range m.users {
		cp := *user
		users = append(users, &cp)
	}
	return users, int64(len(users)), nil
}

func (m *mockUserRepo) Save(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return apperrors.NewNotFound("user")
	}
	cp := *user
	m.users[user.ID] = &cp
	m.saveCalls++
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return apperrors.NewNotFound("user")
	}
	if password, ok := updates["password"].(string); ok {
		user.Password = password
	}
	if code, ok := updates["activation_code"].(string); ok {
		user.ActivationCode = code
	}
	m.updates = append(m.updates, updates)
	return nil
}

func (m *mockUserRepo) UpdateRate(ctx context.Context, id primitive.ObjectID, rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return apperrors.NewNotFound("user")
	}
	user.Rate = rate
	m.rateUpdates++
	return nil
}

func (m *mockUserRepo) ToggleActivation(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return apperrors.NewNotFound("user")
	}
	user.Active = !user.Active
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apperrors.NewNotFound("user")
	}
	delete(m.users, id)
	return nil
}

type mockRideRepo struct {
	mu               sync.Mutex
	rides            map[primitive.ObjectID]*models.Ride
	createCalls      int
	saveCalls        int
	markSettledCalls int
}

func newMockRideRepo() *mockRideRepo {
	return &mockRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (m *mockRideRepo) put(ride *models.Ride) *models.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	cp := *ride
	m.rides[ride.ID] = &cp
	return ride
}

func (m *mockRideRepo) stored(id primitive.ObjectID) *models.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rides[id]
}

func (m *mockRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	m.put(ride)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	return nil
}

func (m *mockRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, apperrors.NewNotFound("ride")
	}
	cp := *ride
	return &cp, nil
}

func (m *mockRideRepo) List(ctx context.Context, params *query.Params) ([]*models.Ride, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rides := make([]*models.Ride, 0, len(m.rides))
	for _, ride := range m.rides {
		cp := *ride
		rides = append(rides, &cp)
	}
	return rides, int64(len(rides)), nil
}

func (m *mockRideRepo) Save(ctx context.Context, ride *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return apperrors.NewNotFound("ride")
	}
	cp := *ride
	m.rides[ride.ID] = &cp
	m.saveCalls++
	return nil
}

func (m *mockRideRepo) UpdateLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return apperrors.NewNotFound("ride")
	}
	ride.Loc = loc
	return nil
}

func (m *mockRideRepo) MarkSettled(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return apperrors.NewNotFound("ride")
	}
	ride.IsSettled = true
	m.markSettledCalls++
	return nil
}

func (m *mockRideRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return apperrors.NewNotFound("ride")
	}
	delete(m.rides, id)
	return nil
}

type mockSettlementRepo struct {
	mu      sync.Mutex
	created []*models.Settlement
}

func (m *mockSettlementRepo) Create(ctx context.Context, settlement *models.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, settlement)
	return nil
}

func (m *mockSettlementRepo) List(ctx context.Context) ([]*models.Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created, nil
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	keys    []string
	msgType string
}

func (m *mockBroadcaster) Publish(keys []string, msgType string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{keys: keys, msgType: msgType})
}

func (m *mockBroadcaster) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type mockSMSProvider struct {
	mu   sync.Mutex
	sent []*sms.Request
}

func (m *mockSMSProvider) Send(ctx context.Context, request *sms.Request) (*sms.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, request)
	return &sms.Response{MessageID: "msg-1", Status: "sent"}, nil
}
