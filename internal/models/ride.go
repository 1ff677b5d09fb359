package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusCancelled is the terminal branch reachable from any non-terminal
// status. It is always accepted regardless of the configured progression.
const StatusCancelled = "cancelled"

// DefaultRideStatuses is the ordered progression used when none is configured.
var DefaultRideStatuses = []string{
	"requested", "accepted", "arrived", "started", "finished", "settled",
}

// StatusSet holds the injected, ordered ride status progression. The core
// validates against it instead of hardcoding status literals.
type StatusSet struct {
	ordered []string
	index   map[string]int
}

func NewStatusSet(ordered []string) *StatusSet {
	if len(ordered) == 0 {
		ordered = DefaultRideStatuses
	}
	index := make(map[string]int, len(ordered))
	for i, s := range ordered {
		index[s] = i
	}
	return &StatusSet{ordered: ordered, index: index}
}

// Default returns the first status of the progression, assigned to new rides.
func (s *StatusSet) Default() string {
	return s.ordered[0]
}

func (s *StatusSet) Valid(status string) bool {
	if status == StatusCancelled {
		return true
	}
	_, ok := s.index[status]
	return ok
}

func (s *StatusSet) All() []string {
	all := make([]string, len(s.ordered), len(s.ordered)+1)
	copy(all, s.ordered)
	return append(all, StatusCancelled)
}

type Ride struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User          primitive.ObjectID `json:"user" bson:"user"`
	Driver        primitive.ObjectID `json:"driver" bson:"driver" validate:"required"`
	Src           GeoPoint           `json:"src" bson:"src"`
	Des           []GeoPoint         `json:"des" bson:"des"`
	Loc           GeoPoint           `json:"loc" bson:"loc"`
	Distance      float64            `json:"distance" bson:"distance"`
	Date          time.Time          `json:"date" bson:"date"`
	ArrivedAt     *time.Time         `json:"arrived_at" bson:"arrived_at"`
	StartAt       *time.Time         `json:"start_at" bson:"start_at"`
	FinishedAt    *time.Time         `json:"finished_at" bson:"finished_at"`
	Duration      float64            `json:"duration" bson:"duration"`
	Cost          float64            `json:"cost" bson:"cost"`
	PaymentMethod string             `json:"payment_method" bson:"payment_method"`
	Rate          float64            `json:"rate" bson:"rate" validate:"min=0,max=10"`
	Description   string             `json:"description" bson:"description" validate:"max=200"`
	Status        string             `json:"status" bson:"status"`
	IsSettled     bool               `json:"is_settled" bson:"is_settled"`
	Subscribers   []string           `json:"subscribers" bson:"subscribers"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// Settlement records a financial reconciliation event. Rides flip their
// is_settled flag; the settlement document keeps the audit trail.
type Settlement struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Date time.Time          `json:"date" bson:"date"`
}
