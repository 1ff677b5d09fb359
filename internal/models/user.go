package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleRider  UserRole = "rider"
	RoleDriver UserRole = "driver"
	RoleAdmin  UserRole = "admin"

	// DefaultRate is the rating every account starts with.
	DefaultRate = 10.0

	MinRate = 0.0
	MaxRate = 10.0
)

type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" validate:"required,min=2,max=50"`
	Mobile         string             `json:"mobile" bson:"mobile" validate:"required,mobile"`
	NationalCode   string             `json:"national_code" bson:"national_code"`
	Email          string             `json:"email" bson:"email" validate:"omitempty,email"`
	Password       string             `json:"-" bson:"password"`
	Salt           string             `json:"-" bson:"salt"`
	Role           UserRole           `json:"role" bson:"role" validate:"required,oneof=rider driver admin"`
	Active         bool               `json:"active" bson:"active"`
	Rate           float64            `json:"rate" bson:"rate" validate:"min=0,max=10"`
	ActivationCode string             `json:"-" bson:"activation_code"`
	AccountNumber  string             `json:"account_number" bson:"account_number"`
	DriverState    string             `json:"driver_state" bson:"driver_state"`
	AppID          string             `json:"app_id" bson:"app_id"`
	Location       GeoPoint           `json:"location" bson:"location"`
	LastState      string             `json:"last_state" bson:"last_state"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// UserInfo is the public projection returned after create/confirm/me. It never
// carries password, salt or the activation code.
type UserInfo struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Mobile        string             `json:"mobile"`
	Email         string             `json:"email"`
	Role          UserRole           `json:"role"`
	Active        bool               `json:"active"`
	Rate          float64            `json:"rate"`
	AccountNumber string             `json:"account_number"`
	DriverState   string             `json:"driver_state"`
	AppID         string             `json:"app_id"`
	Location      GeoPoint           `json:"location"`
	LastState     string             `json:"last_state"`
}

func (u *User) Info() *UserInfo {
	return &UserInfo{
		ID:            u.ID,
		Name:          u.Name,
		Mobile:        u.Mobile,
		Email:         u.Email,
		Role:          u.Role,
		Active:        u.Active,
		Rate:          u.Rate,
		AccountNumber: u.AccountNumber,
		DriverState:   u.DriverState,
		AppID:         u.AppID,
		Location:      u.Location,
		LastState:     u.LastState,
	}
}

func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}
