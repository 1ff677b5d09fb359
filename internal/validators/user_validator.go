package validators

import (
	"strings"

	"taxiline/internal/models"
)

type UserCreateRequest struct {
	Name         string          `json:"name" validate:"required,min=2,max=50"`
	Mobile       string          `json:"mobile" validate:"required,mobile"`
	NationalCode string          `json:"national_code"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Password     string          `json:"password" validate:"required,min=6"`
	Location     models.GeoPoint `json:"location"`
}

type PasswordChangeRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type ConfirmRequest struct {
	ActivationCode string `json:"activationCode" validate:"required"`
	AppID          string `json:"appId" validate:"required"`
}

// EditRequest carries the self-service profile edit. Only these props are
// writable through this path; empty values keep the current ones.
type EditRequest struct {
	Email         string           `json:"email" validate:"omitempty,email"`
	AccountNumber string           `json:"accountNumber"`
	DriverState   string           `json:"driverState"`
	AppID         string           `json:"appId"`
	Location      *models.GeoPoint `json:"location"`
	LastState     string           `json:"lastState"`
}

func ValidateUserCreate(req *UserCreateRequest) ValidationErrors {
	if req.Email != "" {
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}

	return ValidateStruct(req)
}

// ValidateUser checks a full user entity, e.g. after a patch has been applied
// in memory and before it is persisted.
func ValidateUser(user *models.User) ValidationErrors {
	return ValidateStruct(user)
}

func ValidatePasswordChange(req *PasswordChangeRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.OldPassword != "" && req.OldPassword == req.NewPassword {
		errors = append(errors, ValidationError{
			Field:   "newPassword",
			Message: "New password must be different from current password",
		})
	}

	return errors
}
