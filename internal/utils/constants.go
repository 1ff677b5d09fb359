package utils

import "time"

const (
	AppName    = "Taxiline"
	AppVersion = "1.0.0"

	// Session tokens are long lived; mobile clients stay signed in.
	JWTTokenTTL = 5000 * 24 * time.Hour

	ActivationCodeLength = 5

	PasswordMinLength = 6
	PasswordMaxLength = 128

	StatusSuccess = "success"
	StatusError   = "error"

	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized"
	ErrForbidden        = "Forbidden"
)
