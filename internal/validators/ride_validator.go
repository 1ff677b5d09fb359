package validators

import (
	"fmt"
	"strings"

	"taxiline/internal/models"
)

// ValidateRide checks a full ride entity against its schema constraints and
// the injected status set. Writes with unknown status values are rejected.
func ValidateRide(ride *models.Ride, statuses *models.StatusSet) ValidationErrors {
	errors := ValidateStruct(ride)

	if ride.Status != "" && !statuses.Valid(ride.Status) {
		errors = append(errors, ValidationError{
			Field:   "status",
			Tag:     "oneof",
			Value:   ride.Status,
			Message: fmt.Sprintf("status must be one of: %s", strings.Join(statuses.All(), " ")),
		})
	}

	return errors
}
