// Package service implements the TeamLoop use-cases on top of the store:
// friend request lifecycle, invite generation and consumption, project
// membership, and the denormalized indexes that keep clients fast.
//
// Consistency policy: primary entity writes are authoritative and fail
// the operation when they fail. Secondary writes (friend counters,
// wrapper mirrors, member counts, DM bootstrap) are attempted
// best-effort; their failures are logged and left for eventual repair.
package service

import (
	"errors"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/teamloop/teamloop-server/internal/domain"
	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// formatValidationError converts validator errors to user-friendly domain errors.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		// Return first validation error as a domain error
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				return domainerrors.Validationf("%s is required", field)
			case "email":
				return domainerrors.Validationf("%s must be a valid email address", field)
			case "min":
				return domainerrors.Validationf("%s must be at least %s characters", field, e.Param())
			case "max":
				return domainerrors.Validationf("%s exceeds maximum length of %s characters", field, e.Param())
			case "nefield":
				return domainerrors.Validationf("%s must differ from %s", field, e.Param())
			default:
				return domainerrors.Validationf("%s is invalid", field)
			}
		}
	}
	return err
}

// friendRequestID builds the shared ID tagged onto both edges of one
// friend request so they can be correlated later.
func friendRequestID(userAID, userBID string) string {
	a, b := domain.SortUserPair(userAID, userBID)
	return "freq_" + a + "_" + b + "_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
