// Package responseutils maps the service error taxonomy onto HTTP responses.
package responseutils

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"

	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/log"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	EntityID string `json:"entity_id,omitempty"`
}

// WriteError renders err with the status code its kind maps to. Unrecognized
// errors are treated as internal and their detail kept out of the response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	if status == http.StatusInternalServerError {
		log.API.Errorf("Internal error serving %s: %s", r.URL.Path, err.Error())
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: detail})
}

func classify(err error) (int, ErrorDetail) {
	var (
		validation         *dpcErrors.ValidationError
		notFound           *dpcErrors.EntityNotFoundError
		capacityExceeded   *dpcErrors.CapacityExceededError
		invalidTransition  *dpcErrors.InvalidStateTransitionError
		duplicateEnroll    *dpcErrors.DuplicateEnrollmentError
		duplicateDependent *dpcErrors.DuplicateDependentEnrollmentError
		duplicateReference *dpcErrors.DuplicateReferenceError
		permissionDenied   *dpcErrors.PermissionDeniedError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorDetail{Code: "validation_error", Message: validation.Error()}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorDetail{Code: "not_found", Message: notFound.Error(), EntityID: notFound.ID}
	case errors.As(err, &capacityExceeded):
		return http.StatusConflict, ErrorDetail{Code: "capacity_exceeded", Message: capacityExceeded.Error(),
			EntityID: fmt.Sprint(capacityExceeded.ProviderID)}
	case errors.As(err, &invalidTransition):
		return http.StatusConflict, ErrorDetail{Code: "invalid_state_transition", Message: invalidTransition.Error(),
			EntityID: fmt.Sprint(invalidTransition.ID)}
	case errors.As(err, &duplicateEnroll):
		return http.StatusConflict, ErrorDetail{Code: "duplicate_enrollment", Message: duplicateEnroll.Error()}
	case errors.As(err, &duplicateDependent):
		return http.StatusConflict, ErrorDetail{Code: "duplicate_dependent_enrollment", Message: duplicateDependent.Error(),
			EntityID: fmt.Sprint(duplicateDependent.EnrollmentID)}
	case errors.As(err, &duplicateReference):
		return http.StatusConflict, ErrorDetail{Code: "duplicate_reference", Message: duplicateReference.Error(),
			EntityID: duplicateReference.ReferenceID}
	case errors.As(err, &permissionDenied):
		return http.StatusForbidden, ErrorDetail{Code: "permission_denied", Message: permissionDenied.Error()}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: "an internal error occurred"}
	}
}
