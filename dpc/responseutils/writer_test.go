package responseutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedEntity string
	}{
		{"Validation", &dpcErrors.ValidationError{Msg: "start date is required"}, http.StatusBadRequest, "validation_error", ""},
		{"NotFound", &dpcErrors.EntityNotFoundError{Kind: "enrollment", ID: "11"}, http.StatusNotFound, "not_found", "11"},
		{"CapacityExceeded", &dpcErrors.CapacityExceededError{ProviderID: 7}, http.StatusConflict, "capacity_exceeded", "7"},
		{"InvalidStateTransition", &dpcErrors.InvalidStateTransitionError{Kind: "enrollment", ID: 11, From: "CANCELLED", To: "ACTIVE"}, http.StatusConflict, "invalid_state_transition", "11"},
		{"DuplicateEnrollment", &dpcErrors.DuplicateEnrollmentError{EmployeeID: 9, PlanID: 3}, http.StatusConflict, "duplicate_enrollment", ""},
		{"DuplicateDependentEnrollment", &dpcErrors.DuplicateDependentEnrollmentError{EnrollmentID: 11, DependentID: 31}, http.StatusConflict, "duplicate_dependent_enrollment", "11"},
		{"DuplicateReference", &dpcErrors.DuplicateReferenceError{ReferenceID: "ref"}, http.StatusConflict, "duplicate_reference", "ref"},
		{"PermissionDenied", &dpcErrors.PermissionDeniedError{Msg: "admin only"}, http.StatusForbidden, "permission_denied", ""},
		{"Wrapped", errors.Wrap(&dpcErrors.CapacityExceededError{ProviderID: 7}, "creating enrollment"), http.StatusConflict, "capacity_exceeded", "7"},
		{"Unknown", errors.New("connection refused"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", "/api/v1/enrollments", nil)

			WriteError(w, r, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body ErrorResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedCode, body.Error.Code)
			assert.Equal(t, tt.expectedEntity, body.Error.EntityID)
			assert.NotEmpty(t, body.Error.Message)
			if tt.expectedStatus == http.StatusInternalServerError {
				assert.NotContains(t, body.Error.Message, "connection refused")
			}
		})
	}
}
