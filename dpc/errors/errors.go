package errors

import "fmt"

// ValidationError indicates malformed or missing input on a request.
type ValidationError struct {
	Err error
	Msg string
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation error: %s: %s", e.Msg, e.Err)
	}
	return fmt.Sprintf("validation error: %s", e.Msg)
}

// EntityNotFoundError indicates the requested entity does not exist
// (or no active row exists, for lifecycle-bounded entities).
type EntityNotFoundError struct {
	Kind string
	ID   string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("no %s found for id %s", e.Kind, e.ID)
}

// CapacityExceededError indicates the provider is not accepting patients or
// the patient count has reached the configured ceiling. Exactly one of two
// racing reservations at the boundary receives this error.
type CapacityExceededError struct {
	ProviderID uint
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("provider %d is at patient capacity or not accepting patients", e.ProviderID)
}

// DoubleReleaseError indicates a capacity release with no matching
// reservation. This is a programming error in the caller.
type DoubleReleaseError struct {
	ProviderID uint
}

func (e *DoubleReleaseError) Error() string {
	return fmt.Sprintf("capacity release for provider %d with no outstanding reservation", e.ProviderID)
}

// InvalidStateTransitionError indicates an enrollment or transaction
// lifecycle operation that is not legal from the entity's current status.
type InvalidStateTransitionError struct {
	Kind string
	ID   uint
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s %d cannot transition from %s to %s", e.Kind, e.ID, e.From, e.To)
}

// DuplicateEnrollmentError indicates an employee already holds a pending or
// active enrollment in the plan.
type DuplicateEnrollmentError struct {
	EmployeeID uint
	PlanID     uint
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("employee %d already has a non-terminal enrollment in plan %d", e.EmployeeID, e.PlanID)
}

// DuplicateDependentEnrollmentError indicates the dependent is already
// actively enrolled under the parent enrollment.
type DuplicateDependentEnrollmentError struct {
	EnrollmentID uint
	DependentID  uint
}

func (e *DuplicateDependentEnrollmentError) Error() string {
	return fmt.Sprintf("dependent %d is already enrolled under enrollment %d", e.DependentID, e.EnrollmentID)
}

// DuplicateReferenceError indicates a billing issuance replay: a transaction
// with the same reference id already exists. Callers re-read by reference id
// and return the winner's row instead of double billing.
type DuplicateReferenceError struct {
	ReferenceID string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("transaction with reference id %s already exists", e.ReferenceID)
}

// PermissionDeniedError indicates the actor is not allowed to perform the
// operation on the target entity.
type PermissionDeniedError struct {
	Msg string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Msg)
}

// AuditWriteError indicates a failed audit trail write. It is never surfaced
// to the caller of the primary operation; the audit pipeline retries and
// dead-letters it separately.
type AuditWriteError struct {
	Err error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("audit write failed: %s", e.Err)
}

func (e *AuditWriteError) Unwrap() error {
	return e.Err
}
