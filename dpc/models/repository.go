package models

import (
	"context"
	"time"

	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"
)

// ProviderRepository contains the methods needed to interact with providers
// and their patient-capacity counters.
type ProviderRepository interface {
	GetProviderByID(ctx context.Context, providerID uint) (*Provider, error)

	// ReservePatientSlot increments the provider's patient count when the
	// provider is accepting patients and below capacity. The check and the
	// increment are a single statement so concurrent reservations at the
	// boundary resolve to exactly one winner. It reports whether the
	// reservation was won.
	ReservePatientSlot(ctx context.Context, providerID uint) (bool, error)

	// ReleasePatientSlot decrements the provider's patient count, floored at
	// zero. It reports whether a slot was actually released; false means the
	// counter was already zero.
	ReleasePatientSlot(ctx context.Context, providerID uint) (bool, error)
}

// CatalogRepository contains methods for the read-mostly membership catalog.
type CatalogRepository interface {
	GetProviderPlanByID(ctx context.Context, planID uint) (*ProviderPlan, error)

	GetProviderPlans(ctx context.Context, providerID uint) ([]*ProviderPlan, error)
}

// EnrollmentRepository contains methods for enrollment and dependent
// enrollment rows.
type EnrollmentRepository interface {
	GetEnrollmentByID(ctx context.Context, enrollmentID uint) (*Enrollment, error)

	// GetNonTerminalEnrollment returns the employee's PENDING or ACTIVE
	// enrollment in the plan, or nil when none exists.
	GetNonTerminalEnrollment(ctx context.Context, employeeID, planID uint) (*Enrollment, error)

	GetPlanEnrollments(ctx context.Context, planID uint) ([]*Enrollment, error)

	CreateEnrollment(ctx context.Context, enrollment Enrollment) (uint, error)

	// UpdateEnrollmentStatus moves the enrollment to the given status only
	// when its current status is one of from, optionally stamping end_date.
	// It returns the number of rows affected; zero means the enrollment was
	// not in an eligible status.
	UpdateEnrollmentStatus(ctx context.Context, enrollmentID uint, from []EnrollmentStatus, to EnrollmentStatus, endDate *time.Time) (int64, error)

	// GetActiveDependentEnrollment returns the dependent's open-ended row
	// under the enrollment, or nil when none exists.
	GetActiveDependentEnrollment(ctx context.Context, enrollmentID, dependentID uint) (*DependentEnrollment, error)

	// GetDependentEnrollmentsOverlapping returns dependent enrollments whose
	// active window intersects the period.
	GetDependentEnrollmentsOverlapping(ctx context.Context, enrollmentID uint, period Period) ([]*DependentEnrollment, error)

	CreateDependentEnrollment(ctx context.Context, dependentEnrollment DependentEnrollment) (uint, error)

	// EndDependentEnrollment stamps end_date on the dependent's active row.
	// Returns the number of rows affected; zero means no active row.
	EndDependentEnrollment(ctx context.Context, enrollmentID, dependentID uint, endDate time.Time) (int64, error)

	// EndDependentEnrollments stamps end_date on every still-active dependent
	// row under the enrollment. Used by the cancellation cascade.
	EndDependentEnrollments(ctx context.Context, enrollmentID uint, endDate time.Time) (int64, error)
}

// TransactionRepository contains methods for the billing ledger.
type TransactionRepository interface {
	// CreateTransaction persists the transaction and its detail lines.
	// Callers are expected to run this inside a database transaction. A
	// reference_id collision rolls back to a savepoint before returning
	// DuplicateReferenceError, so the enclosing transaction stays usable.
	CreateTransaction(ctx context.Context, transaction Transaction, details []TransactionDetail) (uint, error)

	GetTransactionByID(ctx context.Context, transactionID uint) (*Transaction, error)

	// GetTransactionByReferenceID returns nil when no transaction carries the
	// reference id.
	GetTransactionByReferenceID(ctx context.Context, referenceID string) (*Transaction, error)

	GetTransactionDetails(ctx context.Context, transactionID uint) ([]*TransactionDetail, error)

	// UpdateTransactionStatus moves the transaction to the given status only
	// when its current status is one of from. Returns rows affected.
	UpdateTransactionStatus(ctx context.Context, transactionID uint, from []TransactionStatus, to TransactionStatus) (int64, error)

	// GetProviderRevenue sums COMPLETED provider-payment amounts whose
	// billing period intersects the given period. A zero providerID sums
	// across all providers.
	GetProviderRevenue(ctx context.Context, providerID uint, period Period) (decimal.Decimal, error)
}

// ReportingRepository contains the read-side aggregation queries.
type ReportingRepository interface {
	GetEmployerRevenueBreakdown(ctx context.Context, employerID uint) ([]*RevenueBreakdownRow, error)

	GetEnrollmentStats(ctx context.Context, employerID uint) (*EnrollmentStats, error)
}

// AuditRepository contains methods for the append-only audit streams. There
// are deliberately no update or delete methods.
type AuditRepository interface {
	CreateAuditLog(ctx context.Context, entry AuditLog) (uint, error)

	CreateSecurityAuditLog(ctx context.Context, entry SecurityAuditLog) (uint, error)

	GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]*AuditLog, error)

	GetSecurityAuditLogs(ctx context.Context, filter SecurityAuditLogFilter) ([]*SecurityAuditLog, error)
}

// Repository contains all of the methods needed to interact with the data
// represented in the models package.
type Repository interface {
	ProviderRepository
	CatalogRepository
	EnrollmentRepository
	TransactionRepository
	ReportingRepository
	AuditRepository
}

// AuditLogFilter narrows audit log queries. Zero values are ignored.
type AuditLogFilter struct {
	ActorID    uuid.UUID
	Action     AuditAction
	LowerBound time.Time
	UpperBound time.Time
	Limit      int
}

// SecurityAuditLogFilter narrows security audit log queries. Zero values are
// ignored.
type SecurityAuditLogFilter struct {
	Severity   Severity
	LowerBound time.Time
	UpperBound time.Time
	Limit      int
}
