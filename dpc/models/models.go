package models

import (
	"fmt"
	"time"

	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"
)

type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusInactive  EnrollmentStatus = "INACTIVE"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are allowed.
func (s EnrollmentStatus) IsTerminal() bool {
	return s == EnrollmentStatusCancelled
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
// Legal transitions: PENDING→ACTIVE, ACTIVE→INACTIVE, and any non-terminal
// status → CANCELLED. Nothing leaves CANCELLED.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	switch next {
	case EnrollmentStatusActive:
		return s == EnrollmentStatusPending
	case EnrollmentStatusInactive:
		return s == EnrollmentStatusActive
	case EnrollmentStatusCancelled:
		return !s.IsTerminal()
	default:
		return false
	}
}

type TransactionType string

const (
	TransactionTypeProviderPayment  TransactionType = "PROVIDER"
	TransactionTypeBrokerCommission TransactionType = "BROKER"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

type ProviderType string

const (
	ProviderTypeMDDO ProviderType = "MDDO"
	ProviderTypeNP   ProviderType = "NP"
	ProviderTypePA   ProviderType = "PA"
)

type ActorType string

const (
	ActorTypeAdmin     ActorType = "ADMIN"
	ActorTypeProvider  ActorType = "PROVIDER"
	ActorTypeEmployer  ActorType = "EMPLOYER"
	ActorTypeBroker    ActorType = "BROKER"
	ActorTypeAnonymous ActorType = "ANONYMOUS"
)

// Actor identifies who performed an operation. It is threaded explicitly into
// every mutating call; there is no ambient current-user state.
type Actor struct {
	ID   uuid.UUID
	Type ActorType

	// Request metadata carried through to the audit trail.
	IPAddress string
	UserAgent string
}

// EntityKind plus an id is the typed reference the audit trail stores instead
// of a polymorphic foreign key.
type EntityKind string

const (
	EntityKindProvider            EntityKind = "provider"
	EntityKindProviderPlan        EntityKind = "provider_plan"
	EntityKindEnrollment          EntityKind = "enrollment"
	EntityKindDependentEnrollment EntityKind = "dependent_enrollment"
	EntityKindTransaction         EntityKind = "transaction"
)

// Period is a closed date range over which a transaction's amount applies.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && !p.End.Before(p.Start)
}

func (p Period) String() string {
	return fmt.Sprintf("%s..%s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

type Provider struct {
	ID           uint
	UUID         uuid.UUID
	PracticeName string
	ProviderType ProviderType
	NPINumber    string

	AcceptingPatients   bool
	MaxPatientCapacity  int
	CurrentPatientCount int

	Credentials *ProviderCredentials

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAcceptingPatients reports whether a new patient could be accepted right
// now. This is a point-in-time read; the authoritative check-and-increment
// happens in the repository in a single statement.
func (p *Provider) IsAcceptingPatients() bool {
	return p.AcceptingPatients && p.CurrentPatientCount < p.MaxPatientCapacity
}

// ProviderCredentials is the per-kind credential payload. The Kind field
// discriminates which of the optional sections is populated; the enrollment
// engine and capacity guard never inspect it.
type ProviderCredentials struct {
	Kind ProviderType

	// MD/DO
	MedicalSchool        string
	ResidencyInstitution string
	ResidencySpecialty   string

	// NP / PA
	School               string
	SchoolGraduationYear int
}

type ProviderPlan struct {
	ID          uint
	ProviderID  uint
	Name        string
	Description string

	// MonthlyAmount bills the enrolled employee; DependentMonthlyAmount is the
	// per-dependent surcharge and may be zero.
	MonthlyAmount          decimal.Decimal
	DependentMonthlyAmount decimal.Decimal

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Enrollment struct {
	ID         uint
	PlanID     uint
	EmployeeID uint
	BrokerID   *uint
	Status     EnrollmentStatus
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type DependentEnrollment struct {
	ID           uint
	EnrollmentID uint
	DependentID  uint
	StartDate    time.Time
	EndDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActiveOn reports whether the dependent enrollment covers the given date.
func (d *DependentEnrollment) ActiveOn(day time.Time) bool {
	if day.Before(d.StartDate) {
		return false
	}
	return d.EndDate == nil || !d.EndDate.Before(day)
}

type Transaction struct {
	ID           uint
	EnrollmentID uint
	Type         TransactionType
	Amount       decimal.Decimal
	Status       TransactionStatus
	PeriodStart  time.Time
	PeriodEnd    time.Time
	ProviderID   *uint
	BrokerID     *uint
	ReferenceID  string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Transaction) Period() Period {
	return Period{Start: t.PeriodStart, End: t.PeriodEnd}
}

type TransactionDetail struct {
	ID                    uint
	TransactionID         uint
	Description           string
	Amount                decimal.Decimal
	DependentEnrollmentID *uint
	CreatedAt             time.Time
}

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionAccess AuditAction = "ACCESS"
	AuditActionExport AuditAction = "EXPORT"
)

const (
	AuditStatusSuccess = "SUCCESS"
	AuditStatusError   = "ERROR"
)

type AuditLog struct {
	ID           uint
	ActorID      uuid.UUID
	ActorType    ActorType
	Action       AuditAction
	EntityKind   EntityKind
	EntityID     uint
	Details      map[string]interface{}
	Status       string
	ErrorMessage string
	IPAddress    string
	UserAgent    string
	Timestamp    time.Time
}

type SecurityAction string

const (
	SecurityActionPermissionDenied  SecurityAction = "PERMISSION_DENIED"
	SecurityActionInvalidToken      SecurityAction = "INVALID_TOKEN"
	SecurityActionSuspiciousAccess  SecurityAction = "SUSPICIOUS_ACCESS"
	SecurityActionRateLimitExceeded SecurityAction = "RATE_LIMIT_EXCEEDED"
	SecurityActionFailedLogin       SecurityAction = "FAILED_LOGIN"
)

type Severity string

const (
	SeverityInfo   Severity = "INFO"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

type SecurityAuditLog struct {
	ID        uint
	ActorID   uuid.UUID
	ActorType ActorType
	Action    SecurityAction
	Severity  Severity
	Details   map[string]interface{}
	IPAddress string
	UserAgent string
	Timestamp time.Time
}

// RevenueBreakdownRow is one provider/plan grouping in an employer's
// projected revenue report.
type RevenueBreakdownRow struct {
	ProviderID             uint
	PracticeName           string
	PlanID                 uint
	PlanName               string
	MonthlyAmount          decimal.Decimal
	DependentMonthlyAmount decimal.Decimal
	EmployeeCount          int
	DependentCount         int
}

// EnrollmentStats is a point-in-time aggregation of membership counts.
// Counts reflect current state at read time; no causal ordering is guaranteed
// across concurrent writers.
type EnrollmentStats struct {
	TotalEmployees     int
	EnrolledEmployees  int
	PendingEmployees   int
	EnrolledDependents int
}
