// Package enrollment drives the enrollment and dependent-enrollment
// lifecycles. Every invariant-crossing operation runs inside one database
// transaction against a tx-scoped repository, so the capacity counter, the
// enrollment row, and the first billing cycle commit or roll back together.
package enrollment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/dpcdirect/dpc-app/dpc/audit"
	"github.com/dpcdirect/dpc-app/dpc/billing"
	"github.com/dpcdirect/dpc-app/dpc/capacity"
	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
	"github.com/dpcdirect/dpc-app/dpc/models/postgres"
	"github.com/dpcdirect/dpc-app/log"
)

// cancelAttempts bounds the reload-and-retry loop used to resolve races
// between concurrent lifecycle operations on the same enrollment.
const cancelAttempts = 3

type Service struct {
	db         *sql.DB
	repository models.Repository
	recorder   audit.Auditor

	newRepositoryTx func(*sql.Tx) models.Repository
}

func NewService(db *sql.DB, recorder audit.Auditor) *Service {
	return &Service{
		db:         db,
		repository: postgres.NewRepository(db),
		recorder:   recorder,
		newRepositoryTx: func(tx *sql.Tx) models.Repository {
			return postgres.NewRepositoryTx(tx)
		},
	}
}

// CreateEnrollmentRequest carries the caller's intent for a new enrollment.
// InitialStatus may be PENDING (no capacity consumed) or ACTIVE (a patient
// slot is reserved and the first billing cycle issued immediately).
type CreateEnrollmentRequest struct {
	EmployeeID    uint
	PlanID        uint
	BrokerID      *uint
	StartDate     time.Time
	InitialStatus models.EnrollmentStatus
}

func (req *CreateEnrollmentRequest) validate() error {
	if req.EmployeeID == 0 || req.PlanID == 0 {
		return &dpcErrors.ValidationError{Msg: "employee id and plan id are required"}
	}
	if req.StartDate.IsZero() {
		return &dpcErrors.ValidationError{Msg: "start date is required"}
	}
	switch req.InitialStatus {
	case "":
		req.InitialStatus = models.EnrollmentStatusPending
	case models.EnrollmentStatusPending, models.EnrollmentStatusActive:
	default:
		return &dpcErrors.ValidationError{Msg: fmt.Sprintf("initial status must be %s or %s",
			models.EnrollmentStatusPending, models.EnrollmentStatusActive)}
	}
	return nil
}

func (s *Service) CreateEnrollment(ctx context.Context, actor models.Actor, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	details := map[string]interface{}{
		"employee_id": req.EmployeeID,
		"plan_id":     req.PlanID,
	}

	enrollment, err := s.createEnrollment(ctx, req)
	if err != nil {
		s.recorder.Record(audit.Failure(actor, models.AuditActionCreate, models.EntityKindEnrollment, 0, details, err))
		return nil, err
	}

	details["status"] = string(enrollment.Status)
	s.recorder.Record(audit.Success(actor, models.AuditActionCreate, models.EntityKindEnrollment, enrollment.ID, details))

	return enrollment, nil
}

func (s *Service) createEnrollment(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	plan, err := s.repository.GetProviderPlanByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindProviderPlan), ID: fmt.Sprint(req.PlanID)}
	}
	if !plan.IsActive {
		return nil, &dpcErrors.ValidationError{Msg: fmt.Sprintf("plan %d is not active", plan.ID)}
	}

	existing, err := s.repository.GetNonTerminalEnrollment(ctx, req.EmployeeID, req.PlanID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &dpcErrors.DuplicateEnrollmentError{EmployeeID: req.EmployeeID, PlanID: req.PlanID}
	}

	enrollment := models.Enrollment{
		PlanID:     req.PlanID,
		EmployeeID: req.EmployeeID,
		BrokerID:   req.BrokerID,
		Status:     req.InitialStatus,
		StartDate:  req.StartDate,
	}

	err = s.transact(ctx, func(r models.Repository) error {
		// PENDING enrollments hold no patient slot; only direct-to-ACTIVE
		// creation crosses the capacity boundary.
		if req.InitialStatus == models.EnrollmentStatusActive {
			if err := capacity.NewGuard(r).Reserve(ctx, plan.ProviderID); err != nil {
				return err
			}
		}

		id, err := r.CreateEnrollment(ctx, enrollment)
		if err != nil {
			return err
		}
		enrollment.ID = id

		if req.InitialStatus == models.EnrollmentStatusActive {
			if _, err := billing.Issue(ctx, r, id, firstPeriod(req.StartDate)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &enrollment, nil
}

// ActivateEnrollment moves a PENDING enrollment to ACTIVE, reserving a
// patient slot and issuing the first billing cycle in the same transaction.
func (s *Service) ActivateEnrollment(ctx context.Context, actor models.Actor, enrollmentID uint) (*models.Enrollment, error) {
	details := map[string]interface{}{"transition": string(models.EnrollmentStatusActive)}

	enrollment, err := s.activateEnrollment(ctx, enrollmentID)
	if err != nil {
		s.recorder.Record(audit.Failure(actor, models.AuditActionUpdate, models.EntityKindEnrollment, enrollmentID, details, err))
		return nil, err
	}

	s.recorder.Record(audit.Success(actor, models.AuditActionUpdate, models.EntityKindEnrollment, enrollmentID, details))
	return enrollment, nil
}

func (s *Service) activateEnrollment(ctx context.Context, enrollmentID uint) (*models.Enrollment, error) {
	enrollment, err := s.repository.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindEnrollment), ID: fmt.Sprint(enrollmentID)}
	}

	plan, err := s.repository.GetProviderPlanByID(ctx, enrollment.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindProviderPlan), ID: fmt.Sprint(enrollment.PlanID)}
	}

	err = s.transact(ctx, func(r models.Repository) error {
		affected, err := r.UpdateEnrollmentStatus(ctx, enrollmentID,
			[]models.EnrollmentStatus{models.EnrollmentStatusPending}, models.EnrollmentStatusActive, nil)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Lost to a concurrent transition; report the status that won.
			current, err := s.repository.GetEnrollmentByID(ctx, enrollmentID)
			if err != nil {
				return err
			}
			from := string(models.EnrollmentStatusPending)
			if current != nil {
				from = string(current.Status)
			}
			return &dpcErrors.InvalidStateTransitionError{
				Kind: string(models.EntityKindEnrollment),
				ID:   enrollmentID,
				From: from,
				To:   string(models.EnrollmentStatusActive),
			}
		}

		if err := capacity.NewGuard(r).Reserve(ctx, plan.ProviderID); err != nil {
			return err
		}

		_, err = billing.Issue(ctx, r, enrollmentID, firstPeriod(enrollment.StartDate))
		return err
	})
	if err != nil {
		return nil, err
	}

	enrollment.Status = models.EnrollmentStatusActive
	return enrollment, nil
}

// CancelEnrollment moves any non-terminal enrollment to CANCELLED, stamps the
// end date on every still-active dependent enrollment, and releases the
// patient slot when one was held. Cancelling an already-cancelled enrollment
// is an idempotent no-op returning the current row.
func (s *Service) CancelEnrollment(ctx context.Context, actor models.Actor, enrollmentID uint, endDate time.Time) (*models.Enrollment, error) {
	details := map[string]interface{}{
		"transition": string(models.EnrollmentStatusCancelled),
		"end_date":   endDate.Format("2006-01-02"),
	}

	enrollment, cancelled, err := s.cancelEnrollment(ctx, enrollmentID, endDate)
	if err != nil {
		s.recorder.Record(audit.Failure(actor, models.AuditActionUpdate, models.EntityKindEnrollment, enrollmentID, details, err))
		return nil, err
	}
	if cancelled {
		s.recorder.Record(audit.Success(actor, models.AuditActionUpdate, models.EntityKindEnrollment, enrollmentID, details))
	}

	return enrollment, nil
}

func (s *Service) cancelEnrollment(ctx context.Context, enrollmentID uint, endDate time.Time) (*models.Enrollment, bool, error) {
	if endDate.IsZero() {
		return nil, false, &dpcErrors.ValidationError{Msg: "end date is required"}
	}

	for attempt := 0; attempt < cancelAttempts; attempt++ {
		enrollment, err := s.repository.GetEnrollmentByID(ctx, enrollmentID)
		if err != nil {
			return nil, false, err
		}
		if enrollment == nil {
			return nil, false, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindEnrollment), ID: fmt.Sprint(enrollmentID)}
		}
		if enrollment.Status == models.EnrollmentStatusCancelled {
			return enrollment, false, nil
		}
		if endDate.Before(enrollment.StartDate) {
			return nil, false, &dpcErrors.ValidationError{Msg: "end date precedes enrollment start date"}
		}

		plan, err := s.repository.GetProviderPlanByID(ctx, enrollment.PlanID)
		if err != nil {
			return nil, false, err
		}
		if plan == nil {
			return nil, false, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindProviderPlan), ID: fmt.Sprint(enrollment.PlanID)}
		}

		var transitioned bool
		err = s.transact(ctx, func(r models.Repository) error {
			// Pinning the from-status to the observed one ties the capacity
			// release below to the state actually transitioned from.
			affected, err := r.UpdateEnrollmentStatus(ctx, enrollmentID,
				[]models.EnrollmentStatus{enrollment.Status}, models.EnrollmentStatusCancelled, &endDate)
			if err != nil {
				return err
			}
			if affected == 0 {
				return nil
			}
			transitioned = true

			if _, err := r.EndDependentEnrollments(ctx, enrollmentID, endDate); err != nil {
				return err
			}

			// PENDING never reserved a slot, so there is nothing to release.
			if enrollment.Status != models.EnrollmentStatusPending {
				return capacity.NewGuard(r).Release(ctx, plan.ProviderID)
			}
			return nil
		})
		if err != nil {
			return nil, false, err
		}
		if !transitioned {
			// The enrollment changed status underneath us; reload and retry.
			continue
		}

		enrollment.Status = models.EnrollmentStatusCancelled
		enrollment.EndDate = &endDate
		return enrollment, true, nil
	}

	return nil, false, errors.Errorf("could not cancel enrollment %d after %d attempts", enrollmentID, cancelAttempts)
}

// LapseEnrollment moves an ACTIVE enrollment to INACTIVE. A lapsed enrollment
// keeps its patient slot and its end date stays unset; no new billing cycles
// are issued until it is cancelled. Lapsing is an explicit operation, not a
// scheduled sweep.
func (s *Service) LapseEnrollment(ctx context.Context, actor models.Actor, enrollmentID uint) (*models.Enrollment, error) {
	details := map[string]interface{}{"transition": string(models.EnrollmentStatusInactive)}

	enrollment, err := s.lapseEnrollment(ctx, enrollmentID)
	if err != nil {
		s.recorder.Record(audit.Failure(actor, models.AuditActionUpdate, models.EntityKindEnrollment, enrollmentID, details, err))
		return nil, err
	}

	s.recorder.Record(audit.Success(actor, models.AuditActionUpdate, models.EntityKindEnrollment, enrollmentID, details))
	return enrollment, nil
}

func (s *Service) lapseEnrollment(ctx context.Context, enrollmentID uint) (*models.Enrollment, error) {
	enrollment, err := s.repository.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindEnrollment), ID: fmt.Sprint(enrollmentID)}
	}

	affected, err := s.repository.UpdateEnrollmentStatus(ctx, enrollmentID,
		[]models.EnrollmentStatus{models.EnrollmentStatusActive}, models.EnrollmentStatusInactive, nil)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		current, err := s.repository.GetEnrollmentByID(ctx, enrollmentID)
		if err != nil {
			return nil, err
		}
		from := string(enrollment.Status)
		if current != nil {
			from = string(current.Status)
		}
		return nil, &dpcErrors.InvalidStateTransitionError{
			Kind: string(models.EntityKindEnrollment),
			ID:   enrollmentID,
			From: from,
			To:   string(models.EnrollmentStatusInactive),
		}
	}

	enrollment.Status = models.EnrollmentStatusInactive
	return enrollment, nil
}

// AddDependent enrolls a dependent under a PENDING or ACTIVE enrollment.
func (s *Service) AddDependent(ctx context.Context, actor models.Actor, enrollmentID, dependentID uint, startDate time.Time) (*models.DependentEnrollment, error) {
	details := map[string]interface{}{
		"enrollment_id": enrollmentID,
		"dependent_id":  dependentID,
	}

	dependentEnrollment, err := s.addDependent(ctx, enrollmentID, dependentID, startDate)
	if err != nil {
		s.recorder.Record(audit.Failure(actor, models.AuditActionCreate, models.EntityKindDependentEnrollment, 0, details, err))
		return nil, err
	}

	s.recorder.Record(audit.Success(actor, models.AuditActionCreate, models.EntityKindDependentEnrollment,
		dependentEnrollment.ID, details))
	return dependentEnrollment, nil
}

func (s *Service) addDependent(ctx context.Context, enrollmentID, dependentID uint, startDate time.Time) (*models.DependentEnrollment, error) {
	if dependentID == 0 {
		return nil, &dpcErrors.ValidationError{Msg: "dependent id is required"}
	}
	if startDate.IsZero() {
		return nil, &dpcErrors.ValidationError{Msg: "start date is required"}
	}

	enrollment, err := s.repository.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindEnrollment), ID: fmt.Sprint(enrollmentID)}
	}
	if enrollment.Status != models.EnrollmentStatusPending && enrollment.Status != models.EnrollmentStatusActive {
		return nil, &dpcErrors.ValidationError{
			Msg: fmt.Sprintf("enrollment %d is %s and cannot accept dependents", enrollmentID, enrollment.Status)}
	}

	active, err := s.repository.GetActiveDependentEnrollment(ctx, enrollmentID, dependentID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &dpcErrors.DuplicateDependentEnrollmentError{EnrollmentID: enrollmentID, DependentID: dependentID}
	}

	dependentEnrollment := models.DependentEnrollment{
		EnrollmentID: enrollmentID,
		DependentID:  dependentID,
		StartDate:    startDate,
	}
	id, err := s.repository.CreateDependentEnrollment(ctx, dependentEnrollment)
	if err != nil {
		return nil, err
	}
	dependentEnrollment.ID = id

	return &dependentEnrollment, nil
}

// RemoveDependent ends the dependent's active row by stamping its end date.
// The row is never deleted; billing reconciliation needs the history.
func (s *Service) RemoveDependent(ctx context.Context, actor models.Actor, enrollmentID, dependentID uint, endDate time.Time) error {
	details := map[string]interface{}{
		"enrollment_id": enrollmentID,
		"dependent_id":  dependentID,
		"end_date":      endDate.Format("2006-01-02"),
	}

	if err := s.removeDependent(ctx, enrollmentID, dependentID, endDate); err != nil {
		s.recorder.Record(audit.Failure(actor, models.AuditActionUpdate, models.EntityKindDependentEnrollment, 0, details, err))
		return err
	}

	s.recorder.Record(audit.Success(actor, models.AuditActionUpdate, models.EntityKindDependentEnrollment, 0, details))
	return nil
}

func (s *Service) removeDependent(ctx context.Context, enrollmentID, dependentID uint, endDate time.Time) error {
	if endDate.IsZero() {
		return &dpcErrors.ValidationError{Msg: "end date is required"}
	}

	affected, err := s.repository.EndDependentEnrollment(ctx, enrollmentID, dependentID, endDate)
	if err != nil {
		return err
	}
	if affected == 0 {
		return &dpcErrors.EntityNotFoundError{
			Kind: string(models.EntityKindDependentEnrollment),
			ID:   fmt.Sprintf("enrollment %d dependent %d", enrollmentID, dependentID),
		}
	}
	return nil
}

// GetPlanEnrollments lists the enrollments in a plan.
func (s *Service) GetPlanEnrollments(ctx context.Context, planID uint) ([]*models.Enrollment, error) {
	plan, err := s.repository.GetProviderPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindProviderPlan), ID: fmt.Sprint(planID)}
	}
	return s.repository.GetPlanEnrollments(ctx, planID)
}

// firstPeriod is the calendar month of coverage beginning at startDate.
func firstPeriod(startDate time.Time) models.Period {
	return models.Period{Start: startDate, End: startDate.AddDate(0, 1, -1)}
}

func (s *Service) transact(ctx context.Context, fn func(r models.Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := fn(s.newRepositoryTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.API.Errorf("Failed to rollback transaction: %s", rbErr.Error())
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}
