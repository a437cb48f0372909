// Package billing owns the transaction ledger: issuing membership
// transactions, settling them, and refunds.
package billing

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dpcdirect/dpc-app/dpc/audit"
	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
	"github.com/dpcdirect/dpc-app/dpc/models/postgres"
	"github.com/dpcdirect/dpc-app/log"
)

// ReferenceID derives the globally unique, deterministic reference id for an
// (enrollment, period) billing cycle. Replaying the same cycle produces the
// same id, so a retry resolves to the already-issued transaction instead of a
// second charge.
func ReferenceID(enrollmentID uint, period models.Period) string {
	return uuid.NewMD5(uuid.NameSpace_OID, []byte(fmt.Sprintf("dpc:billing:%d:%s", enrollmentID, period))).String()
}

type Ledger struct {
	db         *sql.DB
	repository models.Repository
	recorder   audit.Auditor

	newRepositoryTx func(*sql.Tx) models.Repository
}

func NewLedger(db *sql.DB, recorder audit.Auditor) *Ledger {
	return &Ledger{
		db:         db,
		repository: postgres.NewRepository(db),
		recorder:   recorder,
		newRepositoryTx: func(tx *sql.Tx) models.Repository {
			return postgres.NewRepositoryTx(tx)
		},
	}
}

// Issue creates the period's transaction and detail lines through the
// supplied repository, which may be transaction-scoped. The amount is the
// employee's plan price plus the dependent surcharge for every dependent
// enrollment active during the period; detail lines are emitted per billable
// participant, so the detail sum equals the transaction amount by
// construction. A replay of an already-issued (enrollment, period) returns
// the existing transaction.
func Issue(ctx context.Context, r models.Repository, enrollmentID uint, period models.Period) (*models.Transaction, error) {
	if !period.Valid() {
		return nil, &dpcErrors.ValidationError{Msg: "billing period start and end dates are required and must be ordered"}
	}

	enrollment, err := r.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindEnrollment), ID: fmt.Sprint(enrollmentID)}
	}
	// Lapsed and cancelled enrollments accrue no new billing cycles.
	if enrollment.Status == models.EnrollmentStatusInactive || enrollment.Status == models.EnrollmentStatusCancelled {
		return nil, &dpcErrors.ValidationError{
			Msg: fmt.Sprintf("enrollment %d is %s and cannot be billed", enrollmentID, enrollment.Status)}
	}

	plan, err := r.GetProviderPlanByID(ctx, enrollment.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindProviderPlan), ID: fmt.Sprint(enrollment.PlanID)}
	}

	referenceID := ReferenceID(enrollmentID, period)
	existing, err := r.GetTransactionByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	dependents, err := r.GetDependentEnrollmentsOverlapping(ctx, enrollmentID, period)
	if err != nil {
		return nil, err
	}

	details := []models.TransactionDetail{
		{Description: "Employee membership", Amount: plan.MonthlyAmount},
	}
	// Zero-surcharge plans bill dependents at no cost and emit no line for them.
	if plan.DependentMonthlyAmount.IsPositive() {
		for _, dependent := range dependents {
			dependentEnrollmentID := dependent.ID
			details = append(details, models.TransactionDetail{
				Description:           fmt.Sprintf("Dependent membership (dependent %d)", dependent.DependentID),
				Amount:                plan.DependentMonthlyAmount,
				DependentEnrollmentID: &dependentEnrollmentID,
			})
		}
	}

	amount := decimal.Zero
	for _, detail := range details {
		amount = amount.Add(detail.Amount)
	}
	if err := verifyDetailSum(amount, details); err != nil {
		return nil, err
	}

	transaction := models.Transaction{
		EnrollmentID: enrollmentID,
		Type:         models.TransactionTypeProviderPayment,
		Amount:       amount,
		Status:       models.TransactionStatusPending,
		PeriodStart:  period.Start,
		PeriodEnd:    period.End,
		ProviderID:   &plan.ProviderID,
		BrokerID:     enrollment.BrokerID,
		ReferenceID:  referenceID,
	}

	id, err := r.CreateTransaction(ctx, transaction, details)
	if err != nil {
		var duplicate *dpcErrors.DuplicateReferenceError
		if errors.As(err, &duplicate) {
			// Lost a race with a concurrent issuance of the same cycle.
			return r.GetTransactionByReferenceID(ctx, referenceID)
		}
		return nil, err
	}
	transaction.ID = id

	return &transaction, nil
}

// verifyDetailSum rejects persistence when the itemized lines do not add up
// to the transaction amount.
func verifyDetailSum(amount decimal.Decimal, details []models.TransactionDetail) error {
	sum := decimal.Zero
	for _, detail := range details {
		sum = sum.Add(detail.Amount)
	}
	if !sum.Equal(amount) {
		return &dpcErrors.ValidationError{
			Msg: fmt.Sprintf("transaction detail amounts sum to %s, expected %s", sum, amount),
		}
	}
	return nil
}

// IssueTransaction issues the billing cycle for an enrollment inside its own
// database transaction and records the attempt in the audit trail.
func (l *Ledger) IssueTransaction(ctx context.Context, actor models.Actor, enrollmentID uint, period models.Period) (*models.Transaction, error) {
	details := map[string]interface{}{
		"enrollment_id":  enrollmentID,
		"billing_period": period.String(),
	}

	var transaction *models.Transaction
	err := l.transact(ctx, func(r models.Repository) error {
		var err error
		transaction, err = Issue(ctx, r, enrollmentID, period)
		return err
	})
	if err != nil {
		l.recorder.Record(audit.Failure(actor, models.AuditActionCreate, models.EntityKindTransaction, 0, details, err))
		return nil, err
	}

	details["reference_id"] = transaction.ReferenceID
	details["amount"] = transaction.Amount.String()
	l.recorder.Record(audit.Success(actor, models.AuditActionCreate, models.EntityKindTransaction, transaction.ID, details))

	return transaction, nil
}

// CompleteTransaction marks a pending transaction settled.
func (l *Ledger) CompleteTransaction(ctx context.Context, actor models.Actor, transactionID uint) (*models.Transaction, error) {
	return l.settle(ctx, actor, transactionID, models.TransactionStatusCompleted)
}

// FailTransaction marks a pending transaction as failed settlement.
func (l *Ledger) FailTransaction(ctx context.Context, actor models.Actor, transactionID uint) (*models.Transaction, error) {
	return l.settle(ctx, actor, transactionID, models.TransactionStatusFailed)
}

func (l *Ledger) settle(ctx context.Context, actor models.Actor, transactionID uint, to models.TransactionStatus) (*models.Transaction, error) {
	transaction, err := l.updateStatus(ctx, transactionID, []models.TransactionStatus{models.TransactionStatusPending}, to)
	details := map[string]interface{}{"status": string(to)}
	if err != nil {
		l.recorder.Record(audit.Failure(actor, models.AuditActionUpdate, models.EntityKindTransaction, transactionID, details, err))
		return nil, err
	}

	l.recorder.Record(audit.Success(actor, models.AuditActionUpdate, models.EntityKindTransaction, transactionID, details))
	return transaction, nil
}

// IssueRefund flips a completed transaction to REFUNDED in place. No
// reversing row is written; period aggregation excludes refunded rows by
// filtering on status, so refunded amounts are never double-counted.
func (l *Ledger) IssueRefund(ctx context.Context, actor models.Actor, transactionID uint, reason string) (*models.Transaction, error) {
	transaction, err := l.updateStatus(ctx, transactionID,
		[]models.TransactionStatus{models.TransactionStatusCompleted}, models.TransactionStatusRefunded)
	details := map[string]interface{}{"status": string(models.TransactionStatusRefunded), "reason": reason}
	if err != nil {
		l.recorder.Record(audit.Failure(actor, models.AuditActionUpdate, models.EntityKindTransaction, transactionID, details, err))
		return nil, err
	}

	l.recorder.Record(audit.Success(actor, models.AuditActionUpdate, models.EntityKindTransaction, transactionID, details))
	return transaction, nil
}

func (l *Ledger) updateStatus(ctx context.Context, transactionID uint, from []models.TransactionStatus, to models.TransactionStatus) (*models.Transaction, error) {
	affected, err := l.repository.UpdateTransactionStatus(ctx, transactionID, from, to)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		transaction, err := l.repository.GetTransactionByID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		if transaction == nil {
			return nil, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindTransaction), ID: fmt.Sprint(transactionID)}
		}
		return nil, &dpcErrors.InvalidStateTransitionError{
			Kind: string(models.EntityKindTransaction),
			ID:   transactionID,
			From: string(transaction.Status),
			To:   string(to),
		}
	}

	transaction, err := l.repository.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func (l *Ledger) transact(ctx context.Context, fn func(r models.Repository) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := fn(l.newRepositoryTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.API.Errorf("Failed to rollback transaction: %s", rbErr.Error())
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}
