package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	goerrors "errors"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"
	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"

	"github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
)

type queryable interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type executable interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const (
	sqlFlavor = sqlbuilder.PostgreSQL
)

// Postgres error code raised on unique constraint violations.
const uniqueViolation = "23505"

// Ensure Repository satisfies the interface
var _ models.Repository = &Repository{}

type Repository struct {
	queryable
	executable
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db, db}
}

// NewRepositoryTx scopes the repository to an open transaction. Every
// invariant-crossing operation in the services runs against a tx-scoped
// repository so the unit of work is a single database transaction.
func NewRepositoryTx(tx *sql.Tx) *Repository {
	return &Repository{tx, tx}
}

var providerColumns = []string{"id", "uuid", "practice_name", "provider_type", "npi_number",
	"accepting_patients", "max_patient_capacity", "current_patient_count", "created_at", "updated_at"}

func (r *Repository) GetProviderByID(ctx context.Context, providerID uint) (*models.Provider, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(providerColumns...)
	sb.From("providers").Where(sb.Equal("id", providerID))

	query, args := sb.Build()

	var (
		p                    models.Provider
		uuidStr              string
		createdAt, updatedAt sql.NullTime
	)
	err := r.QueryRowContext(ctx, query, args...).Scan(&p.ID, &uuidStr, &p.PracticeName, &p.ProviderType,
		&p.NPINumber, &p.AcceptingPatients, &p.MaxPatientCapacity, &p.CurrentPatientCount, &createdAt, &updatedAt)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.UUID = parseUUID(uuidStr)
	p.CreatedAt, p.UpdatedAt = createdAt.Time, updatedAt.Time

	return &p, nil
}

func (r *Repository) ReservePatientSlot(ctx context.Context, providerID uint) (bool, error) {
	// The eligibility check and the increment are one statement. Two
	// reservations racing for the last slot serialize on the row lock and
	// exactly one sees a satisfied WHERE clause.
	query, args := sqlbuilder.Buildf(`UPDATE providers
		SET current_patient_count = current_patient_count + 1, updated_at = NOW()
		WHERE id = %s AND accepting_patients AND current_patient_count < max_patient_capacity`,
		providerID).
		BuildWithFlavor(sqlFlavor)

	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *Repository) ReleasePatientSlot(ctx context.Context, providerID uint) (bool, error) {
	query, args := sqlbuilder.Buildf(`UPDATE providers
		SET current_patient_count = current_patient_count - 1, updated_at = NOW()
		WHERE id = %s AND current_patient_count > 0`,
		providerID).
		BuildWithFlavor(sqlFlavor)

	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

var planColumns = []string{"id", "provider_id", "name", "description", "monthly_amount",
	"dependent_monthly_amount", "is_active", "created_at", "updated_at"}

func (r *Repository) GetProviderPlanByID(ctx context.Context, planID uint) (*models.ProviderPlan, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(planColumns...)
	sb.From("provider_plans").Where(sb.Equal("id", planID))

	query, args := sb.Build()
	plan, err := scanPlan(r.QueryRowContext(ctx, query, args...))
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return plan, nil
}

func (r *Repository) GetProviderPlans(ctx context.Context, providerID uint) ([]*models.ProviderPlan, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(planColumns...)
	sb.From("provider_plans").Where(sb.Equal("provider_id", providerID))
	sb.OrderBy("id")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.ProviderPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row scannable) (*models.ProviderPlan, error) {
	var (
		plan                    models.ProviderPlan
		amount, dependentAmount string
		createdAt, updatedAt    sql.NullTime
	)
	if err := row.Scan(&plan.ID, &plan.ProviderID, &plan.Name, &plan.Description, &amount,
		&dependentAmount, &plan.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	monthlyAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	dependentMonthlyAmount, err := decimal.NewFromString(dependentAmount)
	if err != nil {
		return nil, err
	}
	plan.MonthlyAmount = monthlyAmount
	plan.DependentMonthlyAmount = dependentMonthlyAmount
	plan.CreatedAt, plan.UpdatedAt = createdAt.Time, updatedAt.Time

	return &plan, nil
}

var enrollmentColumns = []string{"id", "plan_id", "employee_id", "broker_id", "status", "start_date", "end_date", "created_at", "updated_at"}

func (r *Repository) GetEnrollmentByID(ctx context.Context, enrollmentID uint) (*models.Enrollment, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(enrollmentColumns...)
	sb.From("enrollments").Where(sb.Equal("id", enrollmentID))

	query, args := sb.Build()
	enrollment, err := scanEnrollment(r.QueryRowContext(ctx, query, args...))
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return enrollment, nil
}

func (r *Repository) GetNonTerminalEnrollment(ctx context.Context, employeeID, planID uint) (*models.Enrollment, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(enrollmentColumns...)
	sb.From("enrollments").Where(
		sb.Equal("employee_id", employeeID),
		sb.Equal("plan_id", planID),
		sb.In("status", string(models.EnrollmentStatusPending), string(models.EnrollmentStatusActive)),
	)
	sb.Limit(1)

	query, args := sb.Build()
	enrollment, err := scanEnrollment(r.QueryRowContext(ctx, query, args...))
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return enrollment, nil
}

func (r *Repository) GetPlanEnrollments(ctx context.Context, planID uint) ([]*models.Enrollment, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(enrollmentColumns...)
	sb.From("enrollments").Where(sb.Equal("plan_id", planID))
	sb.OrderBy("id")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

func scanEnrollment(row scannable) (*models.Enrollment, error) {
	var (
		e                    models.Enrollment
		brokerID             sql.NullInt64
		endDate              sql.NullTime
		createdAt, updatedAt sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.PlanID, &e.EmployeeID, &brokerID, &e.Status,
		&e.StartDate, &endDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if brokerID.Valid {
		id := uint(brokerID.Int64)
		e.BrokerID = &id
	}
	if endDate.Valid {
		e.EndDate = &endDate.Time
	}
	e.CreatedAt, e.UpdatedAt = createdAt.Time, updatedAt.Time

	return &e, nil
}

func (r *Repository) CreateEnrollment(ctx context.Context, enrollment models.Enrollment) (uint, error) {
	query, args := sqlbuilder.Buildf(`INSERT INTO enrollments
		(plan_id, employee_id, broker_id, status, start_date, created_at, updated_at) VALUES
		(%s, %s, %s, %s, %s, NOW(), NOW()) RETURNING id`,
		enrollment.PlanID, enrollment.EmployeeID, enrollment.BrokerID, enrollment.Status, enrollment.StartDate).
		BuildWithFlavor(sqlFlavor)

	var id uint
	if err := r.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, &errors.DuplicateEnrollmentError{EmployeeID: enrollment.EmployeeID, PlanID: enrollment.PlanID}
		}
		return 0, err
	}

	return id, nil
}

func (r *Repository) UpdateEnrollmentStatus(ctx context.Context, enrollmentID uint, from []models.EnrollmentStatus, to models.EnrollmentStatus, endDate *time.Time) (int64, error) {
	f := make([]interface{}, len(from))
	for i, v := range from {
		f[i] = string(v)
	}

	ub := sqlFlavor.NewUpdateBuilder().Update("enrollments")
	ub.Set(
		ub.Assign("status", string(to)),
		ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
	)
	if endDate != nil {
		ub.SetMore(ub.Assign("end_date", *endDate))
	}
	ub.Where(
		ub.Equal("id", enrollmentID),
		ub.In("status", f...),
	)

	query, args := ub.Build()
	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

var dependentEnrollmentColumns = []string{"id", "enrollment_id", "dependent_id", "start_date", "end_date", "created_at", "updated_at"}

func (r *Repository) GetActiveDependentEnrollment(ctx context.Context, enrollmentID, dependentID uint) (*models.DependentEnrollment, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(dependentEnrollmentColumns...)
	sb.From("dependent_enrollments").Where(
		sb.Equal("enrollment_id", enrollmentID),
		sb.Equal("dependent_id", dependentID),
		sb.IsNull("end_date"),
	)

	query, args := sb.Build()
	dependentEnrollment, err := scanDependentEnrollment(r.QueryRowContext(ctx, query, args...))
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return dependentEnrollment, nil
}

func (r *Repository) GetDependentEnrollmentsOverlapping(ctx context.Context, enrollmentID uint, period models.Period) ([]*models.DependentEnrollment, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(dependentEnrollmentColumns...)
	sb.From("dependent_enrollments").Where(
		sb.Equal("enrollment_id", enrollmentID),
		sb.LessEqualThan("start_date", period.End),
	)
	// Rows whose end_date is open or falls inside the period are billable.
	sb.Where(sb.Or(sb.IsNull("end_date"), sb.GreaterEqualThan("end_date", period.Start)))
	sb.OrderBy("id")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dependentEnrollments []*models.DependentEnrollment
	for rows.Next() {
		dependentEnrollment, err := scanDependentEnrollment(rows)
		if err != nil {
			return nil, err
		}
		dependentEnrollments = append(dependentEnrollments, dependentEnrollment)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return dependentEnrollments, nil
}

func scanDependentEnrollment(row scannable) (*models.DependentEnrollment, error) {
	var (
		d                    models.DependentEnrollment
		endDate              sql.NullTime
		createdAt, updatedAt sql.NullTime
	)
	if err := row.Scan(&d.ID, &d.EnrollmentID, &d.DependentID, &d.StartDate, &endDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		d.EndDate = &endDate.Time
	}
	d.CreatedAt, d.UpdatedAt = createdAt.Time, updatedAt.Time

	return &d, nil
}

func (r *Repository) CreateDependentEnrollment(ctx context.Context, dependentEnrollment models.DependentEnrollment) (uint, error) {
	query, args := sqlbuilder.Buildf(`INSERT INTO dependent_enrollments
		(enrollment_id, dependent_id, start_date, created_at, updated_at) VALUES
		(%s, %s, %s, NOW(), NOW()) RETURNING id`,
		dependentEnrollment.EnrollmentID, dependentEnrollment.DependentID, dependentEnrollment.StartDate).
		BuildWithFlavor(sqlFlavor)

	var id uint
	if err := r.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, &errors.DuplicateDependentEnrollmentError{
				EnrollmentID: dependentEnrollment.EnrollmentID,
				DependentID:  dependentEnrollment.DependentID,
			}
		}
		return 0, err
	}

	return id, nil
}

func (r *Repository) EndDependentEnrollment(ctx context.Context, enrollmentID, dependentID uint, endDate time.Time) (int64, error) {
	ub := sqlFlavor.NewUpdateBuilder().Update("dependent_enrollments")
	ub.Set(
		ub.Assign("end_date", endDate),
		ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
	)
	ub.Where(
		ub.Equal("enrollment_id", enrollmentID),
		ub.Equal("dependent_id", dependentID),
		ub.IsNull("end_date"),
	)

	query, args := ub.Build()
	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *Repository) EndDependentEnrollments(ctx context.Context, enrollmentID uint, endDate time.Time) (int64, error) {
	ub := sqlFlavor.NewUpdateBuilder().Update("dependent_enrollments")
	ub.Set(
		ub.Assign("end_date", endDate),
		ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
	)
	ub.Where(
		ub.Equal("enrollment_id", enrollmentID),
		ub.IsNull("end_date"),
	)

	query, args := ub.Build()
	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

var transactionColumns = []string{"id", "enrollment_id", "transaction_type", "amount", "status",
	"billing_period_start", "billing_period_end", "provider_id", "broker_id", "reference_id", "notes",
	"created_at", "updated_at"}

func (r *Repository) CreateTransaction(ctx context.Context, transaction models.Transaction, details []models.TransactionDetail) (uint, error) {
	// The insert runs under a savepoint: a reference_id collision aborts only
	// the insert, leaving the surrounding transaction usable for the recovery
	// read of the winner's row.
	if _, err := r.ExecContext(ctx, "SAVEPOINT create_transaction"); err != nil {
		return 0, err
	}

	query, args := sqlbuilder.Buildf(`INSERT INTO transactions
		(enrollment_id, transaction_type, amount, status, billing_period_start, billing_period_end,
			provider_id, broker_id, reference_id, notes, created_at, updated_at) VALUES
		(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, NOW(), NOW()) RETURNING id`,
		transaction.EnrollmentID, string(transaction.Type), transaction.Amount.String(), string(transaction.Status),
		transaction.PeriodStart, transaction.PeriodEnd, transaction.ProviderID, transaction.BrokerID,
		transaction.ReferenceID, transaction.Notes).
		BuildWithFlavor(sqlFlavor)

	var id uint
	if err := r.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			if _, rbErr := r.ExecContext(ctx, "ROLLBACK TO SAVEPOINT create_transaction"); rbErr != nil {
				return 0, rbErr
			}
			return 0, &errors.DuplicateReferenceError{ReferenceID: transaction.ReferenceID}
		}
		return 0, err
	}

	if len(details) > 0 {
		ib := sqlFlavor.NewInsertBuilder().InsertInto("transaction_details")
		ib.Cols("transaction_id", "description", "amount", "dependent_enrollment_id", "created_at")
		for _, detail := range details {
			ib.Values(id, detail.Description, detail.Amount.String(), detail.DependentEnrollmentID, sqlbuilder.Raw("NOW()"))
		}

		query, args := ib.Build()
		if _, err := r.ExecContext(ctx, query, args...); err != nil {
			return 0, err
		}
	}

	if _, err := r.ExecContext(ctx, "RELEASE SAVEPOINT create_transaction"); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *Repository) GetTransactionByID(ctx context.Context, transactionID uint) (*models.Transaction, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(transactionColumns...)
	sb.From("transactions").Where(sb.Equal("id", transactionID))

	query, args := sb.Build()
	transaction, err := scanTransaction(r.QueryRowContext(ctx, query, args...))
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return transaction, nil
}

func (r *Repository) GetTransactionByReferenceID(ctx context.Context, referenceID string) (*models.Transaction, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(transactionColumns...)
	sb.From("transactions").Where(sb.Equal("reference_id", referenceID))

	query, args := sb.Build()
	transaction, err := scanTransaction(r.QueryRowContext(ctx, query, args...))
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return transaction, nil
}

func scanTransaction(row scannable) (*models.Transaction, error) {
	var (
		t                    models.Transaction
		amount               string
		providerID, brokerID sql.NullInt64
		createdAt, updatedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.EnrollmentID, &t.Type, &amount, &t.Status,
		&t.PeriodStart, &t.PeriodEnd, &providerID, &brokerID, &t.ReferenceID, &t.Notes,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	t.Amount = parsed

	if providerID.Valid {
		id := uint(providerID.Int64)
		t.ProviderID = &id
	}
	if brokerID.Valid {
		id := uint(brokerID.Int64)
		t.BrokerID = &id
	}
	t.CreatedAt, t.UpdatedAt = createdAt.Time, updatedAt.Time

	return &t, nil
}

func (r *Repository) GetTransactionDetails(ctx context.Context, transactionID uint) ([]*models.TransactionDetail, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "transaction_id", "description", "amount", "dependent_enrollment_id", "created_at")
	sb.From("transaction_details").Where(sb.Equal("transaction_id", transactionID))
	sb.OrderBy("id")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*models.TransactionDetail
	for rows.Next() {
		var (
			detail                models.TransactionDetail
			amount                string
			dependentEnrollmentID sql.NullInt64
			createdAt             sql.NullTime
		)
		if err = rows.Scan(&detail.ID, &detail.TransactionID, &detail.Description, &amount,
			&dependentEnrollmentID, &createdAt); err != nil {
			return nil, err
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		detail.Amount = parsed

		if dependentEnrollmentID.Valid {
			id := uint(dependentEnrollmentID.Int64)
			detail.DependentEnrollmentID = &id
		}
		detail.CreatedAt = createdAt.Time
		details = append(details, &detail)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func (r *Repository) UpdateTransactionStatus(ctx context.Context, transactionID uint, from []models.TransactionStatus, to models.TransactionStatus) (int64, error) {
	f := make([]interface{}, len(from))
	for i, v := range from {
		f[i] = string(v)
	}

	ub := sqlFlavor.NewUpdateBuilder().Update("transactions")
	ub.Set(
		ub.Assign("status", string(to)),
		ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
	)
	ub.Where(
		ub.Equal("id", transactionID),
		ub.In("status", f...),
	)

	query, args := ub.Build()
	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *Repository) GetProviderRevenue(ctx context.Context, providerID uint, period models.Period) (decimal.Decimal, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("COALESCE(SUM(amount), 0)")
	sb.From("transactions").Where(
		sb.Equal("transaction_type", string(models.TransactionTypeProviderPayment)),
		sb.Equal("status", string(models.TransactionStatusCompleted)),
		sb.LessEqualThan("billing_period_start", period.End),
		sb.GreaterEqualThan("billing_period_end", period.Start),
	)
	if providerID != 0 {
		sb.Where(sb.Equal("provider_id", providerID))
	}

	query, args := sb.Build()

	var total string
	if err := r.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromString(total)
}

func (r *Repository) GetEmployerRevenueBreakdown(ctx context.Context, employerID uint) ([]*models.RevenueBreakdownRow, error) {
	// Projection over currently-active memberships, not a ledger read.
	query, args := sqlbuilder.Buildf(`SELECT p.id, p.practice_name, pp.id, pp.name, pp.monthly_amount,
			pp.dependent_monthly_amount,
			COUNT(DISTINCT e.id),
			COUNT(d.id) FILTER (WHERE d.end_date IS NULL)
		FROM enrollments e
		JOIN provider_plans pp ON pp.id = e.plan_id
		JOIN providers p ON p.id = pp.provider_id
		JOIN employees emp ON emp.id = e.employee_id
		LEFT JOIN dependent_enrollments d ON d.enrollment_id = e.id
		WHERE emp.employer_id = %s AND e.status = %s
		GROUP BY p.id, p.practice_name, pp.id, pp.name, pp.monthly_amount, pp.dependent_monthly_amount
		ORDER BY p.id, pp.id`,
		employerID, string(models.EnrollmentStatusActive)).
		BuildWithFlavor(sqlFlavor)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []*models.RevenueBreakdownRow
	for rows.Next() {
		var (
			row                     models.RevenueBreakdownRow
			amount, dependentAmount string
		)
		if err = rows.Scan(&row.ProviderID, &row.PracticeName, &row.PlanID, &row.PlanName, &amount,
			&dependentAmount, &row.EmployeeCount, &row.DependentCount); err != nil {
			return nil, err
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		row.MonthlyAmount = parsed
		if row.DependentMonthlyAmount, err = decimal.NewFromString(dependentAmount); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, &row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return breakdown, nil
}

func (r *Repository) GetEnrollmentStats(ctx context.Context, employerID uint) (*models.EnrollmentStats, error) {
	query, args := sqlbuilder.Buildf(`SELECT COUNT(DISTINCT emp.id),
			COUNT(DISTINCT e.employee_id) FILTER (WHERE e.status = %s),
			COUNT(DISTINCT e.employee_id) FILTER (WHERE e.status = %s),
			COUNT(d.id) FILTER (WHERE e.status = %s AND d.end_date IS NULL)
		FROM employees emp
		LEFT JOIN enrollments e ON e.employee_id = emp.id
		LEFT JOIN dependent_enrollments d ON d.enrollment_id = e.id
		WHERE emp.employer_id = %s`,
		string(models.EnrollmentStatusActive), string(models.EnrollmentStatusPending),
		string(models.EnrollmentStatusActive), employerID).
		BuildWithFlavor(sqlFlavor)

	var stats models.EnrollmentStats
	if err := r.QueryRowContext(ctx, query, args...).Scan(&stats.TotalEmployees, &stats.EnrolledEmployees,
		&stats.PendingEmployees, &stats.EnrolledDependents); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *Repository) CreateAuditLog(ctx context.Context, entry models.AuditLog) (uint, error) {
	details, err := marshalDetails(entry.Details)
	if err != nil {
		return 0, err
	}

	query, args := sqlbuilder.Buildf(`INSERT INTO audit_logs
		(actor_id, actor_type, action, entity_kind, entity_id, details, status, error_message,
			ip_address, user_agent, timestamp) VALUES
		(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, NOW()) RETURNING id`,
		entry.ActorID.String(), string(entry.ActorType), string(entry.Action), string(entry.EntityKind),
		entry.EntityID, details, entry.Status, entry.ErrorMessage, entry.IPAddress, entry.UserAgent).
		BuildWithFlavor(sqlFlavor)

	var id uint
	if err := r.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *Repository) CreateSecurityAuditLog(ctx context.Context, entry models.SecurityAuditLog) (uint, error) {
	details, err := marshalDetails(entry.Details)
	if err != nil {
		return 0, err
	}

	query, args := sqlbuilder.Buildf(`INSERT INTO security_audit_logs
		(actor_id, actor_type, action, severity, details, ip_address, user_agent, timestamp) VALUES
		(%s, %s, %s, %s, %s, %s, %s, NOW()) RETURNING id`,
		entry.ActorID.String(), string(entry.ActorType), string(entry.Action), string(entry.Severity),
		details, entry.IPAddress, entry.UserAgent).
		BuildWithFlavor(sqlFlavor)

	var id uint
	if err := r.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

var auditLogColumns = []string{"id", "actor_id", "actor_type", "action", "entity_kind", "entity_id",
	"details", "status", "error_message", "ip_address", "user_agent", "timestamp"}

func (r *Repository) GetAuditLogs(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(auditLogColumns...)
	sb.From("audit_logs")
	if filter.ActorID != nil {
		sb.Where(sb.Equal("actor_id", filter.ActorID.String()))
	}
	if filter.Action != "" {
		sb.Where(sb.Equal("action", string(filter.Action)))
	}
	applyTimeBounds(sb, filter.LowerBound, filter.UpperBound)
	sb.OrderBy("timestamp").Desc()
	if filter.Limit > 0 {
		sb.Limit(filter.Limit)
	}

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var (
			entry        models.AuditLog
			actorID      string
			details      []byte
			errorMessage sql.NullString
		)
		if err = rows.Scan(&entry.ID, &actorID, &entry.ActorType, &entry.Action, &entry.EntityKind,
			&entry.EntityID, &details, &entry.Status, &errorMessage, &entry.IPAddress, &entry.UserAgent,
			&entry.Timestamp); err != nil {
			return nil, err
		}
		entry.ActorID = parseUUID(actorID)
		entry.ErrorMessage = errorMessage.String
		if err = json.Unmarshal(details, &entry.Details); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) GetSecurityAuditLogs(ctx context.Context, filter models.SecurityAuditLogFilter) ([]*models.SecurityAuditLog, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "actor_id", "actor_type", "action", "severity", "details", "ip_address", "user_agent", "timestamp")
	sb.From("security_audit_logs")
	if filter.Severity != "" {
		sb.Where(sb.Equal("severity", string(filter.Severity)))
	}
	applyTimeBounds(sb, filter.LowerBound, filter.UpperBound)
	sb.OrderBy("timestamp").Desc()
	if filter.Limit > 0 {
		sb.Limit(filter.Limit)
	}

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.SecurityAuditLog
	for rows.Next() {
		var (
			entry   models.SecurityAuditLog
			actorID string
			details []byte
		)
		if err = rows.Scan(&entry.ID, &actorID, &entry.ActorType, &entry.Action, &entry.Severity,
			&details, &entry.IPAddress, &entry.UserAgent, &entry.Timestamp); err != nil {
			return nil, err
		}
		entry.ActorID = parseUUID(actorID)
		if err = json.Unmarshal(details, &entry.Details); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func applyTimeBounds(sb *sqlbuilder.SelectBuilder, lowerBound, upperBound time.Time) {
	if !lowerBound.IsZero() {
		sb.Where(sb.GreaterEqualThan("timestamp", lowerBound))
	}
	if !upperBound.IsZero() {
		sb.Where(sb.LessEqualThan("timestamp", upperBound))
	}
}

func parseUUID(s string) uuid.UUID {
	return uuid.Parse(s)
}

func marshalDetails(details map[string]interface{}) ([]byte, error) {
	if details == nil {
		details = map[string]interface{}{}
	}
	return json.Marshal(details)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if goerrors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
