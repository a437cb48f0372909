package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"

	"github.com/dpcdirect/dpc-app/dpc/audit"
	"github.com/dpcdirect/dpc-app/dpc/billing"
	"github.com/dpcdirect/dpc-app/dpc/constants"
	"github.com/dpcdirect/dpc-app/dpc/enrollment"
	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/health"
	"github.com/dpcdirect/dpc-app/dpc/models"
	"github.com/dpcdirect/dpc-app/dpc/models/postgres"
	"github.com/dpcdirect/dpc-app/dpc/responseutils"
	"github.com/dpcdirect/dpc-app/dpc/revenue"
	"github.com/dpcdirect/dpc-app/dpc/web/actorcontext"
)

type enrollmentService interface {
	CreateEnrollment(ctx context.Context, actor models.Actor, req enrollment.CreateEnrollmentRequest) (*models.Enrollment, error)
	ActivateEnrollment(ctx context.Context, actor models.Actor, enrollmentID uint) (*models.Enrollment, error)
	CancelEnrollment(ctx context.Context, actor models.Actor, enrollmentID uint, endDate time.Time) (*models.Enrollment, error)
	LapseEnrollment(ctx context.Context, actor models.Actor, enrollmentID uint) (*models.Enrollment, error)
	AddDependent(ctx context.Context, actor models.Actor, enrollmentID, dependentID uint, startDate time.Time) (*models.DependentEnrollment, error)
	RemoveDependent(ctx context.Context, actor models.Actor, enrollmentID, dependentID uint, endDate time.Time) error
	GetPlanEnrollments(ctx context.Context, planID uint) ([]*models.Enrollment, error)
}

type transactionLedger interface {
	CompleteTransaction(ctx context.Context, actor models.Actor, transactionID uint) (*models.Transaction, error)
	FailTransaction(ctx context.Context, actor models.Actor, transactionID uint) (*models.Transaction, error)
	IssueRefund(ctx context.Context, actor models.Actor, transactionID uint, reason string) (*models.Transaction, error)
}

type revenueReader interface {
	ProviderRevenue(ctx context.Context, providerID uint, period models.Period) (decimal.Decimal, error)
	EmployerRevenueBreakdown(ctx context.Context, employerID uint) (*revenue.RevenueReport, error)
	EnrollmentStats(ctx context.Context, employerID uint) (*models.EnrollmentStats, error)
}

type API struct {
	enrollments enrollmentService
	ledger      transactionLedger
	aggregator  revenueReader
	repository  models.Repository
	health      health.HealthChecker
}

func NewAPI(db *sql.DB, recorder audit.Auditor) *API {
	repository := postgres.NewRepository(db)
	return &API{
		enrollments: enrollment.NewService(db, recorder),
		ledger:      billing.NewLedger(db, recorder),
		aggregator:  revenue.NewAggregator(repository),
		repository:  repository,
		health:      health.NewHealthChecker(db),
	}
}

type createEnrollmentRequest struct {
	EmployeeID    uint   `json:"employee_id"`
	PlanID        uint   `json:"plan_id"`
	BrokerID      *uint  `json:"broker_id"`
	StartDate     string `json:"start_date"`
	InitialStatus string `json:"initial_status"`
}

func (api *API) createEnrollment(w http.ResponseWriter, r *http.Request) {
	var req createEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseutils.WriteError(w, r, &dpcErrors.ValidationError{Err: err, Msg: "invalid request body"})
		return
	}
	startDate, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	created, err := api.enrollments.CreateEnrollment(r.Context(), actorFromRequest(r), enrollment.CreateEnrollmentRequest{
		EmployeeID:    req.EmployeeID,
		PlanID:        req.PlanID,
		BrokerID:      req.BrokerID,
		StartDate:     startDate,
		InitialStatus: models.EnrollmentStatus(req.InitialStatus),
	})
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newEnrollmentResponse(created))
}

func (api *API) activateEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := parseID(r, "enrollmentID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	activated, err := api.enrollments.ActivateEnrollment(r.Context(), actorFromRequest(r), enrollmentID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, newEnrollmentResponse(activated))
}

func (api *API) lapseEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := parseID(r, "enrollmentID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	lapsed, err := api.enrollments.LapseEnrollment(r.Context(), actorFromRequest(r), enrollmentID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, newEnrollmentResponse(lapsed))
}

func (api *API) cancelEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := parseID(r, "enrollmentID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	var req struct {
		EndDate string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseutils.WriteError(w, r, &dpcErrors.ValidationError{Err: err, Msg: "invalid request body"})
		return
	}
	endDate, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	cancelled, err := api.enrollments.CancelEnrollment(r.Context(), actorFromRequest(r), enrollmentID, endDate)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, newEnrollmentResponse(cancelled))
}

func (api *API) addDependent(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := parseID(r, "enrollmentID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	var req struct {
		DependentID uint   `json:"dependent_id"`
		StartDate   string `json:"start_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseutils.WriteError(w, r, &dpcErrors.ValidationError{Err: err, Msg: "invalid request body"})
		return
	}
	startDate, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	added, err := api.enrollments.AddDependent(r.Context(), actorFromRequest(r), enrollmentID, req.DependentID, startDate)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newDependentEnrollmentResponse(added))
}

func (api *API) removeDependent(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := parseID(r, "enrollmentID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	var req struct {
		DependentID uint   `json:"dependent_id"`
		EndDate     string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseutils.WriteError(w, r, &dpcErrors.ValidationError{Err: err, Msg: "invalid request body"})
		return
	}
	endDate, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	if err := api.enrollments.RemoveDependent(r.Context(), actorFromRequest(r), enrollmentID, req.DependentID, endDate); err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (api *API) getPlanEnrollments(w http.ResponseWriter, r *http.Request) {
	planID, err := parseID(r, "planID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	enrollments, err := api.enrollments.GetPlanEnrollments(r.Context(), planID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	resp := make([]*enrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		resp = append(resp, newEnrollmentResponse(e))
	}
	render.JSON(w, r, resp)
}

func (api *API) getProviderPlans(w http.ResponseWriter, r *http.Request) {
	providerID, err := parseID(r, "providerID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	provider, err := api.repository.GetProviderByID(r.Context(), providerID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}
	if provider == nil {
		responseutils.WriteError(w, r, &dpcErrors.EntityNotFoundError{
			Kind: string(models.EntityKindProvider), ID: fmt.Sprint(providerID)})
		return
	}

	plans, err := api.repository.GetProviderPlans(r.Context(), providerID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	resp := make([]*providerPlanResponse, 0, len(plans))
	for _, plan := range plans {
		resp = append(resp, newProviderPlanResponse(plan))
	}
	render.JSON(w, r, resp)
}

func (api *API) getTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := parseID(r, "transactionID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	transaction, err := api.repository.GetTransactionByID(r.Context(), transactionID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}
	if transaction == nil {
		responseutils.WriteError(w, r, &dpcErrors.EntityNotFoundError{
			Kind: string(models.EntityKindTransaction), ID: fmt.Sprint(transactionID)})
		return
	}

	details, err := api.repository.GetTransactionDetails(r.Context(), transactionID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	resp := struct {
		*transactionResponse
		Details []*transactionDetailResponse `json:"details"`
	}{newTransactionResponse(transaction), make([]*transactionDetailResponse, 0, len(details))}
	for _, detail := range details {
		resp.Details = append(resp.Details, newTransactionDetailResponse(detail))
	}
	render.JSON(w, r, resp)
}

func (api *API) completeTransaction(w http.ResponseWriter, r *http.Request) {
	api.settleTransaction(w, r, api.ledger.CompleteTransaction)
}

func (api *API) failTransaction(w http.ResponseWriter, r *http.Request) {
	api.settleTransaction(w, r, api.ledger.FailTransaction)
}

func (api *API) settleTransaction(w http.ResponseWriter, r *http.Request,
	settle func(ctx context.Context, actor models.Actor, transactionID uint) (*models.Transaction, error)) {
	transactionID, err := parseID(r, "transactionID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	transaction, err := settle(r.Context(), actorFromRequest(r), transactionID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, newTransactionResponse(transaction))
}

func (api *API) refundTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := parseID(r, "transactionID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responseutils.WriteError(w, r, &dpcErrors.ValidationError{Err: err, Msg: "invalid request body"})
		return
	}

	transaction, err := api.ledger.IssueRefund(r.Context(), actorFromRequest(r), transactionID, req.Reason)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, newTransactionResponse(transaction))
}

func (api *API) providerRevenue(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	total, err := api.aggregator.ProviderRevenue(r.Context(), 0, period)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"total_revenue": total.String()})
}

func (api *API) revenueMetrics(w http.ResponseWriter, r *http.Request) {
	providerID, err := parseID(r, "providerID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	total, err := api.aggregator.ProviderRevenue(r.Context(), providerID, period)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"provider_id":      providerID,
		"period_start":     period.Start.Format(constants.DateFmt),
		"period_end":       period.End.Format(constants.DateFmt),
		"realized_revenue": total.String(),
	})
}

func (api *API) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	employerID, err := parseID(r, "employerID")
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	stats, err := api.aggregator.EnrollmentStats(r.Context(), employerID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}
	report, err := api.aggregator.EmployerRevenueBreakdown(r.Context(), employerID)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	plans := make([]map[string]interface{}, 0, len(report.Plans))
	for _, plan := range report.Plans {
		plans = append(plans, map[string]interface{}{
			"provider_id":        plan.ProviderID,
			"practice_name":      plan.PracticeName,
			"plan_id":            plan.PlanID,
			"plan_name":          plan.PlanName,
			"employee_count":     plan.EmployeeCount,
			"dependent_count":    plan.DependentCount,
			"monthly_revenue":    plan.MonthlyRevenue.String(),
			"annualized_revenue": plan.AnnualizedRevenue.String(),
		})
	}

	render.JSON(w, r, map[string]interface{}{
		"total_employees":     stats.TotalEmployees,
		"enrolled_employees":  stats.EnrolledEmployees,
		"pending_employees":   stats.PendingEmployees,
		"enrolled_dependents": stats.EnrolledDependents,
		"projected_revenue": map[string]interface{}{
			"plans":            plans,
			"monthly_total":    report.MonthlyTotal.String(),
			"annualized_total": report.AnnualizedTotal.String(),
		},
	})
}

func (api *API) getAuditLogs(w http.ResponseWriter, r *http.Request) {
	filter := models.AuditLogFilter{
		ActorID: uuid.Parse(r.URL.Query().Get("actor_id")),
		Action:  models.AuditAction(r.URL.Query().Get("action")),
		Limit:   queryLimit(r),
	}
	var err error
	if filter.LowerBound, filter.UpperBound, err = queryTimeBounds(r); err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	entries, err := api.repository.GetAuditLogs(r.Context(), filter)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	resp := make([]*auditLogResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, newAuditLogResponse(entry))
	}
	render.JSON(w, r, resp)
}

func (api *API) getSecurityAuditLogs(w http.ResponseWriter, r *http.Request) {
	filter := models.SecurityAuditLogFilter{
		Severity: models.Severity(r.URL.Query().Get("severity")),
		Limit:    queryLimit(r),
	}
	var err error
	if filter.LowerBound, filter.UpperBound, err = queryTimeBounds(r); err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	entries, err := api.repository.GetSecurityAuditLogs(r.Context(), filter)
	if err != nil {
		responseutils.WriteError(w, r, err)
		return
	}

	resp := make([]*securityAuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, newSecurityAuditLogResponse(entry))
	}
	render.JSON(w, r, resp)
}

func (api *API) getVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"version": constants.Version})
}

func (api *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	m := make(map[string]string)

	if _, ok := api.health.IsDatabaseOK(); ok {
		m["database"] = "ok"
		render.Status(r, http.StatusOK)
	} else {
		m["database"] = "error"
		render.Status(r, http.StatusBadGateway)
	}

	render.JSON(w, r, m)
}

type enrollmentResponse struct {
	ID         uint    `json:"id"`
	PlanID     uint    `json:"plan_id"`
	EmployeeID uint    `json:"employee_id"`
	BrokerID   *uint   `json:"broker_id,omitempty"`
	Status     string  `json:"status"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date,omitempty"`
}

func newEnrollmentResponse(e *models.Enrollment) *enrollmentResponse {
	resp := &enrollmentResponse{
		ID:         e.ID,
		PlanID:     e.PlanID,
		EmployeeID: e.EmployeeID,
		BrokerID:   e.BrokerID,
		Status:     string(e.Status),
		StartDate:  e.StartDate.Format(constants.DateFmt),
	}
	if e.EndDate != nil {
		endDate := e.EndDate.Format(constants.DateFmt)
		resp.EndDate = &endDate
	}
	return resp
}

type dependentEnrollmentResponse struct {
	ID           uint    `json:"id"`
	EnrollmentID uint    `json:"enrollment_id"`
	DependentID  uint    `json:"dependent_id"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date,omitempty"`
}

func newDependentEnrollmentResponse(d *models.DependentEnrollment) *dependentEnrollmentResponse {
	resp := &dependentEnrollmentResponse{
		ID:           d.ID,
		EnrollmentID: d.EnrollmentID,
		DependentID:  d.DependentID,
		StartDate:    d.StartDate.Format(constants.DateFmt),
	}
	if d.EndDate != nil {
		endDate := d.EndDate.Format(constants.DateFmt)
		resp.EndDate = &endDate
	}
	return resp
}

type providerPlanResponse struct {
	ID                     uint   `json:"id"`
	ProviderID             uint   `json:"provider_id"`
	Name                   string `json:"name"`
	Description            string `json:"description,omitempty"`
	MonthlyAmount          string `json:"monthly_amount"`
	DependentMonthlyAmount string `json:"dependent_monthly_amount"`
	IsActive               bool   `json:"is_active"`
}

func newProviderPlanResponse(plan *models.ProviderPlan) *providerPlanResponse {
	return &providerPlanResponse{
		ID:                     plan.ID,
		ProviderID:             plan.ProviderID,
		Name:                   plan.Name,
		Description:            plan.Description,
		MonthlyAmount:          plan.MonthlyAmount.String(),
		DependentMonthlyAmount: plan.DependentMonthlyAmount.String(),
		IsActive:               plan.IsActive,
	}
}

type transactionResponse struct {
	ID           uint   `json:"id"`
	EnrollmentID uint   `json:"enrollment_id"`
	Type         string `json:"transaction_type"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
	PeriodStart  string `json:"billing_period_start"`
	PeriodEnd    string `json:"billing_period_end"`
	ReferenceID  string `json:"reference_id"`
}

func newTransactionResponse(t *models.Transaction) *transactionResponse {
	return &transactionResponse{
		ID:           t.ID,
		EnrollmentID: t.EnrollmentID,
		Type:         string(t.Type),
		Amount:       t.Amount.String(),
		Status:       string(t.Status),
		PeriodStart:  t.PeriodStart.Format(constants.DateFmt),
		PeriodEnd:    t.PeriodEnd.Format(constants.DateFmt),
		ReferenceID:  t.ReferenceID,
	}
}

type auditLogResponse struct {
	ID           uint                   `json:"id"`
	ActorID      string                 `json:"actor_id"`
	ActorType    string                 `json:"actor_type"`
	Action       string                 `json:"action"`
	EntityKind   string                 `json:"entity_kind"`
	EntityID     uint                   `json:"entity_id"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Status       string                 `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

func newAuditLogResponse(entry *models.AuditLog) *auditLogResponse {
	return &auditLogResponse{
		ID:           entry.ID,
		ActorID:      entry.ActorID.String(),
		ActorType:    string(entry.ActorType),
		Action:       string(entry.Action),
		EntityKind:   string(entry.EntityKind),
		EntityID:     entry.EntityID,
		Details:      entry.Details,
		Status:       entry.Status,
		ErrorMessage: entry.ErrorMessage,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Timestamp:    entry.Timestamp,
	}
}

type securityAuditLogResponse struct {
	ID        uint                   `json:"id"`
	ActorID   string                 `json:"actor_id"`
	ActorType string                 `json:"actor_type"`
	Action    string                 `json:"action"`
	Severity  string                 `json:"severity"`
	Details   map[string]interface{} `json:"details,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func newSecurityAuditLogResponse(entry *models.SecurityAuditLog) *securityAuditLogResponse {
	return &securityAuditLogResponse{
		ID:        entry.ID,
		ActorID:   entry.ActorID.String(),
		ActorType: string(entry.ActorType),
		Action:    string(entry.Action),
		Severity:  string(entry.Severity),
		Details:   entry.Details,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		Timestamp: entry.Timestamp,
	}
}

type transactionDetailResponse struct {
	Description           string `json:"description"`
	Amount                string `json:"amount"`
	DependentEnrollmentID *uint  `json:"dependent_enrollment_id,omitempty"`
}

func newTransactionDetailResponse(d *models.TransactionDetail) *transactionDetailResponse {
	return &transactionDetailResponse{
		Description:           d.Description,
		Amount:                d.Amount.String(),
		DependentEnrollmentID: d.DependentEnrollmentID,
	}
}

func actorFromRequest(r *http.Request) models.Actor {
	if actor, ok := actorcontext.FromContext(r.Context()); ok {
		return actor
	}
	return models.Actor{ID: uuid.NewRandom(), Type: models.ActorTypeAnonymous,
		IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
}

func parseID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &dpcErrors.ValidationError{Err: err, Msg: name + " must be a positive integer"}
	}
	return uint(id), nil
}

func parseDate(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &dpcErrors.ValidationError{Msg: name + " is required"}
	}
	d, err := time.Parse(constants.DateFmt, raw)
	if err != nil {
		return time.Time{}, &dpcErrors.ValidationError{Err: err, Msg: name + " must be formatted as YYYY-MM-DD"}
	}
	return d, nil
}

func parsePeriod(r *http.Request) (models.Period, error) {
	start, err := parseDate(r.URL.Query().Get("start_date"), "start_date")
	if err != nil {
		return models.Period{}, err
	}
	end, err := parseDate(r.URL.Query().Get("end_date"), "end_date")
	if err != nil {
		return models.Period{}, err
	}

	period := models.Period{Start: start, End: end}
	if !period.Valid() {
		return models.Period{}, &dpcErrors.ValidationError{Msg: "end_date must not precede start_date"}
	}
	return period, nil
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func queryTimeBounds(r *http.Request) (lower, upper time.Time, err error) {
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		if lower, err = parseDate(raw, "start_date"); err != nil {
			return
		}
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		if upper, err = parseDate(raw, "end_date"); err != nil {
			return
		}
	}
	return
}
