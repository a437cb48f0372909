package web

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dpcdirect/dpc-app/dpc/audit"
	"github.com/dpcdirect/dpc-app/dpc/constants"
	"github.com/dpcdirect/dpc-app/dpc/logging"
	"github.com/dpcdirect/dpc-app/dpc/monitoring"
)

func NewRouter(db *sql.DB, recorder audit.Auditor) http.Handler {
	api := NewAPI(db, recorder)
	m := monitoring.GetMonitor()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, ActorContext, logging.NewStructuredLogger(), ConnectionClose)

	r.Route(constants.APIPrefix, func(r chi.Router) {
		r.Post(m.WrapHandler("/enrollments", api.createEnrollment))
		r.Post(m.WrapHandler("/enrollments/{enrollmentID}/activate", api.activateEnrollment))
		r.Post(m.WrapHandler("/enrollments/{enrollmentID}/lapse", api.lapseEnrollment))
		r.Post(m.WrapHandler("/enrollments/{enrollmentID}/cancel", api.cancelEnrollment))
		r.Post(m.WrapHandler("/enrollments/{enrollmentID}/add_dependent", api.addDependent))
		r.Post(m.WrapHandler("/enrollments/{enrollmentID}/remove_dependent", api.removeDependent))
		r.Get(m.WrapHandler("/provider-plans/{planID}/enrollments", api.getPlanEnrollments))

		r.Get(m.WrapHandler("/transactions/{transactionID}", api.getTransaction))
		r.Post(m.WrapHandler("/transactions/{transactionID}/complete", api.completeTransaction))
		r.Post(m.WrapHandler("/transactions/{transactionID}/fail", api.failTransaction))
		r.Post(m.WrapHandler("/transactions/{transactionID}/refund", api.refundTransaction))
		r.Get(m.WrapHandler("/transactions/provider_revenue", api.providerRevenue))

		r.Get(m.WrapHandler("/providers/{providerID}/plans", api.getProviderPlans))
		r.Get(m.WrapHandler("/providers/{providerID}/revenue_metrics", api.revenueMetrics))
		r.Get(m.WrapHandler("/employers/{employerID}/dashboard_metrics", api.dashboardMetrics))

		r.With(RequireAdmin(recorder)).Get(m.WrapHandler("/audit-logs", api.getAuditLogs))
		r.With(RequireAdmin(recorder)).Get(m.WrapHandler("/security-audit-logs", api.getSecurityAuditLogs))
	})

	r.Get(m.WrapHandler("/_version", api.getVersion))
	r.Get(m.WrapHandler("/_health", api.healthCheck))

	return r
}
