// Package revenue is the read side: realized revenue from the ledger and
// projected revenue from currently-active memberships. Nothing here mutates
// state, so no audit entries are produced.
package revenue

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
)

var twelve = decimal.NewFromInt(12)

type Aggregator struct {
	repository models.Repository
}

func NewAggregator(repository models.Repository) *Aggregator {
	return &Aggregator{repository}
}

// ProviderRevenue reports realized revenue: the sum of COMPLETED provider
// payments whose billing period intersects the requested period. Refunded
// transactions are excluded by the status filter, so refunds are never
// double-counted. A zero providerID aggregates across all providers.
func (a *Aggregator) ProviderRevenue(ctx context.Context, providerID uint, period models.Period) (decimal.Decimal, error) {
	if !period.Valid() {
		return decimal.Zero, &dpcErrors.ValidationError{Msg: "start and end dates are required and must be ordered"}
	}

	if providerID != 0 {
		provider, err := a.repository.GetProviderByID(ctx, providerID)
		if err != nil {
			return decimal.Zero, err
		}
		if provider == nil {
			return decimal.Zero, &dpcErrors.EntityNotFoundError{Kind: string(models.EntityKindProvider), ID: fmt.Sprint(providerID)}
		}
	}

	return a.repository.GetProviderRevenue(ctx, providerID, period)
}

// PlanProjection is one provider/plan grouping in an employer's projected
// revenue report.
type PlanProjection struct {
	models.RevenueBreakdownRow

	MonthlyRevenue    decimal.Decimal
	AnnualizedRevenue decimal.Decimal
}

// RevenueReport is projected, not realized, revenue: what the employer's
// currently-active memberships would produce per month and per year if
// nothing changed.
type RevenueReport struct {
	Plans           []PlanProjection
	MonthlyTotal    decimal.Decimal
	AnnualizedTotal decimal.Decimal
}

// EmployerRevenueBreakdown projects revenue from the employer's active
// memberships grouped by provider and plan.
func (a *Aggregator) EmployerRevenueBreakdown(ctx context.Context, employerID uint) (*RevenueReport, error) {
	rows, err := a.repository.GetEmployerRevenueBreakdown(ctx, employerID)
	if err != nil {
		return nil, err
	}

	report := RevenueReport{
		MonthlyTotal:    decimal.Zero,
		AnnualizedTotal: decimal.Zero,
	}
	for _, row := range rows {
		monthly := row.MonthlyAmount.Mul(decimal.NewFromInt(int64(row.EmployeeCount))).
			Add(row.DependentMonthlyAmount.Mul(decimal.NewFromInt(int64(row.DependentCount))))
		projection := PlanProjection{
			RevenueBreakdownRow: *row,
			MonthlyRevenue:      monthly,
			AnnualizedRevenue:   monthly.Mul(twelve),
		}
		report.Plans = append(report.Plans, projection)
		report.MonthlyTotal = report.MonthlyTotal.Add(monthly)
	}
	report.AnnualizedTotal = report.MonthlyTotal.Mul(twelve)

	return &report, nil
}

// EnrollmentStats reports membership counts for an employer's dashboard.
// Counts reflect current state at read time.
func (a *Aggregator) EnrollmentStats(ctx context.Context, employerID uint) (*models.EnrollmentStats, error) {
	return a.repository.GetEnrollmentStats(ctx, employerID)
}
