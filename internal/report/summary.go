// Package report computes the financial aggregates behind the dashboard
// report view: recurring revenue, projected versus collected billing for
// a month, and the matching expense totals.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"botdesk/internal/domain/expense"
	"botdesk/internal/domain/project"
)

// Summary is one month's financial picture.
type Summary struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	MRR              decimal.Decimal `json:"mrr"`
	ProjectedRevenue decimal.Decimal `json:"projectedRevenue"`
	CollectedRevenue decimal.Decimal `json:"collectedRevenue"`
	MonthExpenses    decimal.Decimal `json:"monthExpenses"`
	NetResult        decimal.Decimal `json:"netResult"`

	ActiveProjects int            `json:"activeProjects"`
	StatusCounts   map[string]int `json:"statusCounts"`
}

// MRR sums the monthly price of every established project.
func MRR(projects []project.Project) decimal.Decimal {
	total := decimal.Zero
	for _, p := range projects {
		if p.Status == project.StatusEstablished {
			total = total.Add(p.MonthlyPrice)
		}
	}
	return total
}

// Summarize computes the summary for the given calendar month (month is
// 1-based). Projected revenue counts every established project;
// collected revenue counts only the ones whose billing day within that
// month has already passed relative to now. An upcoming cutoff is money
// not yet charged.
func Summarize(projects []project.Project, expenses []expense.Expense, year, month int, now time.Time) Summary {
	s := Summary{
		Year:         year,
		Month:        month,
		MRR:          decimal.Zero,
		StatusCounts: make(map[string]int),
	}

	projected := decimal.Zero
	collected := decimal.Zero
	for _, p := range projects {
		s.StatusCounts[string(p.Status)]++
		if p.Status != project.StatusEstablished {
			continue
		}
		s.ActiveProjects++
		s.MRR = s.MRR.Add(p.MonthlyPrice)
		projected = projected.Add(p.MonthlyPrice)

		cutoff, ok := project.CutoffOn(p, now)
		if ok && !billingDayInMonth(cutoff, year, month).After(now) {
			collected = collected.Add(p.MonthlyPrice)
		}
	}
	s.ProjectedRevenue = projected
	s.CollectedRevenue = collected

	months := expense.MonthlyAllocation(expenses, year)
	if month >= 1 && month <= 12 {
		s.MonthExpenses = months[month-1].Total
	} else {
		s.MonthExpenses = decimal.Zero
	}
	s.NetResult = collected.Sub(s.MonthExpenses)
	return s
}

// billingDayInMonth projects a cutoff's day-of-month onto the target
// month, clamping to its last valid day.
func billingDayInMonth(cutoff time.Time, year, month int) time.Time {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	day := cutoff.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
