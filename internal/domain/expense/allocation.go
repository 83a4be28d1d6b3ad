package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyBreakdown is one month's spending split into the report buckets.
// JSON keys match what the dashboard charts consume.
type MonthlyBreakdown struct {
	Fixed       decimal.Decimal `json:"gastosFijos"`
	Marketing   decimal.Decimal `json:"marketing"`
	Operational decimal.Decimal `json:"operativos"`
	Services    decimal.Decimal `json:"servicios"`
	Other       decimal.Decimal `json:"otros"`
	Total       decimal.Decimal `json:"totalMes"`
}

// MonthlyAllocation spreads a flat expense list over the twelve months of
// the target year.
//
// One-time expenses post only to the month of their date. Monthly
// recurrence posts every month from the start month onward, and every
// month when the expense started in an earlier year. Biannual posts at
// the start month and six months later, keeping the same six-month phase
// in later years. Annual posts once per year in the original start month.
//
// Entries with a non-positive amount or an unparseable date are skipped
// silently and excluded from every total.
func MonthlyAllocation(expenses []Expense, year int) [12]MonthlyBreakdown {
	var months [12]MonthlyBreakdown

	for _, e := range expenses {
		if !e.Amount.IsPositive() {
			continue
		}
		started, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			continue
		}
		startYear := started.Year()
		startMonth := int(started.Month()) - 1

		for m := 0; m < 12; m++ {
			if postsInMonth(e, startYear, startMonth, year, m) {
				months[m].add(e.Category, e.Amount)
			}
		}
	}

	return months
}

// AnnualTotal sums the per-month totals of an allocation.
func AnnualTotal(months [12]MonthlyBreakdown) decimal.Decimal {
	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.Total)
	}
	return total
}

func postsInMonth(e Expense, startYear, startMonth, year, month int) bool {
	if startYear > year {
		return false
	}

	if !e.IsRecurring {
		return startYear == year && startMonth == month
	}

	switch e.RecurringType {
	case RecurringMonthly:
		return startYear < year || month >= startMonth
	case RecurringBiannual:
		if (month-startMonth)%6 != 0 {
			return false
		}
		if startYear == year {
			return month >= startMonth
		}
		return true
	case RecurringAnnual:
		return month == startMonth
	default:
		// Unknown recurrence degrades to a one-time posting.
		return startYear == year && startMonth == month
	}
}

func (b *MonthlyBreakdown) add(c Category, amount decimal.Decimal) {
	switch c {
	case CategoryHosting, CategorySoftware:
		b.Fixed = b.Fixed.Add(amount)
	case CategoryMarketing:
		b.Marketing = b.Marketing.Add(amount)
	case CategoryOperational:
		b.Operational = b.Operational.Add(amount)
	case CategoryProfessional:
		b.Services = b.Services.Add(amount)
	default:
		b.Other = b.Other.Add(amount)
	}
	b.Total = b.Total.Add(amount)
}
