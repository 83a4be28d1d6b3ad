package expense_test

import (
	"testing"

	"botdesk/internal/domain/expense"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestMonthlyAllocation_MonthlyRecurringFromMarch(t *testing.T) {
	expenses := []expense.Expense{
		{
			Name:          "vps",
			Amount:        dec(1200),
			Category:      expense.CategoryHosting,
			Date:          "2024-03-10",
			IsRecurring:   true,
			RecurringType: expense.RecurringMonthly,
		},
	}

	months := expense.MonthlyAllocation(expenses, 2024)

	for m := 0; m < 2; m++ {
		require.True(t, months[m].Fixed.IsZero(), "month %d", m)
		require.True(t, months[m].Total.IsZero(), "month %d", m)
	}
	for m := 2; m < 12; m++ {
		require.True(t, months[m].Fixed.Equal(dec(1200)), "month %d", m)
		require.True(t, months[m].Total.Equal(dec(1200)), "month %d", m)
	}
}

func TestMonthlyAllocation_MonthlyFromPriorYearPostsAllYear(t *testing.T) {
	expenses := []expense.Expense{
		{
			Amount:        dec(100),
			Category:      expense.CategorySoftware,
			Date:          "2023-11-05",
			IsRecurring:   true,
			RecurringType: expense.RecurringMonthly,
		},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	for m := 0; m < 12; m++ {
		require.True(t, months[m].Fixed.Equal(dec(100)), "month %d", m)
	}
	require.True(t, expense.AnnualTotal(months).Equal(dec(1200)))
}

func TestMonthlyAllocation_Biannual(t *testing.T) {
	expenses := []expense.Expense{
		{
			Amount:        dec(600),
			Category:      expense.CategoryProfessional,
			Date:          "2024-03-01",
			IsRecurring:   true,
			RecurringType: expense.RecurringBiannual,
		},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	for m := 0; m < 12; m++ {
		want := dec(0)
		if m == 2 || m == 8 {
			want = dec(600)
		}
		require.True(t, months[m].Services.Equal(want), "month %d", m)
	}
}

func TestMonthlyAllocation_BiannualLateStartPostsOnce(t *testing.T) {
	expenses := []expense.Expense{
		{
			Amount:        dec(600),
			Category:      expense.CategoryProfessional,
			Date:          "2024-09-01",
			IsRecurring:   true,
			RecurringType: expense.RecurringBiannual,
		},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	require.True(t, months[8].Services.Equal(dec(600)))
	require.True(t, expense.AnnualTotal(months).Equal(dec(600)))
}

func TestMonthlyAllocation_BiannualKeepsPhaseInLaterYears(t *testing.T) {
	expenses := []expense.Expense{
		{
			Amount:        dec(600),
			Category:      expense.CategoryProfessional,
			Date:          "2023-09-01",
			IsRecurring:   true,
			RecurringType: expense.RecurringBiannual,
		},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	for m := 0; m < 12; m++ {
		want := dec(0)
		if m == 2 || m == 8 {
			want = dec(600)
		}
		require.True(t, months[m].Services.Equal(want), "month %d", m)
	}
}

func TestMonthlyAllocation_AnnualPostsOnStartMonth(t *testing.T) {
	expenses := []expense.Expense{
		{
			Amount:        dec(900),
			Category:      expense.CategoryOperational,
			Date:          "2022-07-15",
			IsRecurring:   true,
			RecurringType: expense.RecurringAnnual,
		},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	require.True(t, months[6].Operational.Equal(dec(900)))
	require.True(t, expense.AnnualTotal(months).Equal(dec(900)))
}

func TestMonthlyAllocation_OneTimePostsToItsMonthOnly(t *testing.T) {
	expenses := []expense.Expense{
		{Amount: dec(250), Category: expense.CategoryMarketing, Date: "2024-05-20"},
		{Amount: dec(250), Category: expense.CategoryMarketing, Date: "2023-05-20"},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	require.True(t, months[4].Marketing.Equal(dec(250)))
	require.True(t, expense.AnnualTotal(months).Equal(dec(250)))
}

func TestMonthlyAllocation_SkipsBadEntries(t *testing.T) {
	expenses := []expense.Expense{
		{Amount: dec(0), Category: expense.CategoryHosting, Date: "2024-01-01"},
		{Amount: dec(-50), Category: expense.CategoryHosting, Date: "2024-01-01"},
		{Amount: dec(50), Category: expense.CategoryHosting, Date: "not-a-date"},
		{Amount: dec(50), Category: expense.CategoryHosting, Date: ""},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	require.True(t, expense.AnnualTotal(months).IsZero())
}

func TestMonthlyAllocation_FutureStartYearPostsNothing(t *testing.T) {
	expenses := []expense.Expense{
		{
			Amount:        dec(100),
			Category:      expense.CategoryHosting,
			Date:          "2025-01-01",
			IsRecurring:   true,
			RecurringType: expense.RecurringMonthly,
		},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	require.True(t, expense.AnnualTotal(months).IsZero())
}

func TestMonthlyAllocation_UnknownCategoryFallsToOther(t *testing.T) {
	expenses := []expense.Expense{
		{Amount: dec(75), Category: expense.Category("misc"), Date: "2024-02-10"},
	}

	months := expense.MonthlyAllocation(expenses, 2024)
	require.True(t, months[1].Other.Equal(dec(75)))
}

func TestCategoryCostType(t *testing.T) {
	require.Equal(t, expense.CostFixed, expense.CategoryHosting.CostType())
	require.Equal(t, expense.CostFixed, expense.CategorySoftware.CostType())
	require.Equal(t, expense.CostVariable, expense.CategoryMarketing.CostType())
	require.Equal(t, expense.CostVariable, expense.CategoryProfessional.CostType())
}
