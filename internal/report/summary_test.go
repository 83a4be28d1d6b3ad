package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdesk/internal/domain/expense"
	"botdesk/internal/domain/project"
)

func established(name string, price int64, cutoff string) project.Project {
	return project.Project{
		ID:           name,
		Name:         name,
		Status:       project.StatusEstablished,
		MonthlyPrice: decimal.NewFromInt(price),
		CutoffDate:   cutoff,
	}
}

func TestMRRCountsOnlyEstablished(t *testing.T) {
	projects := []project.Project{
		established("a", 1000, "2025-03-15"),
		established("b", 2500, "2025-03-20"),
		{ID: "c", Status: project.StatusTrial, MonthlyPrice: decimal.NewFromInt(9999)},
		{ID: "d", Status: project.StatusCanceled, MonthlyPrice: decimal.NewFromInt(500)},
	}
	assert.True(t, MRR(projects).Equal(decimal.NewFromInt(3500)))
}

func TestSummarizeProjectedVersusCollected(t *testing.T) {
	now := time.Date(2025, 3, 18, 12, 0, 0, 0, time.UTC)
	projects := []project.Project{
		established("charged", 1000, "2025-03-15"),  // billing day passed
		established("upcoming", 2000, "2025-03-25"), // billing day ahead
		{ID: "trial", Status: project.StatusTrial, MonthlyPrice: decimal.NewFromInt(500)},
	}

	s := Summarize(projects, nil, 2025, 3, now)

	assert.True(t, s.ProjectedRevenue.Equal(decimal.NewFromInt(3000)))
	assert.True(t, s.CollectedRevenue.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 2, s.ActiveProjects)
	assert.Equal(t, map[string]int{"established": 2, "trial": 1}, s.StatusCounts)
}

func TestSummarizeSubtractsMonthExpenses(t *testing.T) {
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	projects := []project.Project{established("a", 5000, "2025-03-10")}
	expenses := []expense.Expense{
		{
			ID: "e1", Name: "hosting", Amount: decimal.NewFromInt(1200),
			Category: expense.CategoryHosting, Date: "2025-01-05",
			IsRecurring: true, RecurringType: expense.RecurringMonthly,
		},
		{
			ID: "e2", Name: "one-off", Amount: decimal.NewFromInt(300),
			Category: expense.CategoryMarketing, Date: "2025-03-12",
		},
	}

	s := Summarize(projects, expenses, 2025, 3, now)

	require.True(t, s.CollectedRevenue.Equal(decimal.NewFromInt(5000)))
	assert.True(t, s.MonthExpenses.Equal(decimal.NewFromInt(1500)))
	assert.True(t, s.NetResult.Equal(decimal.NewFromInt(3500)))
}

func TestSummarizeClampsBillingDayToShortMonths(t *testing.T) {
	// Cutoff on the 31st; February clamps to the 28th.
	now := time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC)
	projects := []project.Project{established("a", 800, "2025-01-31")}

	s := Summarize(projects, nil, 2025, 2, now)
	assert.True(t, s.CollectedRevenue.Equal(decimal.NewFromInt(800)))
}

func TestSummarizeComputedCutoffFromStartDate(t *testing.T) {
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	p := project.Project{
		ID:           "computed",
		Status:       project.StatusEstablished,
		MonthlyPrice: decimal.NewFromInt(1500),
		StartDate:    "2025-01-10", // 30 days later -> billing day 9
	}

	s := Summarize([]project.Project{p}, nil, 2025, 6, now)
	assert.True(t, s.CollectedRevenue.Equal(decimal.NewFromInt(1500)),
		"billing day 9 has passed by June 20")
}
