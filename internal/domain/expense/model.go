package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category buckets an expense for reporting. Each category maps to a
// fixed or variable cost type.
type Category string

const (
	CategoryHosting      Category = "hosting"
	CategorySoftware     Category = "software"
	CategoryMarketing    Category = "marketing"
	CategoryOperational  Category = "operational"
	CategoryProfessional Category = "professional-services"
	CategoryOther        Category = "other"
)

// CostType classifies a category as a fixed or variable cost.
type CostType string

const (
	CostFixed    CostType = "fixed"
	CostVariable CostType = "variable"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryHosting, CategorySoftware, CategoryMarketing,
		CategoryOperational, CategoryProfessional, CategoryOther:
		return true
	}
	return false
}

// CostType returns the fixed/variable classification for the category.
func (c Category) CostType() CostType {
	switch c {
	case CategoryHosting, CategorySoftware:
		return CostFixed
	default:
		return CostVariable
	}
}

// RecurringType is how often a recurring expense repeats.
type RecurringType string

const (
	RecurringMonthly  RecurringType = "monthly"
	RecurringBiannual RecurringType = "biannual"
	RecurringAnnual   RecurringType = "annual"
)

// Valid reports whether the recurrence type is one of the known values.
func (r RecurringType) Valid() bool {
	switch r {
	case RecurringMonthly, RecurringBiannual, RecurringAnnual:
		return true
	}
	return false
}

// DateLayout is the calendar-date format used for expense dates.
const DateLayout = "2006-01-02"

// Expense is an operating cost entry. Date is carried as a calendar
// string; the allocation math re-parses it and silently skips entries it
// cannot read.
type Expense struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Category      Category        `json:"category"`
	Date          string          `json:"date"`
	IsRecurring   bool            `json:"isRecurring,omitempty"`
	RecurringType RecurringType   `json:"recurringType,omitempty"`
	RecurringDay  int             `json:"recurringDay,omitempty"`
	Vendor        string          `json:"vendor,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EntityID returns the expense identifier.
func (e Expense) EntityID() string { return e.ID }

// Patch is a partial expense record. Nil fields are left untouched on merge.
type Patch struct {
	Name          *string          `json:"name,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Category      *Category        `json:"category,omitempty"`
	Date          *string          `json:"date,omitempty"`
	IsRecurring   *bool            `json:"isRecurring,omitempty"`
	RecurringType *RecurringType   `json:"recurringType,omitempty"`
	RecurringDay  *int             `json:"recurringDay,omitempty"`
	Vendor        *string          `json:"vendor,omitempty"`
	Description   *string          `json:"description,omitempty"`
}

// Validate checks patch fields that carry structural constraints.
func (p Patch) Validate() error {
	if p.Category != nil && !p.Category.Valid() {
		return ErrInvalidCategory
	}
	if p.RecurringType != nil && *p.RecurringType != "" && !p.RecurringType.Valid() {
		return ErrInvalidRecurrence
	}
	return nil
}

// New builds an expense from a patch with the given identifier.
func New(p Patch, id string, now time.Time) Expense {
	e := Expense{
		ID:        id,
		Category:  CategoryOther,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return e.Merge(p, now)
}

// Merge shallow-merges a patch over the expense. Patch fields win and the
// updated timestamp is refreshed.
func (e Expense) Merge(p Patch, now time.Time) Expense {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.IsRecurring != nil {
		e.IsRecurring = *p.IsRecurring
	}
	if p.RecurringType != nil {
		e.RecurringType = *p.RecurringType
	}
	if p.RecurringDay != nil {
		e.RecurringDay = *p.RecurringDay
	}
	if p.Vendor != nil {
		e.Vendor = *p.Vendor
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	e.UpdatedAt = now
	return e
}
