package project

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a contract.
type Status string

const (
	StatusDemo        Status = "demo"
	StatusTrial       Status = "trial"
	StatusEstablished Status = "established"
	StatusPaused      Status = "paused"
	StatusCanceled    Status = "canceled"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusDemo, StatusTrial, StatusEstablished, StatusPaused, StatusCanceled:
		return true
	}
	return false
}

// DateLayout is the calendar-date format used across project fields.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Project is a chatbot service contract. Dates are carried as calendar
// strings; they are validated at the form boundary and parsed where the
// billing math needs them. CutoffDate is only meaningful when the status
// is established; the trial countdown only when the status is trial.
type Project struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Status           Status          `json:"status"`
	MonthlyPrice     decimal.Decimal `json:"monthlyPrice"`
	CutoffDate       string          `json:"cutoffDate,omitempty"`
	StartDate        string          `json:"startDate,omitempty"`
	ClientName       string          `json:"clientName,omitempty"`
	InstallationCost decimal.Decimal `json:"installationCost,omitempty"`
	InstallationDate string          `json:"installationDate,omitempty"`
	BillingRequired  bool            `json:"billingRequired,omitempty"`
	TaxID            string          `json:"taxId,omitempty"`
	LegalName        string          `json:"legalName,omitempty"`
	InvoiceGenerated bool            `json:"invoiceGenerated,omitempty"`
	InvoiceFolio     string          `json:"invoiceFolio,omitempty"`
	InvoiceDate      string          `json:"invoiceDate,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// EntityID returns the project identifier.
func (p Project) EntityID() string { return p.ID }

// Patch is a partial project record. Nil fields are left untouched on merge.
type Patch struct {
	Name             *string          `json:"name,omitempty"`
	Status           *Status          `json:"status,omitempty"`
	MonthlyPrice     *decimal.Decimal `json:"monthlyPrice,omitempty"`
	CutoffDate       *string          `json:"cutoffDate,omitempty"`
	StartDate        *string          `json:"startDate,omitempty"`
	ClientName       *string          `json:"clientName,omitempty"`
	InstallationCost *decimal.Decimal `json:"installationCost,omitempty"`
	InstallationDate *string          `json:"installationDate,omitempty"`
	BillingRequired  *bool            `json:"billingRequired,omitempty"`
	TaxID            *string          `json:"taxId,omitempty"`
	LegalName        *string          `json:"legalName,omitempty"`
	InvoiceGenerated *bool            `json:"invoiceGenerated,omitempty"`
	InvoiceFolio     *string          `json:"invoiceFolio,omitempty"`
	InvoiceDate      *string          `json:"invoiceDate,omitempty"`
}

// Validate checks patch fields that carry structural constraints.
func (p Patch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.MonthlyPrice != nil && p.MonthlyPrice.IsNegative() {
		return ErrNegativePrice
	}
	for _, d := range []*string{p.CutoffDate, p.StartDate, p.InstallationDate, p.InvoiceDate} {
		if d != nil && *d != "" {
			if _, err := ParseDate(*d); err != nil {
				return ErrInvalidDate
			}
		}
	}
	return nil
}

// New builds a project from a patch with the given identifier.
func New(p Patch, id string, now time.Time) Project {
	proj := Project{
		ID:        id,
		Status:    StatusDemo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return proj.Merge(p, now)
}

// Merge shallow-merges a patch over the project. Patch fields win and the
// updated timestamp is refreshed.
func (p Project) Merge(patch Patch, now time.Time) Project {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.MonthlyPrice != nil {
		p.MonthlyPrice = *patch.MonthlyPrice
	}
	if patch.CutoffDate != nil {
		p.CutoffDate = *patch.CutoffDate
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.ClientName != nil {
		p.ClientName = *patch.ClientName
	}
	if patch.InstallationCost != nil {
		p.InstallationCost = *patch.InstallationCost
	}
	if patch.InstallationDate != nil {
		p.InstallationDate = *patch.InstallationDate
	}
	if patch.BillingRequired != nil {
		p.BillingRequired = *patch.BillingRequired
	}
	if patch.TaxID != nil {
		p.TaxID = *patch.TaxID
	}
	if patch.LegalName != nil {
		p.LegalName = *patch.LegalName
	}
	if patch.InvoiceGenerated != nil {
		p.InvoiceGenerated = *patch.InvoiceGenerated
	}
	if patch.InvoiceFolio != nil {
		p.InvoiceFolio = *patch.InvoiceFolio
	}
	if patch.InvoiceDate != nil {
		p.InvoiceDate = *patch.InvoiceDate
	}
	p.UpdatedAt = now
	return p
}
