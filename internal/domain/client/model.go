package client

import (
	"strings"
	"time"
)

// Client is a billable customer. Name doubles as the natural dedup key:
// the project flow auto-creates clients by name, and the remote store
// enforces no uniqueness, so creation must check-then-create.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	TaxID     string    `json:"taxId,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntityID returns the client identifier.
func (c Client) EntityID() string { return c.ID }

// Patch is a partial client record. Nil fields are left untouched on merge.
type Patch struct {
	Name    *string `json:"name,omitempty"`
	Company *string `json:"company,omitempty"`
	TaxID   *string `json:"taxId,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// Validate checks a patch for create-time requirements.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// New builds a client from a patch with the given identifier.
func New(p Patch, id string, now time.Time) Client {
	c := Client{ID: id, CreatedAt: now}
	return c.Merge(p, now)
}

// Merge shallow-merges a patch over the client. Patch fields win.
func (c Client) Merge(p Patch, _ time.Time) Client {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.TaxID != nil {
		c.TaxID = *p.TaxID
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	return c
}

// NormalizeName produces the dedup key for a client name: trimmed and
// case-folded, so " Acme Corp " and "acme corp" collide.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Exists reports whether the list already holds a client with the given
// name under the normalized key.
func Exists(list []Client, name string) bool {
	key := NormalizeName(name)
	for _, c := range list {
		if NormalizeName(c.Name) == key {
			return true
		}
	}
	return false
}

// FindByName returns the first client matching the normalized name.
func FindByName(list []Client, name string) (Client, bool) {
	key := NormalizeName(name)
	for _, c := range list {
		if NormalizeName(c.Name) == key {
			return c, true
		}
	}
	return Client{}, false
}
