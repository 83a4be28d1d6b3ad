package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"botdesk/internal/domain/client"
	"botdesk/internal/domain/expense"
	"botdesk/internal/domain/project"
)

// BackupVersion tags the backup format so a future reader can refuse
// payloads it does not understand.
const BackupVersion = "1"

// Backup is the full-database JSON export.
type Backup struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Projects   []project.Project `json:"projects"`
	Clients    []client.Client   `json:"clients"`
	Expenses   []expense.Expense `json:"expenses"`
}

// WriteBackup serializes a backup of the three entity collections.
func WriteBackup(w io.Writer, projects []project.Project, clients []client.Client, expenses []expense.Expense, now time.Time) error {
	b := Backup{
		Version:    BackupVersion,
		ExportedAt: now.UTC(),
		Projects:   projects,
		Clients:    clients,
		Expenses:   expenses,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// ReadBackup parses and validates a backup payload.
func ReadBackup(r io.Reader) (Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Backup{}, fmt.Errorf("failed to decode backup: %w", err)
	}
	if b.Version != BackupVersion {
		return Backup{}, fmt.Errorf("unsupported backup version %q", b.Version)
	}
	return b, nil
}
