package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"botdesk/internal/domain/project"
)

// ProjectSource lists the projects whose billing cutoff falls tomorrow.
type ProjectSource interface {
	DueTomorrow(ctx context.Context, now time.Time) []project.Project
}

// Sender delivers one plain-text alert.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Reminder scans for projects due tomorrow and alerts through the
// gateway. Each project is alerted at most once per cutoff date, so the
// periodic scan can run as often as it likes.
type Reminder struct {
	projects ProjectSource
	sender   Sender
	logger   *slog.Logger
	now      func() time.Time

	sent map[string]string // project ID -> cutoff date already alerted
}

// NewReminder creates a reminder scanner.
func NewReminder(projects ProjectSource, sender Sender, logger *slog.Logger) *Reminder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reminder{
		projects: projects,
		sender:   sender,
		logger:   logger,
		now:      time.Now,
		sent:     make(map[string]string),
	}
}

// CheckNow runs one scan and returns how many alerts were delivered.
func (r *Reminder) CheckNow(ctx context.Context) int {
	now := r.now()
	delivered := 0
	for _, p := range r.projects.DueTomorrow(ctx, now) {
		cutoff, ok := project.CutoffOn(p, now)
		if !ok {
			continue
		}
		key := cutoff.Format(project.DateLayout)
		if r.sent[p.ID] == key {
			continue
		}

		text := fmt.Sprintf("Recordatorio: el corte de %s es mañana (%s). Monto mensual: $%s.",
			p.Name, key, p.MonthlyPrice.StringFixed(2))
		if err := r.sender.Send(ctx, text); err != nil {
			r.logger.Warn("reminder delivery failed", "project", p.ID, "error", err)
			continue
		}

		r.sent[p.ID] = key
		delivered++
		r.logger.Info("cutoff reminder sent", "project", p.ID, "cutoff", key)
	}
	return delivered
}

// Run scans on the given interval until the context is canceled. One
// scan runs immediately.
func (r *Reminder) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	r.CheckNow(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.CheckNow(ctx)
		}
	}
}
