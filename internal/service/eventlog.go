package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeRange = errors.New("'from' must be <= 'to'")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrInvalidLimit     = errors.New("limit must not be negative")
)

var knownEventTypes = map[string]bool{
	models.EventPairing:    true,
	models.EventConnection: true,
	models.EventTeleop:     true,
	models.EventVideo:      true,
	models.EventCommand:    true,
	models.EventError:      true,
}

// EventLogService reads the robot activity log.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// normalized returns f with UTC bounds and an upper-cased type, or a
// validation error.
func (f LogFilter) normalized() (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, ErrInvalidTimeRange
	}
	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if f.Type != "" && !knownEventTypes[f.Type] {
		return f, fmt.Errorf("%w: %q", ErrUnknownEventType, f.Type)
	}
	if f.Limit < 0 {
		return f, ErrInvalidLimit
	}
	return f, nil
}

// List returns matching events oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.RobotEvent, error) {
	f, err := f.normalized()
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, f.From, f.To, f.Type)
	if err != nil {
		return nil, err
	}
	if f.Limit > 0 && len(events) > f.Limit {
		events = events[len(events)-f.Limit:]
	}
	return events, nil
}

// recordEvent appends an activity log entry. Failures are logged and otherwise
// ignored: the activity log never blocks robot operations.
func recordEvent(ctx context.Context, repo repository.EventRepo, log *logger.Logger, typ, description string, meta map[string]any) {
	if repo == nil {
		return
	}
	ev := models.RobotEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: description,
	}
	if len(meta) > 0 {
		ev.Metadata = meta
	}
	if err := repo.Append(context.WithoutCancel(ctx), ev); err != nil && log != nil {
		log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}
