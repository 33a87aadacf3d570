package service

import (
	"context"
	"time"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"

	"github.com/google/uuid"
)

// HistoryRecorder is what command-sending services need from the history.
type HistoryRecorder interface {
	Record(ctx context.Context, e models.CommandHistoryEntry) error
}

// HistoryService keeps the last MaxHistoryEntries executed commands.
type HistoryService struct {
	repo  repository.HistoryRepo
	limit int
	log   *logger.Logger
}

func NewHistoryService(repo repository.HistoryRepo, log *logger.Logger) *HistoryService {
	return &HistoryService{repo: repo, limit: models.MaxHistoryEntries, log: logger.OrNop(log)}
}

func (h *HistoryService) Record(ctx context.Context, e models.CommandHistoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return h.repo.Add(ctx, e, h.limit)
}

// Recent lists entries newest first.
func (h *HistoryService) Recent(ctx context.Context) ([]models.CommandHistoryEntry, error) {
	return h.repo.List(ctx, h.limit)
}

func (h *HistoryService) Clear(ctx context.Context) error {
	if err := h.repo.Clear(ctx); err != nil {
		return err
	}
	h.log.Infow("command history cleared")
	return nil
}
