package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *research.Event) (*research.Event, error)
	ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*research.Event, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, event *research.Event) (*research.Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := r.tx(tx).WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepo) ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*research.Event, error) {
	var events []*research.Event
	err := r.tx(tx).WithContext(ctx).Where("run_id = ?", runID).Order("created_at ASC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
