package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

type SourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sources []*research.Source) ([]*research.Source, error)
	ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*research.Source, error)
	UpdateContent(ctx context.Context, tx *gorm.DB, id uuid.UUID, rawContent, summary string) error
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{db: db, log: baseLog.With("repo", "SourceRepo")}
}

func (r *sourceRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sourceRepo) Create(ctx context.Context, tx *gorm.DB, sources []*research.Source) ([]*research.Source, error) {
	if len(sources) == 0 {
		return sources, nil
	}
	for _, s := range sources {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}
	if err := r.tx(tx).WithContext(ctx).Create(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *sourceRepo) ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*research.Source, error) {
	var sources []*research.Source
	err := r.tx(tx).WithContext(ctx).Where("run_id = ?", runID).Order("created_at ASC").Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *sourceRepo) UpdateContent(ctx context.Context, tx *gorm.DB, id uuid.UUID, rawContent, summary string) error {
	return r.tx(tx).WithContext(ctx).Model(&research.Source{}).Where("id = ?", id).Updates(map[string]interface{}{
		"raw_content": rawContent,
		"summary":     summary,
	}).Error
}
