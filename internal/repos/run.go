package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

type RunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *research.Run) (*research.Run, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*research.Run, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*research.Run, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status research.RunStatus, errorMessage string) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type runRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return &runRepo{db: db, log: baseLog.With("repo", "RunRepo")}
}

func (r *runRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *runRepo) Create(ctx context.Context, tx *gorm.DB, run *research.Run) (*research.Run, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = research.RunPending
	}
	if err := r.tx(tx).WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *runRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*research.Run, error) {
	var run research.Run
	if err := r.tx(tx).WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*research.Run, error) {
	var runs []*research.Run
	q := r.tx(tx).WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *runRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status research.RunStatus, errorMessage string) error {
	updates := map[string]interface{}{"status": status, "error_message": errorMessage}
	return r.tx(tx).WithContext(ctx).Model(&research.Run{}).Where("id = ?", id).Updates(updates).Error
}

func (r *runRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.tx(tx).WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&research.Run{}).Error
}
