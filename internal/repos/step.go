package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

type StepRepo interface {
	EnsureStep(ctx context.Context, tx *gorm.DB, runID uuid.UUID, stepType research.StepType, stepIndex int) (*research.Step, error)
	GetByRunAndType(ctx context.Context, tx *gorm.DB, runID uuid.UUID, stepType research.StepType) (*research.Step, error)
	ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*research.Step, error)
}

type stepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepRepo(db *gorm.DB, baseLog *logger.Logger) StepRepo {
	return &stepRepo{db: db, log: baseLog.With("repo", "StepRepo")}
}

func (r *stepRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// EnsureStep returns the existing step for (runID, stepType) if present,
// otherwise creates a fresh pending one.
func (r *stepRepo) EnsureStep(ctx context.Context, tx *gorm.DB, runID uuid.UUID, stepType research.StepType, stepIndex int) (*research.Step, error) {
	existing, err := r.GetByRunAndType(ctx, tx, runID, stepType)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	step := &research.Step{
		ID:        uuid.New(),
		RunID:     runID,
		StepIndex: stepIndex,
		StepType:  stepType,
		Status:    research.StepPending,
	}
	if err := r.tx(tx).WithContext(ctx).Create(step).Error; err != nil {
		return nil, err
	}
	return step, nil
}

func (r *stepRepo) GetByRunAndType(ctx context.Context, tx *gorm.DB, runID uuid.UUID, stepType research.StepType) (*research.Step, error) {
	var step research.Step
	err := r.tx(tx).WithContext(ctx).
		Where("run_id = ? AND step_type = ?", runID, stepType).
		First(&step).Error
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *stepRepo) ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*research.Step, error) {
	var steps []*research.Step
	err := r.tx(tx).WithContext(ctx).
		Where("run_id = ?", runID).
		Order("step_index ASC").
		Find(&steps).Error
	if err != nil {
		return nil, err
	}
	return steps, nil
}
