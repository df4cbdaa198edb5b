package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

type AnswerRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, answer *research.Answer) (*research.Answer, error)
	GetByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) (*research.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (r *answerRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Upsert replaces the single Answer a Run may have: a second write for the
// same run overwrites the prior answer rather than accumulating history.
func (r *answerRepo) Upsert(ctx context.Context, tx *gorm.DB, answer *research.Answer) (*research.Answer, error) {
	transaction := r.tx(tx)
	existing, err := r.GetByRun(ctx, transaction, answer.RunID)
	switch err {
	case nil:
		answer.ID = existing.ID
		if err := transaction.WithContext(ctx).Model(&research.Answer{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"content":   answer.Content,
			"citations": answer.Citations,
		}).Error; err != nil {
			return nil, err
		}
		return answer, nil
	case gorm.ErrRecordNotFound:
		if answer.ID == uuid.Nil {
			answer.ID = uuid.New()
		}
		if err := transaction.WithContext(ctx).Create(answer).Error; err != nil {
			return nil, err
		}
		return answer, nil
	default:
		return nil, err
	}
}

func (r *answerRepo) GetByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) (*research.Answer, error) {
	var answer research.Answer
	err := r.tx(tx).WithContext(ctx).Where("run_id = ?", runID).First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}
