package repos

import (
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

// Store bundles every repository the orchestrator needs. Handlers and the
// orchestrator depend on this, never on *gorm.DB directly.
type Store struct {
	Runs    RunRepo
	Steps   StepRepo
	Sources SourceRepo
	Answers AnswerRepo
	Events  EventRepo
}

func NewStore(db *gorm.DB, log *logger.Logger) *Store {
	return &Store{
		Runs:    NewRunRepo(db, log),
		Steps:   NewStepRepo(db, log),
		Sources: NewSourceRepo(db, log),
		Answers: NewAnswerRepo(db, log),
		Events:  NewEventRepo(db, log),
	}
}
