package research

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Answer is the single synthesized, cited response for a Run. A Run has at
// most one Answer — writing another for the same Run overwrites it in place.
type Answer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_answers_run_id" json:"run_id"`
	Content   string         `gorm:"column:content;type:text;not null" json:"content"`
	Citations datatypes.JSON `gorm:"column:citations" json:"citations,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
}

func (Answer) TableName() string { return "answers" }
