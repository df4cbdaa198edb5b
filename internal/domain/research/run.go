package research

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one research question's end-to-end pipeline execution.
type Run struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Query         string         `gorm:"column:query;type:text;not null" json:"query"`
	Title         string         `gorm:"column:title;type:varchar(255)" json:"title,omitempty"`
	Status        RunStatus      `gorm:"column:status;type:varchar(20);not null;default:pending;index" json:"status"`
	ModelProvider string         `gorm:"column:model_provider;type:varchar(100);not null;default:ollama:llama3" json:"model_provider"`
	ErrorMessage  string         `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Steps   []Step  `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"-"`
	Sources []Source `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"-"`
	Answer  *Answer  `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Run) TableName() string { return "research_runs" }
