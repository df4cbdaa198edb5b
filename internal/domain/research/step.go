package research

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StepType string

const (
	StepPlanner     StepType = "planner"
	StepSearcher    StepType = "searcher"
	StepReader      StepType = "reader"
	StepSynthesizer StepType = "synthesizer"
)

// StageOrder is the fixed precondition chain every run's steps must follow.
var StageOrder = []StepType{StepPlanner, StepSearcher, StepReader, StepSynthesizer}

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Step is one stage's persisted execution record within a Run.
type Step struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID        uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_research_steps_run_type" json:"run_id"`
	StepIndex    int            `gorm:"column:step_index;not null" json:"step_index"`
	StepType     StepType       `gorm:"column:step_type;type:varchar(20);not null;uniqueIndex:uq_research_steps_run_type" json:"step_type"`
	Status       StepStatus     `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	StartedAt    *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ErrorMessage string         `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	Input        datatypes.JSON `gorm:"column:input" json:"input,omitempty"`
	Output       datatypes.JSON `gorm:"column:output" json:"output,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
}

func (Step) TableName() string { return "research_steps" }
