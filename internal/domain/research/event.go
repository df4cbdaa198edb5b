package research

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

type ExecutionMode string

const (
	ModeDummy ExecutionMode = "dummy"
	ModeReal  ExecutionMode = "real"
)

// Event is an append-only ledger entry for one pipeline execute() attempt
// against a stage. This is the canonical audit trail for a run.
type Event struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	RunID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"run_id"`
	EventType    EventType     `gorm:"column:event_type;type:varchar(20);not null" json:"event_type"`
	Mode         ExecutionMode `gorm:"column:mode;type:varchar(20);not null" json:"mode"`
	Stage        string        `gorm:"column:stage;type:varchar(50)" json:"stage,omitempty"`
	DurationMS   *int64        `gorm:"column:duration_ms" json:"duration_ms,omitempty"`
	ErrorMessage string        `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time     `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
}

func (Event) TableName() string { return "pipeline_events" }
