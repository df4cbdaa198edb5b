package research

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Source is one fetched-and-summarized web page gathered for a Run.
type Source struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"run_id"`
	URL             string         `gorm:"column:url;type:text;not null" json:"url"`
	Title           string         `gorm:"column:title;type:text;not null;default:''" json:"title"`
	RawContent      string         `gorm:"column:raw_content;type:text" json:"raw_content,omitempty"`
	Summary         string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	RelevanceScore  *float64       `gorm:"column:relevance_score" json:"relevance_score,omitempty"`
	ExtraMetadata   datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time      `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
}

func (Source) TableName() string { return "sources" }
