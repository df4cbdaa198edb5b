package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
)

// RunDetail is a run plus every entity it owns, for the *.../detail routes.
type RunDetail struct {
	Run     *research.Run
	Steps   []*research.Step
	Sources []*research.Source
	Answer  *research.Answer
	Events  []*research.Event
}

// StepState is the per-stage-type projection StateProjector produces.
type StepState struct {
	Status       research.StepStatus `json:"status"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// StateSnapshot is the §4.6 StateProjector output.
type StateSnapshot struct {
	RunID             uuid.UUID                            `json:"run_id"`
	Status            research.RunStatus                   `json:"status"`
	Steps             map[research.StepType]StepState       `json:"steps"`
	SourceCount       int                                  `json:"source_count"`
	SourcesWithSummary int                                  `json:"sources_with_summary"`
}
