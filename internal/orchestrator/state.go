package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

// GetState derives a per-stage status snapshot and source-content counters
// from the run's persisted rows, without touching the run's own status
// column interpretation.
func (o *Orchestrator) GetState(ctx context.Context, runID uuid.UUID) (*StateSnapshot, error) {
	run, err := o.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	steps, err := o.store.Steps.ListByRun(ctx, nil, runID)
	if err != nil {
		return nil, apierr.Internal("list_steps_failed", err)
	}
	sources, err := o.store.Sources.ListByRun(ctx, nil, runID)
	if err != nil {
		return nil, apierr.Internal("list_sources_failed", err)
	}

	stepByType := make(map[research.StepType]*research.Step)
	for _, s := range steps {
		existing, ok := stepByType[s.StepType]
		if !ok || s.StepIndex > existing.StepIndex {
			stepByType[s.StepType] = s
		}
	}

	stateByType := make(map[research.StepType]StepState, len(research.StageOrder))
	for _, stageType := range research.StageOrder {
		s, ok := stepByType[stageType]
		if !ok {
			stateByType[stageType] = StepState{Status: research.StepPending}
			continue
		}
		stateByType[stageType] = StepState{
			Status:       s.Status,
			StartedAt:    s.StartedAt,
			CompletedAt:  s.CompletedAt,
			ErrorMessage: s.ErrorMessage,
		}
	}

	sourcesWithSummary := 0
	for _, s := range sources {
		if s.Summary != "" {
			sourcesWithSummary++
		}
	}

	return &StateSnapshot{
		RunID:              run.ID,
		Status:             run.Status,
		Steps:              stateByType,
		SourceCount:        len(sources),
		SourcesWithSummary: sourcesWithSummary,
	}, nil
}
