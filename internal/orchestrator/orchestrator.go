// Package orchestrator sequences the planner/searcher/reader/synthesizer
// pipeline stages, enforces their ordering preconditions, persists
// incremental state transactionally, and records the append-only
// PipelineEvent audit log.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/clients/llm"
	"github.com/inquiryos/inquiry-os/internal/clients/search"
	"github.com/inquiryos/inquiry-os/internal/clients/webfetcher"
	"github.com/inquiryos/inquiry-os/internal/clock"
	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
	"github.com/inquiryos/inquiry-os/internal/repos"
)

type Mode = research.ExecutionMode

const (
	ModeDummy = research.ModeDummy
	ModeReal  = research.ModeReal
)

var tracer = otel.Tracer("github.com/inquiryos/inquiry-os/internal/orchestrator")

// runStage opens a child span around one pipeline stage so traces carry a
// per-stage latency breakdown alongside the PipelineEvent outcome log.
func runStage(ctx context.Context, name string, runID uuid.UUID, mode Mode, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("run_id", runID.String()),
		attribute.String("mode", string(mode)),
	))
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

type Orchestrator struct {
	db    *gorm.DB
	store *repos.Store
	clock clock.Clock
	log   *logger.Logger

	search  search.Client
	fetcher webfetcher.Fetcher
	llm     llm.Client
}

func New(db *gorm.DB, store *repos.Store, c clock.Clock, searchClient search.Client, fetcher webfetcher.Fetcher, llmClient llm.Client, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		db:      db,
		store:   store,
		clock:   c,
		log:     log.With("component", "Orchestrator"),
		search:  searchClient,
		fetcher: fetcher,
		llm:     llmClient,
	}
}

// Create persists a new run in "pending" with a seeded, synchronously
// executed planner step at step_index 0.
func (o *Orchestrator) Create(ctx context.Context, query, title string) (*research.Run, error) {
	if query == "" {
		return nil, apierr.InvalidState("query_required", fmt.Errorf("query must not be empty"))
	}

	modelProvider := fmt.Sprintf("%s:%s", o.llm.ProviderName(), o.llm.ModelName())
	run := &research.Run{
		ID:            uuid.New(),
		Query:         query,
		Title:         title,
		Status:        research.RunPending,
		ModelProvider: modelProvider,
	}

	subQuestions := derivePlan(query)
	plannerOutput, err := marshalJSON(map[string]any{"sub_questions": subQuestions})
	if err != nil {
		return nil, apierr.Internal("planner_output_encode_failed", err)
	}

	err = o.db.Transaction(func(tx *gorm.DB) error {
		if _, err := o.store.Runs.Create(ctx, tx, run); err != nil {
			return err
		}
		now := o.clock.Now()
		step := &research.Step{
			ID:          uuid.New(),
			RunID:       run.ID,
			StepIndex:   0,
			StepType:    research.StepPlanner,
			Status:      research.StepCompleted,
			StartedAt:   &now,
			CompletedAt: &now,
			Output:      plannerOutput,
		}
		return tx.Create(step).Error
	})
	if err != nil {
		return nil, apierr.Internal("create_run_failed", err)
	}
	return run, nil
}

func (o *Orchestrator) Get(ctx context.Context, runID uuid.UUID) (*research.Run, error) {
	run, err := o.store.Runs.GetByID(ctx, nil, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("run_not_found", fmt.Errorf("research run not found"))
		}
		return nil, apierr.Internal("get_run_failed", err)
	}
	return run, nil
}

func (o *Orchestrator) GetDetail(ctx context.Context, runID uuid.UUID) (*RunDetail, error) {
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
	events, err := o.store.Events.ListByRun(ctx, nil, runID)
	if err != nil {
		return nil, apierr.Internal("list_events_failed", err)
	}
	answer, err := o.store.Answers.GetByRun(ctx, nil, runID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.Internal("get_answer_failed", err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		answer = nil
	}
	return &RunDetail{Run: run, Steps: steps, Sources: sources, Answer: answer, Events: events}, nil
}

func (o *Orchestrator) List(ctx context.Context, limit, offset int) ([]*research.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	runs, err := o.store.Runs.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, apierr.Internal("list_runs_failed", err)
	}
	return runs, nil
}

// hasStepType reports whether runID already has a committed step of the
// given type.
func (o *Orchestrator) hasStepType(ctx context.Context, runID uuid.UUID, stepType research.StepType) (bool, error) {
	_, err := o.store.Steps.GetByRunAndType(ctx, nil, runID, stepType)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (o *Orchestrator) nextStepIndex(ctx context.Context, tx *gorm.DB, runID uuid.UUID) (int, error) {
	steps, err := o.store.Steps.ListByRun(ctx, tx, runID)
	if err != nil {
		return 0, err
	}
	max := -1
	for _, s := range steps {
		if s.StepIndex > max {
			max = s.StepIndex
		}
	}
	return max + 1, nil
}

// Execute runs the pipeline to completion for the given mode, recording a
// started/terminal PipelineEvent pair and mapping any stage failure into
// the run's failed state.
func (o *Orchestrator) Execute(ctx context.Context, runID uuid.UUID, mode Mode) (*RunDetail, error) {
	if _, err := o.Get(ctx, runID); err != nil {
		return nil, err
	}

	startedAt := o.clock.Now()
	startedEvent := &research.Event{RunID: runID, EventType: research.EventStarted, Mode: mode}
	if _, err := o.store.Events.Create(ctx, nil, startedEvent); err != nil {
		return nil, apierr.Internal("record_started_event_failed", err)
	}

	var stage string
	var stageErr error
	if mode == ModeDummy {
		stage = "execute_dummy_pipeline"
		stageErr = o.executeDummyPipeline(ctx, runID, mode)
	} else {
		stage = "execute_pipeline"
		stageErr = o.executePipeline(ctx, runID, mode)
	}

	durationMS := o.clock.Now().Sub(startedAt).Milliseconds()

	if stageErr != nil {
		o.log.Error("pipeline execution failed", "run_id", runID, "stage", stage, "error", stageErr)

		if err := o.store.Runs.UpdateStatus(ctx, nil, runID, research.RunFailed, stageErr.Error()); err != nil {
			o.log.Error("failed to mark run failed", "run_id", runID, "error", err)
		}

		failedEvent := &research.Event{
			RunID:        runID,
			EventType:    research.EventFailed,
			Mode:         mode,
			Stage:        stage,
			DurationMS:   &durationMS,
			ErrorMessage: stageErr.Error(),
		}
		if _, err := o.store.Events.Create(ctx, nil, failedEvent); err != nil {
			o.log.Error("failed to record failed event", "run_id", runID, "error", err)
		}
		return nil, wrapExecuteError(stageErr)
	}

	completedEvent := &research.Event{
		RunID:      runID,
		EventType:  research.EventCompleted,
		Mode:       mode,
		Stage:      stage,
		DurationMS: &durationMS,
	}
	if _, err := o.store.Events.Create(ctx, nil, completedEvent); err != nil {
		return nil, apierr.Internal("record_completed_event_failed", err)
	}

	return o.GetDetail(ctx, runID)
}

func (o *Orchestrator) executeDummyPipeline(ctx context.Context, runID uuid.UUID, mode Mode) error {
	hasSearcher, err := o.hasStepType(ctx, runID, research.StepSearcher)
	if err != nil {
		return apierr.Internal("precondition_check_failed", err)
	}
	if !hasSearcher {
		if err := runStage(ctx, "searcher", runID, mode, func(ctx context.Context) error {
			_, err := o.RunDummySearch(ctx, runID)
			return err
		}); err != nil {
			return err
		}
	}
	hasReader, err := o.hasStepType(ctx, runID, research.StepReader)
	if err != nil {
		return apierr.Internal("precondition_check_failed", err)
	}
	if !hasReader {
		if err := runStage(ctx, "reader", runID, mode, func(ctx context.Context) error {
			_, err := o.RunDummyReader(ctx, runID)
			return err
		}); err != nil {
			return err
		}
	}
	hasSynth, err := o.hasStepType(ctx, runID, research.StepSynthesizer)
	if err != nil {
		return apierr.Internal("precondition_check_failed", err)
	}
	if !hasSynth {
		if err := runStage(ctx, "synthesizer", runID, mode, func(ctx context.Context) error {
			_, err := o.RunDummySynthesis(ctx, runID)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) executePipeline(ctx context.Context, runID uuid.UUID, mode Mode) error {
	hasSearcher, err := o.hasStepType(ctx, runID, research.StepSearcher)
	if err != nil {
		return apierr.Internal("precondition_check_failed", err)
	}
	if !hasSearcher {
		if err := runStage(ctx, "searcher", runID, mode, func(ctx context.Context) error {
			_, err := o.RunSearch(ctx, runID, 5)
			return err
		}); err != nil {
			return err
		}
	}
	hasReader, err := o.hasStepType(ctx, runID, research.StepReader)
	if err != nil {
		return apierr.Internal("precondition_check_failed", err)
	}
	if !hasReader {
		if err := runStage(ctx, "reader", runID, mode, func(ctx context.Context) error {
			_, err := o.RunReader(ctx, runID, 5)
			return err
		}); err != nil {
			return err
		}
	}
	hasSynth, err := o.hasStepType(ctx, runID, research.StepSynthesizer)
	if err != nil {
		return apierr.Internal("precondition_check_failed", err)
	}
	if !hasSynth {
		if err := runStage(ctx, "synthesizer", runID, mode, func(ctx context.Context) error {
			_, err := o.RunSynthesis(ctx, runID)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func marshalJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// wrapExecuteError is execute's single point mapping any stage failure onto
// the {404, 409, 500} status set it's allowed to return: NotFound and
// InvalidState pass through unchanged, everything else becomes Internal/500.
func wrapExecuteError(err error) error {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case apierr.KindNotFound, apierr.KindInvalidState:
			return err
		}
	}
	return apierr.Internal("pipeline_execution_failed", err)
}
