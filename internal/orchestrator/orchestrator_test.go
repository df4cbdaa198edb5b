package orchestrator_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/inquiryos/inquiry-os/internal/clients/llm"
	"github.com/inquiryos/inquiry-os/internal/clients/search"
	"github.com/inquiryos/inquiry-os/internal/clients/webfetcher"
	"github.com/inquiryos/inquiry-os/internal/clock"
	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/orchestrator"
	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
	"github.com/inquiryos/inquiry-os/internal/repos"
	"github.com/inquiryos/inquiry-os/internal/repos/testutil"
)

func unmarshalJSON(data datatypes.JSON, v any) error {
	return json.Unmarshal(data, v)
}

// scriptedLLM returns a fixed completion every call, for deterministic
// synthesizer tests.
type scriptedLLM struct {
	completion string
	err        error
}

func (s *scriptedLLM) ProviderName() string { return "scripted" }
func (s *scriptedLLM) ModelName() string    { return "scripted-model" }
func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return s.completion, s.err
}

// failingSearch always returns a Transport error, for the failure-path test.
type failingSearch struct{}

func (failingSearch) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	return nil, apierr.Transport("search_unavailable", context.DeadlineExceeded)
}
func (failingSearch) ProviderID() string { return "failing" }

func newTestOrchestrator(tb testing.TB, llmClient llm.Client, searchClient search.Client) *orchestrator.Orchestrator {
	tb.Helper()
	db := testutil.DB(tb)
	log := testutil.NewLogger(tb)
	store := repos.NewStore(db, log)
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Step = time.Millisecond
	if searchClient == nil {
		searchClient = search.NewDuckDuckGoClient()
	}
	if llmClient == nil {
		llmClient = llm.NewDummyClient("dummy-model")
	}
	return orchestrator.New(db, store, c, searchClient, webfetcher.New(), llmClient, log)
}

func TestCreate_SeedsPendingRunWithPlannerStep(t *testing.T) {
	orch := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	run, err := orch.Create(ctx, "benefits of hydration", "")
	require.NoError(t, err)
	require.Equal(t, research.RunPending, run.Status)

	detail, err := orch.GetDetail(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, detail.Steps, 1)
	require.Equal(t, research.StepPlanner, detail.Steps[0].StepType)
	require.Equal(t, 0, detail.Steps[0].StepIndex)
	require.Equal(t, research.StepCompleted, detail.Steps[0].Status)
}

func TestCreate_RejectsEmptyQuery(t *testing.T) {
	orch := newTestOrchestrator(t, nil, nil)
	_, err := orch.Create(context.Background(), "", "")
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, apierr.KindInvalidState, apiErr.Kind)
}

func TestExecuteDummy_ProducesCompleteRunWithContiguousStepIndices(t *testing.T) {
	orch := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	run, err := orch.Create(ctx, "benefits of hydration", "")
	require.NoError(t, err)

	detail, err := orch.Execute(ctx, run.ID, research.ModeDummy)
	require.NoError(t, err)
	require.Equal(t, research.RunCompleted, detail.Run.Status)

	require.Len(t, detail.Steps, 4)
	wantTypes := []research.StepType{research.StepPlanner, research.StepSearcher, research.StepReader, research.StepSynthesizer}
	for i, step := range detail.Steps {
		require.Equal(t, i, step.StepIndex)
		require.Equal(t, wantTypes[i], step.StepType)
		require.Equal(t, research.StepCompleted, step.Status)
	}

	require.Len(t, detail.Sources, 3)
	for _, s := range detail.Sources {
		require.NotEmpty(t, s.Summary)
		require.Contains(t, s.URL, "example.com")
	}

	require.NotNil(t, detail.Answer)

	require.Len(t, detail.Events, 2)
	require.Equal(t, research.EventStarted, detail.Events[0].EventType)
	require.Equal(t, research.EventCompleted, detail.Events[1].EventType)
	require.GreaterOrEqual(t, *detail.Events[1].DurationMS, int64(0))
}

func TestExecuteDummy_IsIdempotent(t *testing.T) {
	orch := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	run, err := orch.Create(ctx, "benefits of hydration", "")
	require.NoError(t, err)

	_, err = orch.Execute(ctx, run.ID, research.ModeDummy)
	require.NoError(t, err)

	detail, err := orch.Execute(ctx, run.ID, research.ModeDummy)
	require.NoError(t, err)
	require.Len(t, detail.Steps, 4, "re-executing a completed run must not create duplicate steps")
	require.Len(t, detail.Events, 4, "idempotent execute still records a fresh started/completed pair")
}

func TestSearchDummy_RejectsDuplicateInvocation(t *testing.T) {
	orch := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	run, err := orch.Create(ctx, "benefits of hydration", "")
	require.NoError(t, err)

	_, err = orch.RunDummySearch(ctx, run.ID)
	require.NoError(t, err)

	_, err = orch.RunDummySearch(ctx, run.ID)
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, apierr.KindInvalidState, apiErr.Kind)
	require.Contains(t, err.Error(), "Search has already been run for this research run.")
}

func TestRunSearch_Failure_LeavesNoSearcherStepAndMarksRunFailed(t *testing.T) {
	orch := newTestOrchestrator(t, nil, failingSearch{})
	ctx := context.Background()

	run, err := orch.Create(ctx, "benefits of hydration", "")
	require.NoError(t, err)

	_, err = orch.Execute(ctx, run.ID, research.ModeReal)
	require.Error(t, err)

	detail, detailErr := orch.GetDetail(ctx, run.ID)
	require.NoError(t, detailErr)
	require.Equal(t, research.RunFailed, detail.Run.Status)
	require.NotEmpty(t, detail.Run.ErrorMessage)

	for _, s := range detail.Steps {
		require.NotEqual(t, research.StepSearcher, s.StepType, "no searcher step should be committed on search failure")
	}

	require.Len(t, detail.Events, 2)
	require.Equal(t, research.EventStarted, detail.Events[0].EventType)
	require.Equal(t, research.EventFailed, detail.Events[1].EventType)
	require.Equal(t, "execute_pipeline", detail.Events[1].Stage)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, apierr.KindInternal, apiErr.Kind, "execute must map a Transport stage failure onto the {404,409,500} set, not surface 502")
	require.Equal(t, 500, apiErr.Status)
}

func TestRunSynthesis_ParseFailureDegradesGracefully(t *testing.T) {
	orch := newTestOrchestrator(t, &scriptedLLM{completion: "not json"}, nil)
	ctx := context.Background()

	run, err := orch.Create(ctx, "benefits of hydration", "")
	require.NoError(t, err)
	_, err = orch.RunDummySearch(ctx, run.ID)
	require.NoError(t, err)
	_, err = orch.RunDummyReader(ctx, run.ID)
	require.NoError(t, err)

	step, err := orch.RunSynthesis(ctx, run.ID)
	require.NoError(t, err, "parse failures degrade locally; the stage still succeeds")

	var output map[string]any
	require.NoError(t, unmarshalJSON(step.Output, &output))
	require.Equal(t, "Failed to parse model output as JSON.", output["summary"])
	require.InDelta(t, 0.2, output["confidence"], 0.0001)

	meta, ok := output["_meta"].(map[string]any)
	require.True(t, ok)
	require.NotNil(t, meta["parse_error"])

	run2, err := orch.Get(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, research.RunCompleted, run2.Status)
}

func TestRunSynthesis_MissingCitationsCapsConfidence(t *testing.T) {
	completion := `{
		"summary": "Hydration supports many bodily functions.",
		"key_points": ["Water regulates body temperature", "Dehydration impairs cognition [1]"],
		"risks": [],
		"recommendation": "Drink water regularly.",
		"confidence": 0.9
	}`
	orch := newTestOrchestrator(t, &scriptedLLM{completion: completion}, nil)
	ctx := context.Background()

	run, err := orch.Create(ctx, "benefits of hydration", "")
	require.NoError(t, err)
	_, err = orch.RunDummySearch(ctx, run.ID)
	require.NoError(t, err)
	_, err = orch.RunDummyReader(ctx, run.ID)
	require.NoError(t, err)

	step, err := orch.RunSynthesis(ctx, run.ID)
	require.NoError(t, err)

	var output map[string]any
	require.NoError(t, unmarshalJSON(step.Output, &output))
	require.LessOrEqual(t, output["confidence"].(float64), 0.3)

	warnings, ok := output["_warnings"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, warnings)
	first := warnings[0].(map[string]any)
	require.Equal(t, "missing_citations", first["type"])
	fields, ok := first["fields"].([]any)
	require.True(t, ok)
	require.Contains(t, fields, "key_points[0]")
}

func TestGetState_ProjectsPendingForUnstartedStages(t *testing.T) {
	orch := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	run, err := orch.Create(ctx, "benefits of hydration", "")
	require.NoError(t, err)

	state, err := orch.GetState(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, research.StepCompleted, state.Steps[research.StepPlanner].Status)
	require.Equal(t, research.StepPending, state.Steps[research.StepSearcher].Status)
	require.Equal(t, research.StepPending, state.Steps[research.StepReader].Status)
	require.Equal(t, research.StepPending, state.Steps[research.StepSynthesizer].Status)
	require.Equal(t, 0, state.SourceCount)
}
