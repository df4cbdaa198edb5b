package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/clients/webfetcher"
	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

const readerConcurrency = 4

// RunSearch calls SearchClient and persists one Source per result.
func (o *Orchestrator) RunSearch(ctx context.Context, runID uuid.UUID, limit int) (*research.Step, error) {
	if _, err := o.Get(ctx, runID); err != nil {
		return nil, err
	}
	if err := o.checkPredecessor(ctx, runID, research.StepPlanner, "Planner step missing; cannot run search."); err != nil {
		return nil, err
	}
	if err := o.checkNotAlreadyRun(ctx, runID, research.StepSearcher, "Search has already been run for this research run."); err != nil {
		return nil, err
	}

	run, err := o.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	startedAt := o.clock.Now()
	results, err := o.search.Search(ctx, run.Query, limit)
	if err != nil {
		return nil, err
	}

	sources := make([]*research.Source, 0, len(results))
	for _, r := range results {
		metadata, _ := marshalJSON(map[string]any{"provider": o.search.ProviderID()})
		sources = append(sources, &research.Source{
			ID:            uuid.New(),
			RunID:         runID,
			URL:           r.URL,
			Title:         r.Title,
			ExtraMetadata: metadata,
		})
	}

	output, err := marshalJSON(map[string]any{"result_count": len(results), "provider": o.search.ProviderID()})
	if err != nil {
		return nil, apierr.Internal("search_output_encode_failed", err)
	}

	return o.commitStage(ctx, runID, research.StepSearcher, startedAt, output, sources, nil)
}

// RunDummySearch produces three canned Sources derived from the query,
// exercising the same preconditions and transactional contract as RunSearch.
func (o *Orchestrator) RunDummySearch(ctx context.Context, runID uuid.UUID) (*research.Step, error) {
	if _, err := o.Get(ctx, runID); err != nil {
		return nil, err
	}
	if err := o.checkPredecessor(ctx, runID, research.StepPlanner, "Planner step missing; cannot run search."); err != nil {
		return nil, err
	}
	if err := o.checkNotAlreadyRun(ctx, runID, research.StepSearcher, "Search has already been run for this research run."); err != nil {
		return nil, err
	}

	run, err := o.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	startedAt := o.clock.Now()

	slug := slugify(run.Query)
	titles := []string{"Overview", "Deep Dive", "Expert Analysis"}
	sources := make([]*research.Source, 0, len(titles))
	for _, t := range titles {
		metadata, _ := marshalJSON(map[string]any{"provider": "dummy"})
		sources = append(sources, &research.Source{
			ID:            uuid.New(),
			RunID:         runID,
			URL:           fmt.Sprintf("https://example.com/articles/%s-%s", slug, slugify(t)),
			Title:         fmt.Sprintf("%s: %s", run.Query, t),
			ExtraMetadata: metadata,
		})
	}

	output, err := marshalJSON(map[string]any{"result_count": len(sources), "provider": "dummy"})
	if err != nil {
		return nil, apierr.Internal("search_output_encode_failed", err)
	}

	return o.commitStage(ctx, runID, research.StepSearcher, startedAt, output, sources, nil)
}

type readFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// RunReader fetches up to limit Sources missing raw_content, bounded to
// readerConcurrency in flight at a time. Per-URL failures never fail the
// step as a whole; only DB or cancellation errors propagate.
func (o *Orchestrator) RunReader(ctx context.Context, runID uuid.UUID, limit int) (*research.Step, error) {
	if _, err := o.Get(ctx, runID); err != nil {
		return nil, err
	}
	if err := o.checkPredecessor(ctx, runID, research.StepSearcher, "Run search before reader."); err != nil {
		return nil, err
	}
	if err := o.checkNotAlreadyRun(ctx, runID, research.StepReader, "Reader has already been run for this research run."); err != nil {
		return nil, err
	}

	allSources, err := o.store.Sources.ListByRun(ctx, nil, runID)
	if err != nil {
		return nil, apierr.Internal("list_sources_failed", err)
	}
	if limit <= 0 {
		limit = 5
	}

	pending := make([]*research.Source, 0, len(allSources))
	for _, s := range allSources {
		if s.RawContent == "" {
			pending = append(pending, s)
		}
		if len(pending) >= limit {
			break
		}
	}

	startedAt := o.clock.Now()

	type readResult struct {
		source     *research.Source
		rawContent string
		summary    string
		failure    *readFailure
	}

	results := make([]readResult, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readerConcurrency)
	var mu sync.Mutex

	for i, s := range pending {
		i, s := i, s
		g.Go(func() error {
			page, fetchErr := o.fetcher.Fetch(gctx, s.URL)
			mu.Lock()
			defer mu.Unlock()
			if fetchErr != nil {
				results[i] = readResult{source: s, failure: &readFailure{URL: s.URL, Error: fetchErr.Error()}}
				return nil
			}
			text := webfetcher.ExtractText(page.HTML)
			if text == "" {
				results[i] = readResult{source: s, failure: &readFailure{URL: s.URL, Error: "no extractable text"}}
				return nil
			}
			results[i] = readResult{
				source:     s,
				rawContent: truncateRunes(text, 20_000),
				summary:    webfetcher.BasicSummary(text, 900),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apierr.Internal("reader_fanout_failed", err)
	}

	readCount := 0
	failed := make([]readFailure, 0)
	for _, r := range results {
		if r.failure != nil {
			failed = append(failed, *r.failure)
			continue
		}
		if err := o.store.Sources.UpdateContent(ctx, nil, r.source.ID, r.rawContent, r.summary); err != nil {
			return nil, apierr.Internal("update_source_content_failed", err)
		}
		readCount++
	}

	truncatedFailed := failed
	if len(truncatedFailed) > 10 {
		truncatedFailed = truncatedFailed[:10]
	}

	output, err := marshalJSON(map[string]any{
		"attempted":    len(pending),
		"read_count":   readCount,
		"failed_count": len(failed),
		"failed":       truncatedFailed,
	})
	if err != nil {
		return nil, apierr.Internal("reader_output_encode_failed", err)
	}

	return o.commitStage(ctx, runID, research.StepReader, startedAt, output, nil, nil)
}

// RunDummyReader stamps canned raw/summary text on every Source for the run.
func (o *Orchestrator) RunDummyReader(ctx context.Context, runID uuid.UUID) (*research.Step, error) {
	if _, err := o.Get(ctx, runID); err != nil {
		return nil, err
	}
	if err := o.checkPredecessor(ctx, runID, research.StepSearcher, "Run search before reader."); err != nil {
		return nil, err
	}
	if err := o.checkNotAlreadyRun(ctx, runID, research.StepReader, "Reader has already been run for this research run."); err != nil {
		return nil, err
	}

	sources, err := o.store.Sources.ListByRun(ctx, nil, runID)
	if err != nil {
		return nil, apierr.Internal("list_sources_failed", err)
	}
	startedAt := o.clock.Now()

	for _, s := range sources {
		raw := fmt.Sprintf("This is canned reference content about %s, standing in for a real fetched page.", s.Title)
		summary := fmt.Sprintf("Canned summary of %s.", s.Title)
		if err := o.store.Sources.UpdateContent(ctx, nil, s.ID, raw, summary); err != nil {
			return nil, apierr.Internal("update_source_content_failed", err)
		}
	}

	output, err := marshalJSON(map[string]any{"read_count": len(sources)})
	if err != nil {
		return nil, apierr.Internal("reader_output_encode_failed", err)
	}

	return o.commitStage(ctx, runID, research.StepReader, startedAt, output, nil, nil)
}

// checkPredecessor raises InvalidState if the required stage is absent.
func (o *Orchestrator) checkPredecessor(ctx context.Context, runID uuid.UUID, stepType research.StepType, message string) error {
	has, err := o.hasStepType(ctx, runID, stepType)
	if err != nil {
		return apierr.Internal("precondition_check_failed", err)
	}
	if !has {
		return apierr.InvalidState("predecessor_missing", fmt.Errorf("%s", message))
	}
	return nil
}

// checkNotAlreadyRun raises InvalidState if the stage has already committed.
func (o *Orchestrator) checkNotAlreadyRun(ctx context.Context, runID uuid.UUID, stepType research.StepType, message string) error {
	has, err := o.hasStepType(ctx, runID, stepType)
	if err != nil {
		return apierr.Internal("precondition_check_failed", err)
	}
	if has {
		return apierr.InvalidState("stage_already_run", fmt.Errorf("%s", message))
	}
	return nil
}

// commitStage persists the new Step and any produced Sources in a single
// transaction, together with the run's status transition. A non-planner
// stage moves a pending run to running; a synthesizer commit moves it to
// completed.
func (o *Orchestrator) commitStage(ctx context.Context, runID uuid.UUID, stepType research.StepType, startedAt time.Time, output datatypes.JSON, sources []*research.Source, answer *research.Answer) (*research.Step, error) {
	completedAt := o.clock.Now()
	var step *research.Step

	err := o.db.Transaction(func(tx *gorm.DB) error {
		idx, err := o.nextStepIndex(ctx, tx, runID)
		if err != nil {
			return err
		}
		step = &research.Step{
			ID:          uuid.New(),
			RunID:       runID,
			StepIndex:   idx,
			StepType:    stepType,
			Status:      research.StepCompleted,
			StartedAt:   &startedAt,
			CompletedAt: &completedAt,
			Output:      output,
		}
		if err := tx.Create(step).Error; err != nil {
			return err
		}
		if len(sources) > 0 {
			if _, err := o.store.Sources.Create(ctx, tx, sources); err != nil {
				return err
			}
		}
		if answer != nil {
			if _, err := o.store.Answers.Upsert(ctx, tx, answer); err != nil {
				return err
			}
		}

		run, err := o.store.Runs.GetByID(ctx, tx, runID)
		if err != nil {
			return err
		}
		if stepType == research.StepSynthesizer {
			return o.store.Runs.UpdateStatus(ctx, tx, runID, research.RunCompleted, "")
		}
		if run.Status == research.RunPending {
			return o.store.Runs.UpdateStatus(ctx, tx, runID, research.RunRunning, "")
		}
		return nil
	})
	if err != nil {
		return nil, apierr.Internal("commit_stage_failed", err)
	}
	return step, nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+32)
			lastDash = false
		default:
			if !lastDash && len(out) > 0 {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "topic"
	}
	return string(out)
}
