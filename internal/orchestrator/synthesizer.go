package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/inquiryos/inquiry-os/internal/clients/llm"
	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

const (
	evidenceBlockMax  = 1800
	evidenceTotalMax  = 14_000
	synthesisMaxToken = 900
)

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// synthesisPayload is the schema LLMClient output must conform to.
type synthesisPayload struct {
	Summary        string   `json:"summary"`
	KeyPoints      []string `json:"key_points"`
	Risks          []string `json:"risks"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
}

type synthesisWarning struct {
	Type          string   `json:"type"`
	Fields        []string `json:"fields,omitempty"`
	CoverageRatio float64  `json:"coverage_ratio,omitempty"`
}

// RunSynthesis builds an evidence context from every Source, asks LLMClient
// for a cited JSON answer, enforces citation coverage, and persists the
// Answer alongside the synthesizer Step.
func (o *Orchestrator) RunSynthesis(ctx context.Context, runID uuid.UUID) (*research.Step, error) {
	if _, err := o.Get(ctx, runID); err != nil {
		return nil, err
	}
	if err := o.checkPredecessor(ctx, runID, research.StepReader, "Run reader before synthesis."); err != nil {
		return nil, err
	}
	if err := o.checkNotAlreadyRun(ctx, runID, research.StepSynthesizer, "Synthesis has already been run for this research run."); err != nil {
		return nil, err
	}

	run, err := o.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	sources, err := o.store.Sources.ListByRun(ctx, nil, runID)
	if err != nil {
		return nil, apierr.Internal("list_sources_failed", err)
	}
	if len(sources) == 0 {
		return nil, apierr.InvalidState("no_sources", fmt.Errorf("No sources available for synthesis."))
	}

	startedAt := o.clock.Now()

	prompt := buildSynthesisPrompt(run.Query, sources)
	maxTokens := synthesisMaxToken
	raw, err := o.llm.Generate(ctx, prompt, llm.Options{MaxTokens: maxTokens})
	if err != nil {
		return nil, err
	}

	payload, parseErr := parseSynthesisPayload(raw)

	warnings := make([]synthesisWarning, 0)
	sourceCount := len(sources)

	missingFields := citationGaps(payload)
	if len(missingFields) > 0 {
		warnings = append(warnings, synthesisWarning{Type: "missing_citations", Fields: missingFields})
		if payload.Confidence > 0.3 {
			payload.Confidence = 0.3
		}
	}

	citedIndices := extractCitedIndices(payload, sourceCount)
	coverageRatio := 0.0
	if sourceCount > 0 {
		coverageRatio = float64(len(citedIndices)) / float64(sourceCount)
	}
	if sourceCount >= 3 && coverageRatio < 0.4 {
		warnings = append(warnings, synthesisWarning{Type: "low_source_coverage", CoverageRatio: coverageRatio})
		if payload.Confidence > 0.4 {
			payload.Confidence = 0.4
		}
	}

	outputMap := map[string]any{
		"summary":         payload.Summary,
		"key_points":      payload.KeyPoints,
		"risks":           payload.Risks,
		"recommendation":  payload.Recommendation,
		"confidence":      payload.Confidence,
		"_warnings":       warnings,
		"_meta": map[string]any{
			"raw_completion":       raw,
			"parse_error":          parseErr,
			"source_count":         sourceCount,
			"unique_sources_cited": len(citedIndices),
			"coverage_ratio":       coverageRatio,
		},
	}
	output, err := marshalJSON(outputMap)
	if err != nil {
		return nil, apierr.Internal("synthesis_output_encode_failed", err)
	}

	citations, err := marshalJSON(citedIndexList(citedIndices))
	if err != nil {
		return nil, apierr.Internal("citations_encode_failed", err)
	}
	answer := &research.Answer{
		ID:        uuid.New(),
		RunID:     runID,
		Content:   payload.Summary,
		Citations: citations,
	}

	return o.commitStage(ctx, runID, research.StepSynthesizer, startedAt, output, nil, answer)
}

// RunDummySynthesis emits a templated, fully cited answer listing every
// source, with no LLM call.
func (o *Orchestrator) RunDummySynthesis(ctx context.Context, runID uuid.UUID) (*research.Step, error) {
	if _, err := o.Get(ctx, runID); err != nil {
		return nil, err
	}
	if err := o.checkPredecessor(ctx, runID, research.StepReader, "Run reader before synthesis."); err != nil {
		return nil, err
	}
	if err := o.checkNotAlreadyRun(ctx, runID, research.StepSynthesizer, "Synthesis has already been run for this research run."); err != nil {
		return nil, err
	}

	run, err := o.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	sources, err := o.store.Sources.ListByRun(ctx, nil, runID)
	if err != nil {
		return nil, apierr.Internal("list_sources_failed", err)
	}
	if len(sources) == 0 {
		return nil, apierr.InvalidState("no_sources", fmt.Errorf("No sources available for synthesis."))
	}

	startedAt := o.clock.Now()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on %d sources, here is a summary answer for %q.\n", len(sources), run.Query)
	keyPoints := make([]string, 0, len(sources))
	for i, s := range sources {
		fmt.Fprintf(&sb, "[%d] %s — %s\n", i+1, s.Title, s.URL)
		keyPoints = append(keyPoints, fmt.Sprintf("%s is a relevant source. [%d]", s.Title, i+1))
	}

	outputMap := map[string]any{
		"summary":        sb.String(),
		"key_points":     keyPoints,
		"risks":          []string{},
		"recommendation": "This is a dummy recommendation generated without a live model call.",
		"confidence":     1.0,
		"_warnings":      []synthesisWarning{},
		"_meta": map[string]any{
			"raw_completion":       nil,
			"parse_error":          nil,
			"source_count":         len(sources),
			"unique_sources_cited": len(sources),
			"coverage_ratio":       1.0,
		},
	}
	output, err := marshalJSON(outputMap)
	if err != nil {
		return nil, apierr.Internal("synthesis_output_encode_failed", err)
	}

	indices := make([]int, len(sources))
	for i := range sources {
		indices[i] = i + 1
	}
	citations, err := marshalJSON(indices)
	if err != nil {
		return nil, apierr.Internal("citations_encode_failed", err)
	}
	answer := &research.Answer{
		ID:        uuid.New(),
		RunID:     runID,
		Content:   sb.String(),
		Citations: citations,
	}

	return o.commitStage(ctx, runID, research.StepSynthesizer, startedAt, output, nil, answer)
}

func buildSynthesisPrompt(query string, sources []*research.Source) string {
	var blocks strings.Builder
	total := 0
	for i, s := range sources {
		evidence := s.RawContent
		if evidence == "" {
			evidence = s.Summary
		}
		evidence = truncateRunes(evidence, evidenceBlockMax)
		block := fmt.Sprintf("[%d] %s\n%s\nEVIDENCE: %s\n\n", i+1, s.Title, s.URL, evidence)
		if total+len(block) > evidenceTotalMax {
			break
		}
		blocks.WriteString(block)
		total += len(block)
	}

	return fmt.Sprintf(`You are a careful research assistant. Answer the question using only the
evidence blocks below, citing sources inline as [n] for every key point and
risk you state.

QUESTION: %s

EVIDENCE:
%s

Respond with a single JSON object with exactly these keys:
{
  "summary": string,
  "key_points": [string, ...],
  "risks": [string, ...],
  "recommendation": string,
  "confidence": number between 0 and 1
}
Every entry in key_points and risks must include at least one inline
citation of the form [n] referring to the evidence block index.`, query, blocks.String())
}

// parseSynthesisPayload parses the LLM completion as JSON and validates it
// against the synthesis schema, substituting a fixed degraded payload on
// either failure.
func parseSynthesisPayload(raw string) (synthesisPayload, any) {
	var payload synthesisPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return degradedPayload(), err.Error()
	}
	if payload.Summary == "" && len(payload.KeyPoints) == 0 && payload.Recommendation == "" {
		return degradedPayload(), "completion did not match the expected synthesis schema"
	}
	if payload.Confidence < 0 || payload.Confidence > 1 {
		payload.Confidence = clampConfidence(payload.Confidence)
	}
	return payload, nil
}

func degradedPayload() synthesisPayload {
	return synthesisPayload{
		Summary:        "Failed to parse model output as JSON.",
		KeyPoints:      []string{},
		Risks:          []string{},
		Recommendation: "",
		Confidence:     0.2,
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// citationGaps returns "key_points[i]" / "risks[i]" labels for every entry
// lacking an inline [n] citation.
func citationGaps(payload synthesisPayload) []string {
	gaps := make([]string, 0)
	for i, kp := range payload.KeyPoints {
		if !citationPattern.MatchString(kp) {
			gaps = append(gaps, fmt.Sprintf("key_points[%d]", i))
		}
	}
	for i, r := range payload.Risks {
		if !citationPattern.MatchString(r) {
			gaps = append(gaps, fmt.Sprintf("risks[%d]", i))
		}
	}
	return gaps
}

// extractCitedIndices extracts all [n] integers referenced across
// key_points and risks that fall within [1, sourceCount].
func extractCitedIndices(payload synthesisPayload, sourceCount int) map[int]bool {
	cited := make(map[int]bool)
	consider := func(texts []string) {
		for _, t := range texts {
			for _, m := range citationPattern.FindAllStringSubmatch(t, -1) {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					continue
				}
				if n >= 1 && n <= sourceCount {
					cited[n] = true
				}
			}
		}
	}
	consider(payload.KeyPoints)
	consider(payload.Risks)
	return cited
}

func citedIndexList(cited map[int]bool) []int {
	indices := make([]int, 0, len(cited))
	for n := range cited {
		indices = append(indices, n)
	}
	return indices
}
