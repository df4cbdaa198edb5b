package orchestrator

import "strings"

// derivePlan is a pure, rule-based stand-in for an LLM planner: it expands
// a research query into a small ordered list of sub-questions using fixed
// templates. No I/O, no model call — the planner stage is synchronous.
func derivePlan(query string) []string {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	return []string{
		"What is " + q + "?",
		"What are the most important factors or considerations around " + q + "?",
		"What are the risks, tradeoffs, or open questions related to " + q + "?",
	}
}
