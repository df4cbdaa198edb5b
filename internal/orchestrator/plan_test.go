package orchestrator

import "testing"

func TestDerivePlan_ProducesThreeSubQuestions(t *testing.T) {
	got := derivePlan("benefits of hydration")
	if len(got) != 3 {
		t.Fatalf("expected 3 sub-questions, got %d", len(got))
	}
	for _, q := range got {
		if q == "" {
			t.Fatalf("sub-question must not be empty")
		}
	}
}

func TestDerivePlan_EmptyQueryYieldsNil(t *testing.T) {
	got := derivePlan("   ")
	if got != nil {
		t.Fatalf("expected nil for blank query, got %v", got)
	}
}
