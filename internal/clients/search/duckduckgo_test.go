package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleResultsPage = `<html><body>
<div class="results">
  <a class="result__a" href="https://example.com/hydration">Benefits of Hydration</a>
  <a class="result__snippet" href="https://example.com/ignored">not a result link</a>
  <a class="result__a" href="https://example.com/water-intake">Daily Water Intake Guide</a>
</div>
</body></html>`

func TestParseResultLinks_ExtractsAnchorsWithResultClass(t *testing.T) {
	results, err := parseResultLinks(sampleResultsPage, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "Benefits of Hydration", results[0].Title)
	require.Equal(t, "https://example.com/hydration", results[0].URL)
	require.Equal(t, "Daily Water Intake Guide", results[1].Title)
}

func TestParseResultLinks_RespectsLimit(t *testing.T) {
	results, err := parseResultLinks(sampleResultsPage, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestHasClass_MatchesAmongMultipleClasses(t *testing.T) {
	require.True(t, hasClass("result__a js-result-title", "result__a"))
	require.False(t, hasClass("result__snippet", "result__a"))
}

func TestNewDuckDuckGoClient_ReportsProviderID(t *testing.T) {
	client := NewDuckDuckGoClient()
	require.Equal(t, duckduckgoName, client.ProviderID())
}
