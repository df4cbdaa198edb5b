package webfetcher_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inquiryos/inquiry-os/internal/clients/webfetcher"
	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

func TestValidateURL_RejectsNonHTTPScheme(t *testing.T) {
	err := webfetcher.ValidateURL("ftp://example.com/file")
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, apierr.KindUnsafeURL, apiErr.Kind)
}

func TestValidateURL_RejectsLocalhost(t *testing.T) {
	err := webfetcher.ValidateURL("http://localhost/secret")
	require.Error(t, err)
}

func TestValidateURL_RejectsPrivateIPLiteral(t *testing.T) {
	err := webfetcher.ValidateURL("http://127.0.0.1/secret")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Private/local IP URLs are not allowed.")
}

func TestValidateURL_RejectsLinkLocalAndReservedRanges(t *testing.T) {
	for _, raw := range []string{
		"http://169.254.1.1/",
		"http://10.0.0.5/",
		"http://0.0.0.0/",
	} {
		err := webfetcher.ValidateURL(raw)
		require.Error(t, err, raw)
	}
}

func TestValidateURL_AcceptsPublicHost(t *testing.T) {
	err := webfetcher.ValidateURL("https://example.com/articles/overview")
	require.NoError(t, err)
}

func TestExtractText_StripsNoisySubtrees(t *testing.T) {
	html := `<html><head><style>body{color:red}</style></head>
<body>
<header>Site Nav</header>
<script>alert('x')</script>
<main><p>Hydration keeps the body functioning well.</p></main>
<footer>Copyright</footer>
</body></html>`

	text := webfetcher.ExtractText(html)
	require.Contains(t, text, "Hydration keeps the body functioning well.")
	require.NotContains(t, text, "Site Nav")
	require.NotContains(t, text, "alert")
	require.NotContains(t, text, "Copyright")
}

func TestExtractText_CollapsesWhitespace(t *testing.T) {
	html := "<p>one   two\n\nthree</p>"
	require.Equal(t, "one two three", webfetcher.ExtractText(html))
}

func TestBasicSummary_TruncatesToMaxChars(t *testing.T) {
	text := strings.Repeat("a", 2000)
	summary := webfetcher.BasicSummary(text, 900)
	require.Len(t, summary, 900)
}

func TestBasicSummary_ShortTextUnchanged(t *testing.T) {
	require.Equal(t, "short text", webfetcher.BasicSummary("  short text  ", 900))
}
