package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

const (
	duckduckgoURL  = "https://duckduckgo.com/html/"
	duckduckgoName = "duckduckgo_html"
)

// DuckDuckGoClient scrapes the no-JS HTML results page, since DuckDuckGo's
// API requires a commercial key this project doesn't carry.
type DuckDuckGoClient struct {
	httpClient *http.Client
}

func NewDuckDuckGoClient() *DuckDuckGoClient {
	return &DuckDuckGoClient{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (c *DuckDuckGoClient) ProviderID() string { return duckduckgoName }

func (c *DuckDuckGoClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	reqURL := duckduckgoURL + "?" + url.Values{"q": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apierr.Internal("search_request_build_failed", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierr.Transport("search_request_failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, apierr.Transport("search_request_failed", fmt.Errorf("duckduckgo returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5_000_000))
	if err != nil {
		return nil, apierr.Transport("search_response_read_failed", err)
	}

	results, err := parseResultLinks(string(body), limit)
	if err != nil {
		return nil, apierr.Parse("search_response_parse_failed", err)
	}
	return results, nil
}

// parseResultLinks walks the HTML tokenizer looking for <a class="result__a">
// anchors, the same selector the Python implementation scrapes.
func parseResultLinks(document string, limit int) ([]Result, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(document))
	var results []Result

	for {
		if limit > 0 && len(results) >= limit {
			break
		}
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if err := tokenizer.Err(); err != nil && err != io.EOF {
				return results, err
			}
			break
		}
		if tt != html.StartTagToken {
			continue
		}
		token := tokenizer.Token()
		if token.Data != "a" {
			continue
		}
		href, class := "", ""
		for _, attr := range token.Attr {
			switch attr.Key {
			case "href":
				href = attr.Val
			case "class":
				class = attr.Val
			}
		}
		if !hasClass(class, "result__a") || href == "" {
			continue
		}
		title := strings.TrimSpace(textUntilClose(tokenizer, "a"))
		results = append(results, Result{Title: title, URL: href})
	}
	return results, nil
}

func hasClass(classAttr, want string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == want {
			return true
		}
	}
	return false
}

// textUntilClose accumulates text tokens until the matching close tag.
func textUntilClose(tokenizer *html.Tokenizer, tag string) string {
	var sb strings.Builder
	depth := 1
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		token := tokenizer.Token()
		switch tt {
		case html.StartTagToken:
			if token.Data == tag {
				depth++
			}
		case html.EndTagToken:
			if token.Data == tag {
				depth--
				if depth == 0 {
					return sb.String()
				}
			}
		case html.TextToken:
			sb.WriteString(token.Data)
		}
	}
	return sb.String()
}
