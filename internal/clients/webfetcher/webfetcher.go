// Package webfetcher safely downloads a URL's HTML with SSRF guards and a
// size cap, then reduces it to plain text and a bounded summary.
package webfetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

var (
	errOnlyHTTP  = errors.New("only http/https URLs are allowed")
	errNoHost    = errors.New("URL must include a hostname")
	errLocalhost = errors.New("localhost URLs are not allowed")
	errPrivateIP = errors.New("Private/local IP URLs are not allowed.")
	errTooLarge  = errors.New("response too large")
)

func errStatus(code int) error {
	return fmt.Errorf("unexpected status code %d", code)
}

const (
	maxBytes  = 1_000_000
	userAgent = "InquiryOS/0.1 (Research Reader)"
)

var noisyTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"header": true, "footer": true, "nav": true, "aside": true,
}

type Page struct {
	URL        string
	StatusCode int
	HTML       string
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

type httpFetcher struct {
	client *http.Client
}

func New() Fetcher {
	return &httpFetcher{client: &http.Client{Timeout: 10 * time.Second}}
}

// NewWithClient lets callers (tests, or a rate-limited wrapper) inject a
// pre-configured *http.Client.
func NewWithClient(client *http.Client) Fetcher {
	return &httpFetcher{client: client}
}

func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if err := ValidateURL(rawURL); err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, apierr.Internal("fetch_request_build_failed", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, apierr.Transport("fetch_failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Page{}, apierr.Transport("fetch_failed", errStatus(resp.StatusCode))
	}

	limited := io.LimitReader(resp.Body, maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return Page{}, apierr.Transport("fetch_failed", err)
	}
	if len(body) > maxBytes {
		return Page{}, apierr.Transport("response_too_large", errTooLarge)
	}

	return Page{URL: rawURL, StatusCode: 200, HTML: string(body)}, nil
}

// ValidateURL applies the WebFetcher's SSRF defenses before any network I/O.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apierr.UnsafeURL("invalid_url", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apierr.UnsafeURL("unsafe_scheme", errOnlyHTTP)
	}
	if parsed.Host == "" {
		return apierr.UnsafeURL("missing_host", errNoHost)
	}
	host := parsed.Hostname()
	if host == "localhost" {
		return apierr.UnsafeURL("localhost_not_allowed", errLocalhost)
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateOrLocal(ip) {
		return apierr.UnsafeURL("private_ip_not_allowed", errPrivateIP)
	}
	return nil
}

func isPrivateOrLocal(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() || ip.IsMulticast()
}

// ExtractText strips noisy subtrees and collapses whitespace, the Go
// equivalent of the reference implementation's BeautifulSoup pass.
func ExtractText(htmlDoc string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlDoc))
	var sb strings.Builder
	skipDepth := 0
	skipTag := ""

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		token := tokenizer.Token()
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if skipDepth > 0 {
				if token.Data == skipTag {
					skipDepth++
				}
				continue
			}
			if noisyTags[token.Data] {
				skipDepth = 1
				skipTag = token.Data
			}
		case html.EndTagToken:
			if skipDepth > 0 {
				if token.Data == skipTag {
					skipDepth--
				}
				continue
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.WriteString(token.Data)
				sb.WriteString(" ")
			}
		}
	}
	return collapseWhitespace(sb.String())
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.TrimSpace(strings.Join(fields, " "))
}

// BasicSummary returns the first maxChars of cleaned text.
func BasicSummary(text string, maxChars int) string {
	if text == "" {
		return ""
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxChars {
		return strings.TrimSpace(string(runes))
	}
	return strings.TrimSpace(string(runes[:maxChars]))
}
