package app

import (
	"context"

	"github.com/inquiryos/inquiry-os/internal/clients/ratelimit"
	"github.com/inquiryos/inquiry-os/internal/clients/webfetcher"
)

// rateLimitedFetcher wraps a webfetcher.Fetcher with a per-host token
// bucket, so repeated reader-stage fan-outs against the same domain don't
// hammer it (SPEC_FULL.md's resolution of the undocumented rate-limit Open
// Question).
type rateLimitedFetcher struct {
	inner   webfetcher.Fetcher
	limiter *ratelimit.HostLimiter
}

func (f rateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (webfetcher.Page, error) {
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return webfetcher.Page{}, err
	}
	return f.inner.Fetch(ctx, rawURL)
}
