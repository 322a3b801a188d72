// Package provider contains the third-party data source adapters and the
// generic first-success chain that drives them. Each adapter translates
// one provider's raw payloads into the canonical model types, defaulting
// every field explicitly.
package provider

import (
	"context"
	"errors"

	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

// ErrNoContinuation is returned by providers that cannot resume an opaque
// continuation token (fallback providers expose no true pagination).
var ErrNoContinuation = errors.New("provider does not support continuation")

// SearchRequest is one search invocation against a provider.
type SearchRequest struct {
	Query    string
	Location string
	Language string
}

// SearchPage is one raw page of provider results. Continuation is the
// provider's opaque trailing token, empty when the provider issued none.
type SearchPage struct {
	Videos       []model.VideoSummary
	Continuation string
}

// SearchProvider searches one third-party source.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, req SearchRequest) (SearchPage, error)
	// Continue resumes a token this provider previously issued.
	// Token-less providers return ErrNoContinuation.
	Continue(ctx context.Context, raw string) (SearchPage, error)
}

// DetailProvider resolves full metadata for one video.
type DetailProvider interface {
	Name() string
	Detail(ctx context.Context, videoID string) (*model.VideoDetail, error)
}

// FormatProvider lists the available media formats for one video.
type FormatProvider interface {
	Name() string
	Formats(ctx context.Context, videoID string) ([]model.MediaFormat, error)
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
