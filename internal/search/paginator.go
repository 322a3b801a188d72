package search

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/maegy2011/orchids-tube-sub000/internal/provider"
)

// Token is a continuation cursor tagged with the provider that issued it.
// Raw tokens are meaningless to any other provider, so the tag lets the
// paginator reject cross-provider reuse instead of silently misbehaving.
type Token struct {
	Provider string
	Raw      string
}

// IsZero reports an absent token.
func (t Token) IsZero() bool { return t.Raw == "" }

// Encode serializes the token for the HTTP API. Clients see one opaque
// string.
func (t Token) Encode() string {
	if t.IsZero() {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(t.Provider + "|" + t.Raw))
}

// ErrBadToken covers malformed or foreign continuation tokens.
var ErrBadToken = errors.New("malformed continuation token")

// DecodeToken parses a client-supplied token string. Empty input is a
// valid zero token (first page).
func DecodeToken(s string) (Token, error) {
	if s == "" {
		return Token{}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Token{}, ErrBadToken
	}
	prov, raw, ok := strings.Cut(string(b), "|")
	if !ok || prov == "" || raw == "" {
		return Token{}, ErrBadToken
	}
	return Token{Provider: prov, Raw: raw}, nil
}

// minPageThreshold is the hasMore heuristic for token-less providers: a
// page at least this full probably has a next page.
const minPageThreshold = 10

// Paginator resolves "next page" requests. With a token it fetches a
// continuation from the issuing provider only; without one, callers go
// through the search chain and the heuristic applies.
type Paginator struct {
	providers map[string]provider.SearchProvider
}

func NewPaginator(providers ...provider.SearchProvider) *Paginator {
	m := make(map[string]provider.SearchProvider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Paginator{providers: m}
}

// Continue fetches the page after tok. The token is only honored by the
// provider that issued it.
func (p *Paginator) Continue(ctx context.Context, tok Token) (provider.SearchPage, Token, error) {
	if tok.IsZero() {
		return provider.SearchPage{}, Token{}, ErrBadToken
	}
	src, ok := p.providers[tok.Provider]
	if !ok {
		return provider.SearchPage{}, Token{}, fmt.Errorf("%w: unknown provider %q", ErrBadToken, tok.Provider)
	}

	page, err := src.Continue(ctx, tok.Raw)
	if err != nil {
		return provider.SearchPage{}, Token{}, err
	}

	next := Token{}
	if page.Continuation != "" {
		next = Token{Provider: tok.Provider, Raw: page.Continuation}
	}
	return page, next, nil
}

// TokenFrom wraps a provider page's trailing token.
func TokenFrom(providerName string, page provider.SearchPage) Token {
	if page.Continuation == "" {
		return Token{}
	}
	return Token{Provider: providerName, Raw: page.Continuation}
}

// HasMoreHeuristic estimates whether a token-less page has a successor.
func HasMoreHeuristic(resultCount int) bool {
	return resultCount >= minPageThreshold
}
