package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
	"github.com/maegy2011/orchids-tube-sub000/internal/provider"
)

// MaxAttempts is the orchestrator's liveness bound: no search performs
// more fetch iterations than this, even against a provider that always
// claims to have more pages.
const MaxAttempts = 12

// DefaultLimit and MaxLimit bound the requested result count.
const (
	DefaultLimit = 20
	MaxLimit     = 100

	preloadTimeout = 15 * time.Second
)

// Params is one search invocation.
type Params struct {
	Query      string
	Location   string
	Language   string
	Restricted bool
	Limit      int
	Page       int
	Token      string // encoded continuation token, empty for page one
}

// Debug surfaces loop counters for troubleshooting aggressive-filtering
// yield problems.
type Debug struct {
	Attempts     int `json:"attempts"`
	TotalFetched int `json:"totalFetched"`
	TotalAllowed int `json:"totalAllowed"`
}

// Result is one search response page.
type Result struct {
	Videos            []model.VideoSummary `json:"videos"`
	ContinuationToken string               `json:"continuationToken"`
	HasMore           bool                 `json:"hasMore"`
	Page              int                  `json:"page"`
	Query             string               `json:"query"`
	Debug             Debug                `json:"debug"`
}

// Orchestrator runs the adaptive fetch-until-satisfied loop: diversify,
// fetch via paginator or chain, dedup, filter, accumulate. It compensates
// for aggressive filtering rejecting the bulk of any single provider's
// raw yield.
type Orchestrator struct {
	chain       *provider.Chain[provider.SearchRequest, provider.SearchPage]
	paginator   *Paginator
	diversifier *Diversifier
	filters     *filter.Service
	cache       *Cache
	log         zerolog.Logger
}

func NewOrchestrator(
	chain *provider.Chain[provider.SearchRequest, provider.SearchPage],
	paginator *Paginator,
	diversifier *Diversifier,
	filters *filter.Service,
	cache *Cache,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		chain:       chain,
		paginator:   paginator,
		diversifier: diversifier,
		filters:     filters,
		cache:       cache,
		log:         log.With().Str("component", "search").Logger(),
	}
}

// Search serves one page, consulting the cache first. The returned bool
// reports a cache hit.
func (o *Orchestrator) Search(ctx context.Context, p Params) (Result, bool, error) {
	p = clamp(p)

	tok, err := DecodeToken(p.Token)
	if err != nil {
		return Result{}, false, err
	}

	snap, err := o.filters.Snapshot(ctx)
	if err != nil {
		return Result{}, false, err
	}

	restricted := p.Restricted || (snap.Config.Enabled && snap.Config.DefaultDeny)
	key := CacheKey{
		Query:      NormalizeQuery(p.Query),
		Location:   p.Location,
		Language:   p.Language,
		Restricted: restricted,
		Page:       p.Page,
	}
	if cached, ok := o.cache.Get(key); ok {
		return cached, true, nil
	}

	res, err := o.run(ctx, p, tok, snap, restricted)
	if err != nil {
		return Result{}, false, err
	}

	o.cache.Set(key, res)
	if res.ContinuationToken != "" {
		// Opportunistic next-page preload decouples perceived next-page
		// latency from the network round-trip.
		go o.preload(p, res.ContinuationToken, key)
	}
	return res, false, nil
}

func (o *Orchestrator) preload(p Params, token string, key CacheKey) {
	ctx, cancel := context.WithTimeout(context.Background(), preloadTimeout)
	defer cancel()

	snap, err := o.filters.Snapshot(ctx)
	if err != nil {
		return
	}
	tok, err := DecodeToken(token)
	if err != nil {
		return
	}

	next := p
	next.Page = p.Page + 1
	next.Token = token

	nextKey := key
	nextKey.Page = key.Page + 1
	if _, ok := o.cache.Get(nextKey); ok {
		return
	}

	res, err := o.run(ctx, next, tok, snap, key.Restricted)
	if err != nil {
		o.log.Debug().Err(err).Msg("next-page preload failed")
		return
	}
	o.cache.Set(nextKey, res)
}

// run executes the bounded accumulation loop. Terminates when enough
// allowed results accumulated, no more pages exist, or MaxAttempts is
// reached — whichever comes first.
func (o *Orchestrator) run(ctx context.Context, p Params, tok Token, snap *filter.Snapshot, restricted bool) (Result, error) {
	variants := []string{p.Query}
	if restricted {
		variants = o.diversifier.Expand(p.Query, snap.AllowedEnabledCategories())
	}

	seen := make(map[string]struct{})
	out := make([]model.VideoSummary, 0, p.Limit)
	debug := Debug{}
	hasMore := true
	variantIdx := 0

	for debug.Attempts < MaxAttempts && len(out) < p.Limit && hasMore {
		if ctx.Err() != nil {
			break
		}
		debug.Attempts++

		var page provider.SearchPage
		fromToken := !tok.IsZero()

		if fromToken {
			var next Token
			var err error
			page, next, err = o.paginator.Continue(ctx, tok)
			if err != nil {
				// The issuing provider stopped answering. From here on,
				// pages are synthesized from diversified fresh queries.
				o.log.Warn().Err(err).Str("provider", tok.Provider).Msg("continuation failed, falling back to fresh queries")
				tok = Token{}
				continue
			}
			tok = next
			hasMore = !tok.IsZero()
		} else {
			req := provider.SearchRequest{
				Query:    variants[variantIdx%len(variants)],
				Location: p.Location,
				Language: p.Language,
			}
			variantIdx++

			var src string
			var err error
			page, src, err = o.chain.Execute(ctx, req)
			if err != nil {
				if len(out) == 0 && debug.Attempts == 1 {
					// Nothing at all to show — surface the aggregate failure.
					return Result{}, err
				}
				hasMore = false
				break
			}
			tok = TokenFrom(src, page)
			if tok.IsZero() {
				hasMore = HasMoreHeuristic(len(page.Videos))
			} else {
				hasMore = true
			}
		}

		debug.TotalFetched += len(page.Videos)
		newItems := 0
		for _, v := range page.Videos {
			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}
			newItems++

			decision := filter.Decide(filter.Input{
				ID:          v.ID,
				Type:        model.ContentVideo,
				Title:       v.Title,
				Description: v.Description,
				ChannelID:   v.ChannelID,
				Restricted:  p.Restricted,
			}, snap)
			if decision.Allowed {
				out = append(out, v)
				debug.TotalAllowed++
			}
		}

		// Degenerate-progress guard: a token-less fetch that surfaced
		// nothing new will not improve on retry with the same variants.
		if !fromToken && newItems == 0 {
			hasMore = false
		}
	}

	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return Result{
		Videos:            out,
		ContinuationToken: tok.Encode(),
		HasMore:           hasMore,
		Page:              p.Page,
		Query:             p.Query,
		Debug:             debug,
	}, nil
}

func clamp(p Params) Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}
