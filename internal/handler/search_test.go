package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
	"github.com/maegy2011/orchids-tube-sub000/internal/provider"
	"github.com/maegy2011/orchids-tube-sub000/internal/search"
)

// The search handler touches the Prometheus counters, which main wires up
// at startup; register them once for the whole test binary.
var metricsOnce sync.Once

func initTestMetrics() {
	metricsOnce.Do(func() { InitMetrics(nil) })
}

// captureSource records every search request it receives and answers with
// one fixed result, enough to drive the handler through a full response.
type captureSource struct {
	mu   sync.Mutex
	reqs []provider.SearchRequest
}

func (s *captureSource) Name() string { return "alpha" }

func (s *captureSource) Search(_ context.Context, req provider.SearchRequest) (provider.SearchPage, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	return provider.SearchPage{Videos: []model.VideoSummary{
		{ID: "v1", Title: "math lesson", ChannelID: "ch1"},
	}}, nil
}

func (s *captureSource) Continue(context.Context, string) (provider.SearchPage, error) {
	return provider.SearchPage{}, provider.ErrNoContinuation
}

func (s *captureSource) requests() []provider.SearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]provider.SearchRequest(nil), s.reqs...)
}

func newSearchApp(src *captureSource) *fiber.App {
	initTestMetrics()

	chain := provider.NewChain("search", zerolog.Nop(),
		func(p provider.SearchPage) bool { return len(p.Videos) > 0 },
		provider.Stage[provider.SearchRequest, provider.SearchPage]{Name: src.Name(), Run: src.Search})
	orch := search.NewOrchestrator(
		chain,
		search.NewPaginator(src),
		search.NewDiversifierSeeded(1),
		filter.NewService(filter.NewMemoryStore()),
		search.NewCache(time.Minute),
		zerolog.Nop(),
	)

	app := fiber.New()
	app.Get("/api/search", NewSearchHandler(orch).Search)
	return app
}

func TestSearchLanguageParam(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"language param", "/api/search?q=math&language=en", "en"},
		{"lang alias", "/api/search?q=space&lang=en", "en"},
		{"language wins over alias", "/api/search?q=history&language=ar&lang=en", "ar"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &captureSource{}
			app := newSearchApp(src)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.url, nil))
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close()

			reqs := src.requests()
			require.NotEmpty(t, reqs)
			require.Equal(t, tc.want, reqs[0].Language)
		})
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	app := newSearchApp(&captureSource{})

	resp, body := doJSON(t, app, http.MethodGet, "/api/search", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "MISSING_PARAM", errorCode(body))
}
