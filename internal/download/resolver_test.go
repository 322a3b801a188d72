package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
	"github.com/maegy2011/orchids-tube-sub000/internal/provider"
)

type stubFormats struct {
	name    string
	formats []model.MediaFormat
	err     error
	calls   int
}

func (s *stubFormats) Name() string { return s.name }

func (s *stubFormats) Formats(_ context.Context, _ string) ([]model.MediaFormat, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.formats, nil
}

func fmtSet() []model.MediaFormat {
	return []model.MediaFormat{
		{URL: "https://cdn/v360", Quality: "360p", Container: "mp4", Height: 360},
		{URL: "https://cdn/v720", Quality: "720p", Container: "mp4", Height: 720, FileSize: 9000},
		{URL: "https://cdn/v1080", Quality: "1080p", Container: "mp4", Height: 1080},
		{URL: "https://cdn/a64", Quality: "64kbps", Container: "m4a", Bitrate: 64000, AudioOnly: true},
		{URL: "https://cdn/a128", Quality: "128kbps", Container: "m4a", Bitrate: 128000, AudioOnly: true},
		{URL: "https://cdn/a160", Quality: "160kbps", Container: "webm", Bitrate: 160000, AudioOnly: true},
	}
}

func newFormatResolver(fp provider.FormatProvider) *Resolver {
	return NewResolver([]provider.FormatProvider{fp}, nil, nil, zerolog.Nop())
}

func TestResolvePicksClosestVideoHeight(t *testing.T) {
	r := newFormatResolver(&stubFormats{name: "extractor", formats: fmtSet()})

	res, err := r.Resolve(context.Background(), Request{VideoID: "abc", Type: model.MediaVideo, Quality: "700p"})
	require.NoError(t, err)
	require.Equal(t, "https://cdn/v720", res.URL)
	require.Equal(t, "720p", res.Quality)
	require.Equal(t, "extractor", res.Source)
	require.Equal(t, int64(9000), res.FileSize)
}

func TestResolveDefaultsVideoQuality(t *testing.T) {
	r := newFormatResolver(&stubFormats{name: "extractor", formats: fmtSet()})

	res, err := r.Resolve(context.Background(), Request{VideoID: "abc", Type: model.MediaVideo})
	require.NoError(t, err)
	require.Equal(t, "https://cdn/v720", res.URL)
}

func TestResolveAudioBitrate(t *testing.T) {
	tests := []struct {
		quality string
		wantURL string
	}{
		{"160", "https://cdn/a160"},
		{"128kbps", "https://cdn/a128"},
		{"100", "https://cdn/a64"},
		// Everything overshoots: settle for the lowest rendition.
		{"32", "https://cdn/a64"},
	}
	for _, tt := range tests {
		t.Run(tt.quality, func(t *testing.T) {
			r := newFormatResolver(&stubFormats{name: "extractor", formats: fmtSet()})
			res, err := r.Resolve(context.Background(), Request{VideoID: "abc", Type: model.MediaAudio, Quality: tt.quality})
			require.NoError(t, err)
			require.Equal(t, tt.wantURL, res.URL)
			require.Equal(t, model.MediaAudio, res.Type)
		})
	}
}

func TestResolveFallsBackToScraper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><h1>Scraped Title</h1>
			<a href="https://dl.example/song.mp3" data-quality="128">mp3</a></html>`))
	}))
	defer srv.Close()

	extractor := &stubFormats{name: "extractor", err: errors.New("extractor broken")}
	scraper := provider.NewScrapeResolver("scrape-a", srv.URL, provider.NewHTTPClient(100), zerolog.Nop())

	r := NewResolver([]provider.FormatProvider{extractor},
		[]*provider.ScrapeResolver{scraper}, nil, zerolog.Nop())

	res, err := r.Resolve(context.Background(), Request{VideoID: "abc", Type: model.MediaAudio, Quality: "128"})
	require.NoError(t, err)
	require.Equal(t, "https://dl.example/song.mp3", res.URL)
	require.Equal(t, "mp3", res.Container)
	require.Equal(t, "scrape-a", res.Source, "response must name the fallback stage")
	require.Equal(t, "Scraped Title", res.Title)
}

func TestResolveAllStagesFail(t *testing.T) {
	r := newFormatResolver(&stubFormats{name: "extractor", err: errors.New("down")})

	_, err := r.Resolve(context.Background(), Request{VideoID: "abc", Type: model.MediaVideo, Quality: "720p"})
	var agg *errs.AggregateError
	require.ErrorAs(t, err, &agg)
}

func TestFormatsFallsThrough(t *testing.T) {
	broken := &stubFormats{name: "a", err: errors.New("down")}
	healthy := &stubFormats{name: "b", formats: fmtSet()}
	r := NewResolver([]provider.FormatProvider{broken, healthy}, nil, nil, zerolog.Nop())

	formats, err := r.Formats(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, formats, 6)
	require.Equal(t, 1, broken.calls)
	require.Equal(t, 1, healthy.calls)
}
