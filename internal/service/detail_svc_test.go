package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
	"github.com/maegy2011/orchids-tube-sub000/internal/provider"
)

type stubDetail struct {
	name   string
	detail *model.VideoDetail
	err    error
	calls  int
}

func (s *stubDetail) Name() string { return s.name }

func (s *stubDetail) Detail(_ context.Context, _ string) (*model.VideoDetail, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func newVideoService(store filter.Store, providers ...provider.DetailProvider) *VideoService {
	return NewVideoService(providers, filter.NewService(store),
		NewCacheService("", zerolog.Nop()), zerolog.Nop())
}

func detailOf(id, title string) *model.VideoDetail {
	return &model.VideoDetail{
		VideoSummary: model.VideoSummary{ID: id, Title: title, ChannelID: "ch1"},
	}
}

func TestDetailFallsBackAcrossProviders(t *testing.T) {
	broken := &stubDetail{name: "innertube", err: errors.New("down")}
	healthy := &stubDetail{name: "invidious", detail: detailOf("v1", "math lesson")}

	svc := newVideoService(filter.NewMemoryStore(), broken, healthy)
	d, err := svc.Detail(context.Background(), "v1", false)
	require.NoError(t, err)
	require.Equal(t, "v1", d.ID)
	require.Equal(t, 1, broken.calls)
	require.Equal(t, 1, healthy.calls)
}

func TestDetailBlockedByKeyword(t *testing.T) {
	store := filter.NewMemoryStore()
	require.NoError(t, store.AddKeyword(context.Background(), "scary"))

	src := &stubDetail{name: "innertube", detail: detailOf("v1", "Very Scary Clips")}
	svc := newVideoService(store, src)

	_, err := svc.Detail(context.Background(), "v1", false)
	rej, ok := errs.AsRejection(err)
	require.True(t, ok, "denied detail must surface a rejection, got %v", err)
	require.Contains(t, rej.Reason, "scary")
}

func TestDetailPrunesBlockedRelated(t *testing.T) {
	store := filter.NewMemoryStore()
	require.NoError(t, store.AddKeyword(context.Background(), "scary"))

	d := detailOf("v1", "math lesson")
	d.RelatedVideos = []model.VideoSummary{
		{ID: "r1", Title: "more math"},
		{ID: "r2", Title: "scary stuff"},
		{ID: "r3", Title: "algebra"},
	}
	svc := newVideoService(store, &stubDetail{name: "innertube", detail: d})

	got, err := svc.Detail(context.Background(), "v1", false)
	require.NoError(t, err)
	require.Len(t, got.RelatedVideos, 2)
	for _, v := range got.RelatedVideos {
		require.NotEqual(t, "r2", v.ID)
	}
}

func TestDetailMissingUpstreamIsNotFound(t *testing.T) {
	svc := newVideoService(filter.NewMemoryStore(),
		&stubDetail{name: "innertube", err: errors.New("innertube player: unexpected status 500")},
		&stubDetail{name: "invidious", err: errors.New("invidious detail: video not found")},
	)

	_, err := svc.Detail(context.Background(), "gone", false)
	ae, ok := errs.AsKind(err)
	require.True(t, ok, "missing video must surface a classified error, got %v", err)
	require.Equal(t, errs.KindNotFound, ae.Kind)
	require.Equal(t, "not_found", ae.Key)
}

func TestDetailAllProvidersFail(t *testing.T) {
	svc := newVideoService(filter.NewMemoryStore(), &stubDetail{name: "innertube", err: errors.New("down")})

	_, err := svc.Detail(context.Background(), "v1", false)
	var agg *errs.AggregateError
	require.ErrorAs(t, err, &agg)
}
