// Package service holds the request-facing services composed from the
// provider chains, the filter policy, and the caches.
package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
	"github.com/maegy2011/orchids-tube-sub000/internal/provider"
)

// VideoService resolves full video detail through the provider chain and
// gates every response through the filter policy. The gate runs on cache
// hits too, so a policy tightened a minute ago applies to already-cached
// videos.
type VideoService struct {
	chain   *provider.Chain[string, *model.VideoDetail]
	filters *filter.Service
	cache   *CacheService
	log     zerolog.Logger
}

func NewVideoService(
	detailProviders []provider.DetailProvider,
	filters *filter.Service,
	cache *CacheService,
	log zerolog.Logger,
) *VideoService {
	stages := make([]provider.Stage[string, *model.VideoDetail], 0, len(detailProviders))
	for _, dp := range detailProviders {
		dp := dp
		stages = append(stages, provider.Stage[string, *model.VideoDetail]{
			Name: dp.Name(),
			Run:  dp.Detail,
		})
	}
	return &VideoService{
		chain: provider.NewChain("detail", log,
			func(d *model.VideoDetail) bool { return d != nil && d.ID != "" },
			stages...),
		filters: filters,
		cache:   cache,
		log:     log.With().Str("component", "video").Logger(),
	}
}

// Detail returns the video's full metadata, or a FilterRejectionError when
// the policy denies it.
func (s *VideoService) Detail(ctx context.Context, videoID string, restricted bool) (*model.VideoDetail, error) {
	snap, err := s.filters.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if cached, err := s.cache.GetDetail(ctx, videoID); err == nil && cached != nil {
		var d model.VideoDetail
		if json.Unmarshal(cached, &d) == nil && d.ID != "" {
			return s.gate(&d, snap, restricted)
		}
	}

	detail, src, err := s.chain.Execute(ctx, videoID)
	if err != nil {
		// A chain exhausted on "does not exist" is a 404, not an outage.
		if ag, ok := errs.AsAggregate(err); ok && ag.Last != nil &&
			errs.KeyFor(ag.Last.Error()) == "not_found" {
			return nil, errs.NotFound("not_found")
		}
		return nil, err
	}
	s.log.Debug().Str("video_id", videoID).Str("source", src).Msg("detail resolved")

	if err := s.cache.SetDetail(ctx, videoID, detail); err != nil {
		s.log.Warn().Err(err).Msg("detail cache write failed")
	}
	return s.gate(detail, snap, restricted)
}

// gate applies the policy to the video itself and prunes denied entries
// from the related list.
func (s *VideoService) gate(d *model.VideoDetail, snap *filter.Snapshot, restricted bool) (*model.VideoDetail, error) {
	decision := filter.Decide(filter.Input{
		ID:          d.ID,
		Type:        model.ContentVideo,
		Title:       d.Title,
		Description: d.Description,
		Keywords:    d.Keywords,
		ChannelID:   d.ChannelID,
		Restricted:  restricted,
	}, snap)
	if !decision.Allowed {
		return nil, &errs.FilterRejectionError{Reason: decision.Reason}
	}

	if len(d.RelatedVideos) > 0 {
		kept := make([]model.VideoSummary, 0, len(d.RelatedVideos))
		for _, v := range d.RelatedVideos {
			rd := filter.Decide(filter.Input{
				ID:          v.ID,
				Type:        model.ContentVideo,
				Title:       v.Title,
				Description: v.Description,
				ChannelID:   v.ChannelID,
				Restricted:  restricted,
			}, snap)
			if rd.Allowed {
				kept = append(kept, v)
			}
		}
		d.RelatedVideos = kept
	}
	return d, nil
}
