// Package download resolves a playable media URL for one video through a
// fallback chain: a format-list extractor first, then scraping downloader
// frontends when the extractor yields nothing usable.
package download

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maegy2011/orchids-tube-sub000/internal/model"
	"github.com/maegy2011/orchids-tube-sub000/internal/provider"
)

// Default quality targets applied when the client sends none.
const (
	defaultVideoHeight  = 720
	defaultAudioBitrate = 128
)

// Request is one download resolution.
type Request struct {
	VideoID string
	Type    model.MediaType
	// Quality is the target rendition: "720p" style for video, a kbps
	// number for audio. Empty picks the defaults.
	Quality string
}

// Resolver runs the download fallback chain. The format extractor is
// preferred because it yields direct googlevideo URLs with sizes; the
// scrape stages are slower and lossier but survive extractor breakage.
type Resolver struct {
	chain     *provider.Chain[Request, model.DownloadResult]
	formats   []provider.FormatProvider
	innertube *provider.InnerTube
	log       zerolog.Logger
}

// NewResolver assembles the chain: one stage per format provider, then one
// per scrape frontend, in the order given.
func NewResolver(
	formatProviders []provider.FormatProvider,
	scrapers []*provider.ScrapeResolver,
	innertube *provider.InnerTube,
	log zerolog.Logger,
) *Resolver {
	r := &Resolver{
		formats:   formatProviders,
		innertube: innertube,
		log:       log.With().Str("component", "download").Logger(),
	}

	stages := make([]provider.Stage[Request, model.DownloadResult], 0, len(formatProviders)+len(scrapers))
	for _, fp := range formatProviders {
		fp := fp
		stages = append(stages, provider.Stage[Request, model.DownloadResult]{
			Name: fp.Name(),
			Run: func(ctx context.Context, req Request) (model.DownloadResult, error) {
				return resolveFromFormats(ctx, fp, req)
			},
		})
	}
	for _, sc := range scrapers {
		sc := sc
		stages = append(stages, provider.Stage[Request, model.DownloadResult]{
			Name: sc.Name(),
			Run: func(ctx context.Context, req Request) (model.DownloadResult, error) {
				return sc.Resolve(ctx, req.VideoID, req.Type, req.Quality)
			},
		})
	}

	r.chain = provider.NewChain("download", r.log,
		func(res model.DownloadResult) bool { return res.URL != "" },
		stages...)
	return r
}

// Resolve returns the first usable media URL for the request.
func (r *Resolver) Resolve(ctx context.Context, req Request) (model.DownloadResult, error) {
	if req.Quality == "" {
		if req.Type == model.MediaAudio {
			req.Quality = strconv.Itoa(defaultAudioBitrate)
		} else {
			req.Quality = strconv.Itoa(defaultVideoHeight) + "p"
		}
	}
	if r.innertube != nil {
		// Best effort: a fresh visitor token raises the extractor's odds.
		r.innertube.PrefetchVisitorToken(ctx)
	}

	res, src, err := r.chain.Execute(ctx, req)
	if err != nil {
		return model.DownloadResult{}, err
	}
	r.log.Info().
		Str("video_id", req.VideoID).
		Str("type", string(req.Type)).
		Str("source", src).
		Msg("download resolved")
	return res, nil
}

// Formats lists the available renditions, asking each format provider in
// turn until one answers.
func (r *Resolver) Formats(ctx context.Context, videoID string) ([]model.MediaFormat, error) {
	var lastErr error
	for _, fp := range r.formats {
		formats, err := fp.Formats(ctx, videoID)
		if err != nil {
			r.log.Warn().Str("provider", fp.Name()).Err(err).Msg("format listing failed, trying next")
			lastErr = err
			continue
		}
		if len(formats) > 0 {
			return formats, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no formats available")
	}
	return nil, lastErr
}

// resolveFromFormats lists formats and picks the rendition closest to the
// requested quality.
func resolveFromFormats(ctx context.Context, fp provider.FormatProvider, req Request) (model.DownloadResult, error) {
	formats, err := fp.Formats(ctx, req.VideoID)
	if err != nil {
		return model.DownloadResult{}, err
	}

	var pick *model.MediaFormat
	if req.Type == model.MediaAudio {
		pick = pickAudio(formats, parseBitrate(req.Quality))
	} else {
		pick = pickVideo(formats, parseHeight(req.Quality))
	}
	if pick == nil {
		return model.DownloadResult{}, fmt.Errorf("no %s format for %s", req.Type, req.VideoID)
	}

	return model.DownloadResult{
		URL:       pick.URL,
		Quality:   pick.Quality,
		Type:      req.Type,
		Container: pick.Container,
		FileSize:  pick.FileSize,
		Source:    fp.Name(),
	}, nil
}

// pickAudio prefers the highest bitrate not exceeding the target, falling
// back to the lowest available when everything overshoots.
func pickAudio(formats []model.MediaFormat, targetKbps int) *model.MediaFormat {
	var under, lowest *model.MediaFormat
	for i := range formats {
		f := &formats[i]
		if !f.AudioOnly || f.URL == "" {
			continue
		}
		if lowest == nil || kbpsOf(f) < kbpsOf(lowest) {
			lowest = f
		}
		if kbpsOf(f) <= targetKbps && (under == nil || kbpsOf(f) > kbpsOf(under)) {
			under = f
		}
	}
	if under != nil {
		return under
	}
	return lowest
}

// kbpsOf normalizes the reported bitrate: the extractor reports bps,
// the flat APIs kbps.
func kbpsOf(f *model.MediaFormat) int {
	if f.Bitrate > 10000 {
		return f.Bitrate / 1000
	}
	return f.Bitrate
}

// pickVideo minimizes the height distance to the target.
func pickVideo(formats []model.MediaFormat, targetHeight int) *model.MediaFormat {
	var best *model.MediaFormat
	bestDist := 1 << 30
	for i := range formats {
		f := &formats[i]
		if f.AudioOnly || f.URL == "" || f.Height == 0 {
			continue
		}
		dist := f.Height - targetHeight
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestDist = f, dist
		}
	}
	return best
}

func parseHeight(quality string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(quality), "p"))
	if err != nil || n <= 0 {
		return defaultVideoHeight
	}
	return n
}

func parseBitrate(quality string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(quality), "kbps"))
	if err != nil || n <= 0 {
		return defaultAudioBitrate
	}
	return n
}
