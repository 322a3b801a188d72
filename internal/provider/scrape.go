package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

// ScrapeResolver resolves a single media URL by scraping a downloader
// frontend's result page. Both fallback download stages are instances of
// this adapter pointed at different frontends; the markup shape they share
// is a list of anchor tags labeled with a quality attribute.
type ScrapeResolver struct {
	name   string
	base   string
	client *HTTPClient
	log    zerolog.Logger
}

func NewScrapeResolver(name, base string, client *HTTPClient, log zerolog.Logger) *ScrapeResolver {
	return &ScrapeResolver{
		name:   name,
		base:   strings.TrimRight(base, "/"),
		client: client,
		log:    log.With().Str("provider", name).Logger(),
	}
}

func (p *ScrapeResolver) Name() string { return p.name }

// Resolve fetches the frontend's download page for the video and picks the
// first link matching the requested type, preferring an exact quality
// match.
func (p *ScrapeResolver) Resolve(ctx context.Context, videoID string, mediaType model.MediaType, quality string) (model.DownloadResult, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("f", string(mediaType))

	body, err := p.client.Get(ctx, p.base+"/download?"+q.Encode())
	if err != nil {
		return model.DownloadResult{}, fmt.Errorf("%s fetch: %w", p.name, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.DownloadResult{}, fmt.Errorf("%s parse: %w", p.name, err)
	}

	wantExt := ".mp4"
	container := "mp4"
	if mediaType == model.MediaAudio {
		wantExt = ".mp3"
		container = "mp3"
	}

	var exact, first string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "http") || !strings.Contains(href, wantExt) {
			return true
		}
		if first == "" {
			first = href
		}
		if attr, ok := s.Attr("data-quality"); ok && attr == quality {
			exact = href
			return false
		}
		return true
	})

	link := exact
	if link == "" {
		link = first
	}
	if link == "" {
		return model.DownloadResult{}, fmt.Errorf("%s: no %s link on page", p.name, container)
	}

	title := strings.TrimSpace(doc.Find("h1, .video-title").First().Text())
	return model.DownloadResult{
		URL:       link,
		Quality:   quality,
		Type:      mediaType,
		Container: container,
		Title:     title,
		Source:    p.name,
	}, nil
}
