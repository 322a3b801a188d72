package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

// Piped is the second fallback, another flat JSON API without
// continuation tokens.
type Piped struct {
	base   string
	client *HTTPClient
	log    zerolog.Logger
}

func NewPiped(base string, client *HTTPClient, log zerolog.Logger) *Piped {
	return &Piped{
		base:   strings.TrimRight(base, "/"),
		client: client,
		log:    log.With().Str("provider", "piped").Logger(),
	}
}

func (p *Piped) Name() string { return "piped" }

type pipedItem struct {
	URL              string `json:"url"` // "/watch?v=<id>"
	Type             string `json:"type"`
	Title            string `json:"title"`
	Thumbnail        string `json:"thumbnail"`
	UploaderName     string `json:"uploaderName"`
	UploaderURL      string `json:"uploaderUrl"` // "/channel/<id>"
	UploaderAvatar   string `json:"uploaderAvatar"`
	UploadedDate     string `json:"uploadedDate"`
	ShortDescription string `json:"shortDescription"`
	Duration         int    `json:"duration"`
	Views            int64  `json:"views"`
	Verified         bool   `json:"uploaderVerified"`
}

func pipedVideoID(watchURL string) string {
	_, id, ok := strings.Cut(watchURL, "v=")
	if !ok {
		return strings.TrimPrefix(watchURL, "/watch/")
	}
	id, _, _ = strings.Cut(id, "&")
	return id
}

func pipedChannelID(uploaderURL string) string {
	return strings.TrimPrefix(uploaderURL, "/channel/")
}

func (v *pipedItem) toSummary() model.VideoSummary {
	id := pipedVideoID(v.URL)
	return model.VideoSummary{
		ID:            id,
		Title:         defaultStr(v.Title, "Untitled"),
		Description:   v.ShortDescription,
		Thumbnail:     defaultStr(v.Thumbnail, thumbnailFor(id)),
		Duration:      formatSeconds(strconv.Itoa(v.Duration)),
		Views:         strconv.FormatInt(v.Views, 10),
		UploadedAt:    v.UploadedDate,
		ChannelName:   defaultStr(v.UploaderName, "Unknown"),
		ChannelAvatar: v.UploaderAvatar,
		ChannelID:     pipedChannelID(v.UploaderURL),
		IsVerified:    v.Verified,
	}
}

func (p *Piped) Search(ctx context.Context, req SearchRequest) (SearchPage, error) {
	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("filter", "videos")

	var resp struct {
		Items []pipedItem `json:"items"`
	}
	u := p.base + "/search?" + q.Encode()
	if err := p.client.GetJSON(ctx, u, &resp); err != nil {
		return SearchPage{}, fmt.Errorf("piped search: %w", err)
	}

	page := SearchPage{}
	for _, it := range resp.Items {
		if it.Type != "" && it.Type != "stream" {
			continue
		}
		if s := it.toSummary(); s.ID != "" {
			page.Videos = append(page.Videos, s)
		}
	}
	return page, nil
}

func (p *Piped) Continue(ctx context.Context, raw string) (SearchPage, error) {
	return SearchPage{}, ErrNoContinuation
}

func (p *Piped) Detail(ctx context.Context, videoID string) (*model.VideoDetail, error) {
	var raw struct {
		Title                   string      `json:"title"`
		Description             string      `json:"description"`
		ThumbnailURL            string      `json:"thumbnailUrl"`
		Duration                int         `json:"duration"`
		Views                   int64       `json:"views"`
		UploadDate              string      `json:"uploadDate"`
		Uploader                string      `json:"uploader"`
		UploaderURL             string      `json:"uploaderUrl"`
		UploaderAvatar          string      `json:"uploaderAvatar"`
		UploaderVerified        bool        `json:"uploaderVerified"`
		UploaderSubscriberCount int64       `json:"uploaderSubscriberCount"`
		RelatedStreams          []pipedItem `json:"relatedStreams"`
	}
	u := p.base + "/streams/" + url.PathEscape(videoID)
	if err := p.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("piped detail: %w", err)
	}
	if raw.Title == "" {
		return nil, fmt.Errorf("piped detail: video not found")
	}

	detail := &model.VideoDetail{
		VideoSummary: model.VideoSummary{
			ID:            videoID,
			Title:         raw.Title,
			Description:   raw.Description,
			Thumbnail:     defaultStr(raw.ThumbnailURL, thumbnailFor(videoID)),
			Duration:      formatSeconds(strconv.Itoa(raw.Duration)),
			Views:         strconv.FormatInt(raw.Views, 10),
			UploadedAt:    raw.UploadDate,
			ChannelName:   defaultStr(raw.Uploader, "Unknown"),
			ChannelAvatar: raw.UploaderAvatar,
			ChannelID:     pipedChannelID(raw.UploaderURL),
			IsVerified:    raw.UploaderVerified,
		},
		Keywords:           []string{},
		Comments:           []model.Comment{},
		RelatedVideos:      []model.VideoSummary{},
		ChannelSubscribers: strconv.FormatInt(raw.UploaderSubscriberCount, 10),
		EmbedURL:           "https://www.youtube-nocookie.com/embed/" + videoID,
	}
	for _, rv := range raw.RelatedStreams {
		if s := rv.toSummary(); s.ID != "" {
			detail.RelatedVideos = append(detail.RelatedVideos, s)
		}
	}
	return detail, nil
}
