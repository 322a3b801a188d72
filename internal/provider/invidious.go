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

// Invidious is the first fallback: a flat JSON API with no continuation
// tokens. Its detail payload carries related videos for free; comments
// take a second call.
type Invidious struct {
	base   string
	client *HTTPClient
	log    zerolog.Logger
}

func NewInvidious(base string, client *HTTPClient, log zerolog.Logger) *Invidious {
	return &Invidious{
		base:   strings.TrimRight(base, "/"),
		client: client,
		log:    log.With().Str("provider", "invidious").Logger(),
	}
}

func (p *Invidious) Name() string { return "invidious" }

type ivVideoItem struct {
	Type            string `json:"type"`
	VideoID         string `json:"videoId"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	VideoThumbnails []struct {
		Quality string `json:"quality"`
		URL     string `json:"url"`
	} `json:"videoThumbnails"`
	LengthSeconds  int    `json:"lengthSeconds"`
	ViewCount      int64  `json:"viewCount"`
	PublishedText  string `json:"publishedText"`
	Author         string `json:"author"`
	AuthorID       string `json:"authorId"`
	AuthorVerified bool   `json:"authorVerified"`
}

func (v *ivVideoItem) toSummary() model.VideoSummary {
	thumb := ""
	for _, t := range v.VideoThumbnails {
		if t.Quality == "high" {
			thumb = t.URL
			break
		}
	}
	if thumb == "" && len(v.VideoThumbnails) > 0 {
		thumb = v.VideoThumbnails[0].URL
	}
	return model.VideoSummary{
		ID:          v.VideoID,
		Title:       defaultStr(v.Title, "Untitled"),
		Description: v.Description,
		Thumbnail:   defaultStr(thumb, thumbnailFor(v.VideoID)),
		Duration:    formatSeconds(strconv.Itoa(v.LengthSeconds)),
		Views:       strconv.FormatInt(v.ViewCount, 10),
		UploadedAt:  v.PublishedText,
		ChannelName: defaultStr(v.Author, "Unknown"),
		ChannelID:   v.AuthorID,
		IsVerified:  v.AuthorVerified,
	}
}

func (p *Invidious) Search(ctx context.Context, req SearchRequest) (SearchPage, error) {
	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("type", "video")
	if req.Location != "" {
		q.Set("region", req.Location)
	}

	var items []ivVideoItem
	u := p.base + "/api/v1/search?" + q.Encode()
	if err := p.client.GetJSON(ctx, u, &items); err != nil {
		return SearchPage{}, fmt.Errorf("invidious search: %w", err)
	}

	page := SearchPage{}
	for _, it := range items {
		if it.Type != "" && it.Type != "video" {
			continue
		}
		if it.VideoID == "" {
			continue
		}
		page.Videos = append(page.Videos, it.toSummary())
	}
	return page, nil
}

func (p *Invidious) Continue(ctx context.Context, raw string) (SearchPage, error) {
	return SearchPage{}, ErrNoContinuation
}

type ivVideoDetail struct {
	ivVideoItem
	Keywords         []string `json:"keywords"`
	SubCountText     string   `json:"subCountText"`
	AuthorThumbnails []struct {
		URL string `json:"url"`
	} `json:"authorThumbnails"`
	RecommendedVideos []ivVideoItem `json:"recommendedVideos"`
	FormatStreams     []ivFormat    `json:"formatStreams"`
	AdaptiveFormats   []ivFormat    `json:"adaptiveFormats"`
}

type ivFormat struct {
	URL          string `json:"url"`
	Container    string `json:"container"`
	QualityLabel string `json:"qualityLabel"`
	Bitrate      string `json:"bitrate"`
	Resolution   string `json:"resolution"`
	AudioQuality string `json:"audioQuality"`
	ClenStr      string `json:"clen"`
}

func (p *Invidious) Detail(ctx context.Context, videoID string) (*model.VideoDetail, error) {
	var raw ivVideoDetail
	u := p.base + "/api/v1/videos/" + url.PathEscape(videoID)
	if err := p.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("invidious detail: %w", err)
	}
	if raw.VideoID == "" {
		return nil, fmt.Errorf("invidious detail: video not found")
	}

	detail := &model.VideoDetail{
		VideoSummary:       raw.toSummary(),
		Keywords:           raw.Keywords,
		Comments:           p.fetchComments(ctx, videoID),
		RelatedVideos:      []model.VideoSummary{},
		ChannelSubscribers: raw.SubCountText,
		EmbedURL:           "https://www.youtube-nocookie.com/embed/" + raw.VideoID,
	}
	if len(raw.AuthorThumbnails) > 0 {
		detail.ChannelAvatar = raw.AuthorThumbnails[len(raw.AuthorThumbnails)-1].URL
	}
	if detail.Keywords == nil {
		detail.Keywords = []string{}
	}
	for _, rv := range raw.RecommendedVideos {
		if rv.VideoID != "" {
			detail.RelatedVideos = append(detail.RelatedVideos, rv.toSummary())
		}
	}
	return detail, nil
}

// fetchComments is best-effort: a failing comments endpoint must not fail
// the detail lookup.
func (p *Invidious) fetchComments(ctx context.Context, videoID string) []model.Comment {
	var resp struct {
		Comments []struct {
			Author           string `json:"author"`
			AuthorThumbnails []struct {
				URL string `json:"url"`
			} `json:"authorThumbnails"`
			Content       string `json:"content"`
			LikeCount     int    `json:"likeCount"`
			PublishedText string `json:"publishedText"`
		} `json:"comments"`
	}
	u := p.base + "/api/v1/comments/" + url.PathEscape(videoID)
	if err := p.client.GetJSON(ctx, u, &resp); err != nil {
		p.log.Debug().Err(err).Str("video_id", videoID).Msg("comments fetch failed")
		return []model.Comment{}
	}

	comments := make([]model.Comment, 0, len(resp.Comments))
	for _, c := range resp.Comments {
		avatar := ""
		if len(c.AuthorThumbnails) > 0 {
			avatar = c.AuthorThumbnails[len(c.AuthorThumbnails)-1].URL
		}
		comments = append(comments, model.Comment{
			Author:       defaultStr(c.Author, "Unknown"),
			AuthorAvatar: avatar,
			Text:         c.Content,
			Likes:        strconv.Itoa(c.LikeCount),
			PublishedAt:  c.PublishedText,
		})
	}
	return comments
}

// Formats lists download formats from the detail payload.
func (p *Invidious) Formats(ctx context.Context, videoID string) ([]model.MediaFormat, error) {
	var raw ivVideoDetail
	u := p.base + "/api/v1/videos/" + url.PathEscape(videoID)
	if err := p.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("invidious formats: %w", err)
	}

	all := append(raw.FormatStreams, raw.AdaptiveFormats...)
	formats := make([]model.MediaFormat, 0, len(all))
	for _, f := range all {
		if f.URL == "" {
			continue
		}
		height := 0
		if res, ok := strings.CutSuffix(f.Resolution, "p"); ok {
			height, _ = strconv.Atoi(res)
		}
		bitrate, _ := strconv.Atoi(f.Bitrate)
		size, _ := strconv.ParseInt(f.ClenStr, 10, 64)
		formats = append(formats, model.MediaFormat{
			URL:       f.URL,
			Quality:   defaultStr(f.QualityLabel, f.Resolution),
			Container: defaultStr(f.Container, "mp4"),
			Height:    height,
			Bitrate:   bitrate,
			FileSize:  size,
			AudioOnly: f.AudioQuality != "" && f.Resolution == "",
		})
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no usable formats for %s", videoID)
	}
	return formats, nil
}
