package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

const (
	innertubeClientName    = "WEB"
	innertubeClientVersion = "2.20240701.00.00"
)

// InnerTube talks to YouTube's internal API. It is the only provider that
// issues real continuation tokens, which makes it the primary search
// source and the format-list extractor for downloads.
type InnerTube struct {
	base   string
	client *HTTPClient
	log    zerolog.Logger

	mu      sync.Mutex
	visitor string // best-effort visitor token, empty when prefetch failed
}

func NewInnerTube(base string, client *HTTPClient, log zerolog.Logger) *InnerTube {
	return &InnerTube{
		base:   strings.TrimRight(base, "/"),
		client: client,
		log:    log.With().Str("provider", "innertube").Logger(),
	}
}

func (p *InnerTube) Name() string { return "innertube" }

// --- request payloads ---

type itContext struct {
	Client itClient `json:"client"`
}

type itClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	HL            string `json:"hl,omitempty"`
	GL            string `json:"gl,omitempty"`
	VisitorData   string `json:"visitorData,omitempty"`
}

type itSearchRequest struct {
	Context      itContext `json:"context"`
	Query        string    `json:"query,omitempty"`
	Continuation string    `json:"continuation,omitempty"`
	// Params biases results toward plain videos (no playlists/movies).
	Params string `json:"params,omitempty"`
}

type itPlayerRequest struct {
	Context itContext `json:"context"`
	VideoID string    `json:"videoId"`
}

func (p *InnerTube) context(hl, gl string) itContext {
	p.mu.Lock()
	visitor := p.visitor
	p.mu.Unlock()
	return itContext{Client: itClient{
		ClientName:    innertubeClientName,
		ClientVersion: innertubeClientVersion,
		HL:            defaultStr(hl, "ar"),
		GL:            defaultStr(gl, "SA"),
		VisitorData:   visitor,
	}}
}

// PrefetchVisitorToken grabs a visitor token to improve player-call odds.
// Strictly best-effort: failure is logged and the token stays empty.
func (p *InnerTube) PrefetchVisitorToken(ctx context.Context) {
	var resp struct {
		ResponseContext struct {
			VisitorData string `json:"visitorData"`
		} `json:"responseContext"`
	}
	url := p.base + "/youtubei/v1/visitor_id?prettyPrint=false"
	if err := p.client.PostJSON(ctx, url, itSearchRequest{Context: p.context("", "")}, &resp); err != nil {
		p.log.Debug().Err(err).Msg("visitor token prefetch failed, continuing without")
		return
	}
	p.mu.Lock()
	p.visitor = resp.ResponseContext.VisitorData
	p.mu.Unlock()
}

// --- response renderer tree (only the branches we walk) ---

type itSearchResponse struct {
	Contents *struct {
		TwoColumnSearchResultsRenderer *struct {
			PrimaryContents *struct {
				SectionListRenderer *itSectionList `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
	OnResponseReceivedCommands []struct {
		AppendContinuationItemsAction *struct {
			ContinuationItems []itSectionItem `json:"continuationItems"`
		} `json:"appendContinuationItemsAction"`
	} `json:"onResponseReceivedCommands"`
}

type itSectionList struct {
	Contents []itSectionItem `json:"contents"`
}

type itSectionItem struct {
	ItemSectionRenderer *struct {
		Contents []itContentItem `json:"contents"`
	} `json:"itemSectionRenderer"`
	ContinuationItemRenderer *itContinuationItem `json:"continuationItemRenderer"`
}

type itContinuationItem struct {
	ContinuationEndpoint struct {
		ContinuationCommand struct {
			Token string `json:"token"`
		} `json:"continuationCommand"`
	} `json:"continuationEndpoint"`
}

type itContentItem struct {
	VideoRenderer *itVideoRenderer `json:"videoRenderer"`
}

type itText struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text               string `json:"text"`
		NavigationEndpoint *struct {
			BrowseEndpoint *struct {
				BrowseID string `json:"browseId"`
			} `json:"browseEndpoint"`
		} `json:"navigationEndpoint"`
	} `json:"runs"`
}

func (t *itText) String() string {
	if t == nil {
		return ""
	}
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type itThumbnails struct {
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// last returns the highest-resolution thumbnail (InnerTube orders small→large).
func (t *itThumbnails) last() string {
	if t == nil || len(t.Thumbnails) == 0 {
		return ""
	}
	return t.Thumbnails[len(t.Thumbnails)-1].URL
}

type itVideoRenderer struct {
	VideoID                  string  `json:"videoId"`
	Title                    *itText `json:"title"`
	DescriptionSnippet       *itText `json:"descriptionSnippet"`
	DetailedMetadataSnippets []struct {
		SnippetText *itText `json:"snippetText"`
	} `json:"detailedMetadataSnippets"`
	Thumbnail         *itThumbnails `json:"thumbnail"`
	LengthText        *itText       `json:"lengthText"`
	ViewCountText     *itText       `json:"viewCountText"`
	PublishedTimeText *itText       `json:"publishedTimeText"`
	OwnerText         *itText       `json:"ownerText"`
	OwnerBadges       []struct {
		MetadataBadgeRenderer *struct {
			Style string `json:"style"`
		} `json:"metadataBadgeRenderer"`
	} `json:"ownerBadges"`
	ChannelThumbnailSupportedRenderers *struct {
		ChannelThumbnailWithLinkRenderer *struct {
			Thumbnail *itThumbnails `json:"thumbnail"`
		} `json:"channelThumbnailWithLinkRenderer"`
	} `json:"channelThumbnailSupportedRenderers"`
}

func (r *itVideoRenderer) toSummary() model.VideoSummary {
	desc := r.DescriptionSnippet.String()
	if desc == "" && len(r.DetailedMetadataSnippets) > 0 {
		desc = r.DetailedMetadataSnippets[0].SnippetText.String()
	}

	channelID := ""
	channelName := ""
	if r.OwnerText != nil && len(r.OwnerText.Runs) > 0 {
		run := r.OwnerText.Runs[0]
		channelName = run.Text
		if run.NavigationEndpoint != nil && run.NavigationEndpoint.BrowseEndpoint != nil {
			channelID = run.NavigationEndpoint.BrowseEndpoint.BrowseID
		}
	}

	verified := false
	for _, b := range r.OwnerBadges {
		if b.MetadataBadgeRenderer != nil && strings.Contains(b.MetadataBadgeRenderer.Style, "VERIFIED") {
			verified = true
		}
	}

	avatar := ""
	if r.ChannelThumbnailSupportedRenderers != nil &&
		r.ChannelThumbnailSupportedRenderers.ChannelThumbnailWithLinkRenderer != nil {
		avatar = r.ChannelThumbnailSupportedRenderers.ChannelThumbnailWithLinkRenderer.Thumbnail.last()
	}

	return model.VideoSummary{
		ID:            r.VideoID,
		Title:         defaultStr(r.Title.String(), "Untitled"),
		Description:   desc,
		Thumbnail:     defaultStr(r.Thumbnail.last(), thumbnailFor(r.VideoID)),
		Duration:      defaultStr(r.LengthText.String(), "0:00"),
		Views:         defaultStr(r.ViewCountText.String(), "0"),
		UploadedAt:    r.PublishedTimeText.String(),
		ChannelName:   defaultStr(channelName, "Unknown"),
		ChannelAvatar: avatar,
		ChannelID:     channelID,
		IsVerified:    verified,
	}
}

func thumbnailFor(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
}

// --- search ---

func (p *InnerTube) Search(ctx context.Context, req SearchRequest) (SearchPage, error) {
	payload := itSearchRequest{
		Context: p.context(req.Language, req.Location),
		Query:   req.Query,
		Params:  "EgIQAQ==", // videos only
	}
	var resp itSearchResponse
	url := p.base + "/youtubei/v1/search?prettyPrint=false"
	if err := p.client.PostJSON(ctx, url, payload, &resp); err != nil {
		return SearchPage{}, fmt.Errorf("innertube search: %w", err)
	}
	return p.extractPage(&resp), nil
}

func (p *InnerTube) Continue(ctx context.Context, raw string) (SearchPage, error) {
	payload := itSearchRequest{
		Context:      p.context("", ""),
		Continuation: raw,
	}
	var resp itSearchResponse
	url := p.base + "/youtubei/v1/search?prettyPrint=false"
	if err := p.client.PostJSON(ctx, url, payload, &resp); err != nil {
		return SearchPage{}, fmt.Errorf("innertube continuation: %w", err)
	}
	return p.extractPage(&resp), nil
}

func (p *InnerTube) extractPage(resp *itSearchResponse) SearchPage {
	var items []itSectionItem
	if resp.Contents != nil &&
		resp.Contents.TwoColumnSearchResultsRenderer != nil &&
		resp.Contents.TwoColumnSearchResultsRenderer.PrimaryContents != nil &&
		resp.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer != nil {
		items = resp.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents
	}
	for _, cmd := range resp.OnResponseReceivedCommands {
		if cmd.AppendContinuationItemsAction != nil {
			items = append(items, cmd.AppendContinuationItemsAction.ContinuationItems...)
		}
	}

	page := SearchPage{}
	for _, it := range items {
		if it.ItemSectionRenderer != nil {
			for _, c := range it.ItemSectionRenderer.Contents {
				if c.VideoRenderer != nil && c.VideoRenderer.VideoID != "" {
					page.Videos = append(page.Videos, c.VideoRenderer.toSummary())
				}
			}
		}
		if it.ContinuationItemRenderer != nil {
			page.Continuation = it.ContinuationItemRenderer.ContinuationEndpoint.ContinuationCommand.Token
		}
	}
	return page
}

// --- player: detail core fields + format list ---

type itPlayerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID          string       `json:"videoId"`
		Title            string       `json:"title"`
		ShortDescription string       `json:"shortDescription"`
		Keywords         []string     `json:"keywords"`
		ChannelID        string       `json:"channelId"`
		Author           string       `json:"author"`
		ViewCount        string       `json:"viewCount"`
		LengthSeconds    string       `json:"lengthSeconds"`
		Thumbnail        itThumbnails `json:"thumbnail"`
	} `json:"videoDetails"`
	StreamingData struct {
		Formats         []itFormat `json:"formats"`
		AdaptiveFormats []itFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
}

type itFormat struct {
	URL           string `json:"url"`
	MimeType      string `json:"mimeType"`
	Bitrate       int    `json:"bitrate"`
	Height        int    `json:"height"`
	QualityLabel  string `json:"qualityLabel"`
	ContentLength string `json:"contentLength"`
	AudioQuality  string `json:"audioQuality"`
}

func (p *InnerTube) player(ctx context.Context, videoID string) (*itPlayerResponse, error) {
	payload := itPlayerRequest{Context: p.context("", ""), VideoID: videoID}
	var resp itPlayerResponse
	url := p.base + "/youtubei/v1/player?prettyPrint=false"
	if err := p.client.PostJSON(ctx, url, payload, &resp); err != nil {
		return nil, fmt.Errorf("innertube player: %w", err)
	}
	if s := resp.PlayabilityStatus.Status; s != "" && s != "OK" {
		return nil, fmt.Errorf("video unavailable: %s", defaultStr(resp.PlayabilityStatus.Reason, s))
	}
	if resp.VideoDetails.VideoID == "" {
		return nil, fmt.Errorf("player response missing video details")
	}
	return &resp, nil
}

func (p *InnerTube) Detail(ctx context.Context, videoID string) (*model.VideoDetail, error) {
	resp, err := p.player(ctx, videoID)
	if err != nil {
		return nil, err
	}
	vd := resp.VideoDetails

	detail := &model.VideoDetail{
		VideoSummary: model.VideoSummary{
			ID:          vd.VideoID,
			Title:       defaultStr(vd.Title, "Untitled"),
			Description: vd.ShortDescription,
			Thumbnail:   defaultStr(vd.Thumbnail.last(), thumbnailFor(vd.VideoID)),
			Duration:    formatSeconds(vd.LengthSeconds),
			Views:       defaultStr(vd.ViewCount, "0"),
			ChannelName: defaultStr(vd.Author, "Unknown"),
			ChannelID:   vd.ChannelID,
		},
		Keywords:      vd.Keywords,
		Comments:      []model.Comment{},
		RelatedVideos: []model.VideoSummary{},
		EmbedURL:      "https://www.youtube-nocookie.com/embed/" + vd.VideoID,
	}
	if detail.Keywords == nil {
		detail.Keywords = []string{}
	}
	p.enrichFromNext(ctx, detail)
	return detail, nil
}

// --- watch-next: related videos, subscriber count, comments ---

type itNextRequest struct {
	Context      itContext `json:"context"`
	VideoID      string    `json:"videoId,omitempty"`
	Continuation string    `json:"continuation,omitempty"`
}

type itNextResponse struct {
	Contents *struct {
		TwoColumnWatchNextResults *struct {
			Results *struct {
				Results *struct {
					Contents []itWatchContent `json:"contents"`
				} `json:"results"`
			} `json:"results"`
			SecondaryResults *struct {
				SecondaryResults *struct {
					Results []itSecondaryItem `json:"results"`
				} `json:"secondaryResults"`
			} `json:"secondaryResults"`
		} `json:"twoColumnWatchNextResults"`
	} `json:"contents"`
	OnResponseReceivedEndpoints []struct {
		ReloadContinuationItemsCommand *struct {
			ContinuationItems []itCommentItem `json:"continuationItems"`
		} `json:"reloadContinuationItemsCommand"`
		AppendContinuationItemsAction *struct {
			ContinuationItems []itCommentItem `json:"continuationItems"`
		} `json:"appendContinuationItemsAction"`
	} `json:"onResponseReceivedEndpoints"`
}

type itWatchContent struct {
	VideoSecondaryInfoRenderer *struct {
		Owner *struct {
			VideoOwnerRenderer *struct {
				SubscriberCountText *itText       `json:"subscriberCountText"`
				Thumbnail           *itThumbnails `json:"thumbnail"`
			} `json:"videoOwnerRenderer"`
		} `json:"owner"`
	} `json:"videoSecondaryInfoRenderer"`
	ItemSectionRenderer *struct {
		SectionIdentifier string `json:"sectionIdentifier"`
		Contents          []struct {
			ContinuationItemRenderer *itContinuationItem `json:"continuationItemRenderer"`
		} `json:"contents"`
	} `json:"itemSectionRenderer"`
}

type itSecondaryItem struct {
	CompactVideoRenderer *itCompactVideoRenderer `json:"compactVideoRenderer"`
}

type itCompactVideoRenderer struct {
	VideoID           string        `json:"videoId"`
	Title             *itText       `json:"title"`
	Thumbnail         *itThumbnails `json:"thumbnail"`
	LengthText        *itText       `json:"lengthText"`
	ViewCountText     *itText       `json:"viewCountText"`
	PublishedTimeText *itText       `json:"publishedTimeText"`
	LongBylineText    *itText       `json:"longBylineText"`
	ChannelThumbnail  *itThumbnails `json:"channelThumbnail"`
}

func (r *itCompactVideoRenderer) toSummary() model.VideoSummary {
	channelID := ""
	if r.LongBylineText != nil && len(r.LongBylineText.Runs) > 0 {
		run := r.LongBylineText.Runs[0]
		if run.NavigationEndpoint != nil && run.NavigationEndpoint.BrowseEndpoint != nil {
			channelID = run.NavigationEndpoint.BrowseEndpoint.BrowseID
		}
	}
	return model.VideoSummary{
		ID:            r.VideoID,
		Title:         defaultStr(r.Title.String(), "Untitled"),
		Thumbnail:     defaultStr(r.Thumbnail.last(), thumbnailFor(r.VideoID)),
		Duration:      defaultStr(r.LengthText.String(), "0:00"),
		Views:         defaultStr(r.ViewCountText.String(), "0"),
		UploadedAt:    r.PublishedTimeText.String(),
		ChannelName:   defaultStr(r.LongBylineText.String(), "Unknown"),
		ChannelAvatar: r.ChannelThumbnail.last(),
		ChannelID:     channelID,
	}
}

type itCommentItem struct {
	CommentThreadRenderer *struct {
		Comment *struct {
			CommentRenderer *itCommentRenderer `json:"commentRenderer"`
		} `json:"comment"`
	} `json:"commentThreadRenderer"`
}

type itCommentRenderer struct {
	AuthorText        *itText       `json:"authorText"`
	AuthorThumbnail   *itThumbnails `json:"authorThumbnail"`
	ContentText       *itText       `json:"contentText"`
	VoteCount         *itText       `json:"voteCount"`
	PublishedTimeText *itText       `json:"publishedTimeText"`
}

// enrichFromNext fills related videos, the channel subscriber count and
// top-level comments from the watch-next endpoint. Strictly best-effort:
// the player payload alone is a valid detail, so any failure here leaves
// the enrichment fields empty.
func (p *InnerTube) enrichFromNext(ctx context.Context, detail *model.VideoDetail) {
	payload := itNextRequest{Context: p.context("", ""), VideoID: detail.ID}
	var resp itNextResponse
	url := p.base + "/youtubei/v1/next?prettyPrint=false"
	if err := p.client.PostJSON(ctx, url, payload, &resp); err != nil {
		p.log.Debug().Err(err).Str("video_id", detail.ID).Msg("watch-next fetch failed")
		return
	}
	if resp.Contents == nil || resp.Contents.TwoColumnWatchNextResults == nil {
		return
	}
	watch := resp.Contents.TwoColumnWatchNextResults

	if watch.SecondaryResults != nil && watch.SecondaryResults.SecondaryResults != nil {
		for _, it := range watch.SecondaryResults.SecondaryResults.Results {
			if it.CompactVideoRenderer != nil && it.CompactVideoRenderer.VideoID != "" {
				detail.RelatedVideos = append(detail.RelatedVideos, it.CompactVideoRenderer.toSummary())
			}
		}
	}

	commentsToken := ""
	if watch.Results != nil && watch.Results.Results != nil {
		for _, c := range watch.Results.Results.Contents {
			if sec := c.VideoSecondaryInfoRenderer; sec != nil && sec.Owner != nil && sec.Owner.VideoOwnerRenderer != nil {
				owner := sec.Owner.VideoOwnerRenderer
				detail.ChannelSubscribers = owner.SubscriberCountText.String()
				if detail.ChannelAvatar == "" {
					detail.ChannelAvatar = owner.Thumbnail.last()
				}
			}
			if isr := c.ItemSectionRenderer; isr != nil && isr.SectionIdentifier == "comment-item-section" {
				for _, item := range isr.Contents {
					if item.ContinuationItemRenderer != nil {
						commentsToken = item.ContinuationItemRenderer.ContinuationEndpoint.ContinuationCommand.Token
					}
				}
			}
		}
	}
	if commentsToken != "" {
		detail.Comments = p.fetchComments(ctx, commentsToken)
	}
}

// fetchComments resolves a comment-section continuation into top-level
// comments. Best-effort like the rest of the watch-next walk.
func (p *InnerTube) fetchComments(ctx context.Context, token string) []model.Comment {
	payload := itNextRequest{Context: p.context("", ""), Continuation: token}
	var resp itNextResponse
	url := p.base + "/youtubei/v1/next?prettyPrint=false"
	if err := p.client.PostJSON(ctx, url, payload, &resp); err != nil {
		p.log.Debug().Err(err).Msg("comments fetch failed")
		return []model.Comment{}
	}

	comments := []model.Comment{}
	for _, ep := range resp.OnResponseReceivedEndpoints {
		var items []itCommentItem
		switch {
		case ep.ReloadContinuationItemsCommand != nil:
			items = ep.ReloadContinuationItemsCommand.ContinuationItems
		case ep.AppendContinuationItemsAction != nil:
			items = ep.AppendContinuationItemsAction.ContinuationItems
		}
		for _, it := range items {
			if it.CommentThreadRenderer == nil || it.CommentThreadRenderer.Comment == nil {
				continue
			}
			r := it.CommentThreadRenderer.Comment.CommentRenderer
			if r == nil || r.ContentText.String() == "" {
				continue
			}
			comments = append(comments, model.Comment{
				Author:       defaultStr(r.AuthorText.String(), "Unknown"),
				AuthorAvatar: r.AuthorThumbnail.last(),
				Text:         r.ContentText.String(),
				Likes:        defaultStr(r.VoteCount.String(), "0"),
				PublishedAt:  r.PublishedTimeText.String(),
			})
		}
	}
	return comments
}

// Formats implements the full-format-list extractor stage of the download
// resolver.
func (p *InnerTube) Formats(ctx context.Context, videoID string) ([]model.MediaFormat, error) {
	resp, err := p.player(ctx, videoID)
	if err != nil {
		return nil, err
	}

	raw := append(resp.StreamingData.Formats, resp.StreamingData.AdaptiveFormats...)
	formats := make([]model.MediaFormat, 0, len(raw))
	for _, f := range raw {
		if f.URL == "" {
			continue // ciphered format, unusable without a player JS step
		}
		size, _ := strconv.ParseInt(f.ContentLength, 10, 64)
		formats = append(formats, model.MediaFormat{
			URL:       f.URL,
			Quality:   defaultStr(f.QualityLabel, fmt.Sprintf("%dkbps", f.Bitrate/1000)),
			Container: containerOf(f.MimeType),
			Height:    f.Height,
			Bitrate:   f.Bitrate,
			FileSize:  size,
			AudioOnly: strings.HasPrefix(f.MimeType, "audio/"),
		})
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no usable formats for %s", videoID)
	}
	return formats, nil
}

func containerOf(mimeType string) string {
	mt, _, _ := strings.Cut(mimeType, ";")
	_, sub, ok := strings.Cut(mt, "/")
	if !ok {
		return "mp4"
	}
	return sub
}

func formatSeconds(s string) string {
	secs, err := strconv.Atoi(s)
	if err != nil || secs < 0 {
		return "0:00"
	}
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
