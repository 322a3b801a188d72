package model

// VideoSummary is the canonical search-result shape every provider adapter
// normalizes into. All fields are defaulted by the adapters — past the
// adapter boundary nothing is ever unset.
type VideoSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Thumbnail     string `json:"thumbnail"`
	Duration      string `json:"duration"`
	Views         string `json:"views"`
	UploadedAt    string `json:"uploadedAt"`
	ChannelName   string `json:"channelName"`
	ChannelAvatar string `json:"channelAvatar"`
	ChannelID     string `json:"channelId"`
	IsVerified    bool   `json:"isVerified"`
}

// Comment is a single viewer comment on a video.
type Comment struct {
	Author       string `json:"author"`
	AuthorAvatar string `json:"authorAvatar"`
	Text         string `json:"text"`
	Likes        string `json:"likes"`
	PublishedAt  string `json:"publishedAt"`
}

// VideoDetail extends VideoSummary with the fields only a detail lookup
// can provide.
type VideoDetail struct {
	VideoSummary
	Keywords           []string       `json:"keywords"`
	Comments           []Comment      `json:"comments"`
	RelatedVideos      []VideoSummary `json:"relatedVideos"`
	ChannelSubscribers string         `json:"channelSubscribers"`
	EmbedURL           string         `json:"embedUrl"`
}
