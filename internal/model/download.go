package model

// MediaType selects the download payload kind.
type MediaType string

const (
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// MediaFormat is one playable/downloadable rendition of a video as reported
// by a format-list extractor.
type MediaFormat struct {
	URL       string `json:"url"`
	Quality   string `json:"quality"`
	Container string `json:"container"`
	Height    int    `json:"height"`
	Bitrate   int    `json:"bitrate"`
	FileSize  int64  `json:"fileSize"`
	AudioOnly bool   `json:"audioOnly"`
}

// DownloadResult is the resolved media URL handed back to the client.
// Source names the resolver stage that produced it so fallback responses
// can say so.
type DownloadResult struct {
	URL       string    `json:"url"`
	Quality   string    `json:"quality"`
	Type      MediaType `json:"type"`
	Container string    `json:"container"`
	FileSize  int64     `json:"fileSize"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
}
