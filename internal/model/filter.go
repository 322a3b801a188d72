package model

import "time"

// ContentType classifies a whitelist entry.
type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentChannel  ContentType = "channel"
	ContentPlaylist ContentType = "playlist"
)

// ValidContentType reports whether t is one of the known whitelist types.
func ValidContentType(t ContentType) bool {
	switch t {
	case ContentVideo, ContentChannel, ContentPlaylist:
		return true
	}
	return false
}

// FilterConfig is the persisted global filtering policy. PINHash and
// PINSalt never leave the process — clients only see a derived hasPin.
type FilterConfig struct {
	Enabled           bool     `json:"enabled"`
	DefaultDeny       bool     `json:"defaultDeny"`
	AllowedCategories []string `json:"allowedCategories"`
	PINHash           string   `json:"-"`
	PINSalt           string   `json:"-"`
}

// HasPin reports whether the policy is PIN protected.
func (c FilterConfig) HasPin() bool {
	return c.PINHash != ""
}

// CategoryDefinition is an admin-togglable content category. Enabled is
// orthogonal to the config's defaultDeny flag.
type CategoryDefinition struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// WhitelistItem is an explicitly allowed piece of content, unique per
// (YoutubeID, Type).
type WhitelistItem struct {
	YoutubeID string      `json:"youtubeId"`
	Type      ContentType `json:"type"`
	Title     string      `json:"title"`
	Reason    string      `json:"reason"`
	AddedAt   time.Time   `json:"addedAt"`
}

// FilterDecision is the outcome of one policy evaluation. Reason is always
// populated, for allows as well as blocks. Decisions are transient and
// never persisted.
type FilterDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}
