package filter

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

// Store persists the filter policy. Implementations: Postgres for the
// service, MemoryStore for tests. The engine never touches a Store — it
// only sees snapshots.
type Store interface {
	// Load returns the full policy. First load on an empty backend seeds
	// defaults (filtering enabled, default-deny off, all categories).
	Load(ctx context.Context) (*Snapshot, error)
	SaveConfig(ctx context.Context, cfg model.FilterConfig) error
	SetCategoryEnabled(ctx context.Context, categoryID string, enabled bool) error
	AddWhitelist(ctx context.Context, item model.WhitelistItem) error
	RemoveWhitelist(ctx context.Context, youtubeID string, typ model.ContentType) error
	AddKeyword(ctx context.Context, keyword string) error
	RemoveKeyword(ctx context.Context, keyword string) error
}

// defaultConfig is the policy applied on first load.
func defaultConfig() model.FilterConfig {
	allowed := make([]string, 0, len(DefaultCategories))
	for _, c := range DefaultCategories {
		allowed = append(allowed, c.ID)
	}
	return model.FilterConfig{
		Enabled:           true,
		DefaultDeny:       false,
		AllowedCategories: allowed,
	}
}

// MemoryStore is the in-memory Store used by tests and by deployments
// without a database.
type MemoryStore struct {
	mu         sync.Mutex
	config     model.FilterConfig
	categories []model.CategoryDefinition
	whitelist  map[whitelistKey]model.WhitelistItem
	keywords   map[string]struct{}
	seeded     bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		whitelist: make(map[whitelistKey]model.WhitelistItem),
		keywords:  make(map[string]struct{}),
	}
}

func (s *MemoryStore) seedLocked() {
	if s.seeded {
		return
	}
	s.config = defaultConfig()
	s.categories = append([]model.CategoryDefinition(nil), DefaultCategories...)
	s.seeded = true
}

func (s *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()

	snap := &Snapshot{
		Config:     s.config,
		Categories: append([]model.CategoryDefinition(nil), s.categories...),
		Whitelist:  make(map[whitelistKey]struct{}, len(s.whitelist)),
		Keywords:   make([]string, 0, len(s.keywords)),
	}
	snap.Config.AllowedCategories = append([]string(nil), s.config.AllowedCategories...)
	for k := range s.whitelist {
		snap.Whitelist[k] = struct{}{}
	}
	for kw := range s.keywords {
		snap.Keywords = append(snap.Keywords, kw)
	}
	sort.Strings(snap.Keywords)
	return snap, nil
}

// WhitelistItems returns the stored whitelist entries (admin listing).
func (s *MemoryStore) WhitelistItems() []model.WhitelistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.WhitelistItem, 0, len(s.whitelist))
	for _, it := range s.whitelist {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.Before(items[j].AddedAt) })
	return items
}

func (s *MemoryStore) SaveConfig(ctx context.Context, cfg model.FilterConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()
	s.config = cfg
	return nil
}

func (s *MemoryStore) SetCategoryEnabled(ctx context.Context, categoryID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()
	for i := range s.categories {
		if s.categories[i].ID == categoryID {
			s.categories[i].Enabled = enabled
			return nil
		}
	}
	return ErrUnknownCategory
}

func (s *MemoryStore) AddWhitelist(ctx context.Context, item model.WhitelistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	s.whitelist[whitelistKey{ID: item.YoutubeID, Type: item.Type}] = item
	return nil
}

func (s *MemoryStore) RemoveWhitelist(ctx context.Context, youtubeID string, typ model.ContentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()
	delete(s.whitelist, whitelistKey{ID: youtubeID, Type: typ})
	return nil
}

func (s *MemoryStore) AddKeyword(ctx context.Context, keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()
	s.keywords[strings.ToLower(strings.TrimSpace(keyword))] = struct{}{}
	return nil
}

func (s *MemoryStore) RemoveKeyword(ctx context.Context, keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked()
	delete(s.keywords, strings.ToLower(strings.TrimSpace(keyword)))
	return nil
}
