package filter

import (
	"context"
	"errors"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
	"github.com/maegy2011/orchids-tube-sub000/pkg/hash"
)

// ErrUnknownCategory is returned when toggling a category that was never
// declared.
var ErrUnknownCategory = errors.New("unknown category")

// ConfigPatch is a partial config mutation. Nil fields are left unchanged.
type ConfigPatch struct {
	Enabled     *bool
	DefaultDeny *bool
}

// ClientConfig is the policy view exposed to clients: the PIN hash is
// stripped and replaced by a derived flag.
type ClientConfig struct {
	Enabled           bool                       `json:"enabled"`
	DefaultDeny       bool                       `json:"defaultDeny"`
	AllowedCategories []string                   `json:"allowedCategories"`
	Categories        []model.CategoryDefinition `json:"categories"`
	Keywords          []string                   `json:"blockedKeywords"`
	HasPin            bool                       `json:"hasPin"`
}

// Service guards every policy mutation behind PIN verification when a PIN
// is set. Mutations are last-write-wins; acceptable for a single-operator
// admin surface.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Snapshot loads the current policy for decision making.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s.store.Load(ctx)
}

// ClientView returns the policy with the PIN hash stripped.
func (s *Service) ClientView(ctx context.Context) (*ClientConfig, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	keywords := snap.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &ClientConfig{
		Enabled:           snap.Config.Enabled,
		DefaultDeny:       snap.Config.DefaultDeny,
		AllowedCategories: snap.Config.AllowedCategories,
		Categories:        snap.Categories,
		Keywords:          keywords,
		HasPin:            snap.Config.HasPin(),
	}, nil
}

// authorize verifies the supplied PIN when the policy is protected.
// Called before every mutation; a failure means no state change.
func (s *Service) authorize(snap *Snapshot, pin string) error {
	if !snap.Config.HasPin() {
		return nil
	}
	if pin == "" {
		return errs.Unauthorized("pin_required")
	}
	if !hash.VerifyPin(pin, snap.Config.PINSalt, snap.Config.PINHash) {
		return errs.Unauthorized("pin_incorrect")
	}
	return nil
}

// VerifyPin checks a candidate PIN without mutating anything.
func (s *Service) VerifyPin(ctx context.Context, candidate string) (bool, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if !snap.Config.HasPin() {
		return false, nil
	}
	return hash.VerifyPin(candidate, snap.Config.PINSalt, snap.Config.PINHash), nil
}

// UpdateConfig applies a partial config patch.
func (s *Service) UpdateConfig(ctx context.Context, patch ConfigPatch, pin string) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := s.authorize(snap, pin); err != nil {
		return err
	}

	cfg := snap.Config
	if patch.Enabled != nil {
		cfg.Enabled = *patch.Enabled
	}
	if patch.DefaultDeny != nil {
		cfg.DefaultDeny = *patch.DefaultDeny
	}
	return s.store.SaveConfig(ctx, cfg)
}

// SetupPin transitions Unprotected→Protected. Refused when a PIN already
// exists (that is an update, which needs the current PIN).
func (s *Service) SetupPin(ctx context.Context, pin string) error {
	if pin == "" {
		return errs.Invalid("missing_field")
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if snap.Config.HasPin() {
		return errs.Unauthorized("pin_required")
	}
	cfg := snap.Config
	cfg.PINSalt = hash.NewSalt()
	cfg.PINHash = hash.HashPin(pin, cfg.PINSalt)
	return s.store.SaveConfig(ctx, cfg)
}

// UpdatePin transitions Protected→Protected with a new PIN.
func (s *Service) UpdatePin(ctx context.Context, currentPin, newPin string) error {
	if newPin == "" {
		return errs.Invalid("missing_field")
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if !snap.Config.HasPin() {
		// No PIN yet — treat as setup so a fresh install can use either action.
		return s.SetupPin(ctx, newPin)
	}
	if err := s.authorize(snap, currentPin); err != nil {
		return err
	}
	cfg := snap.Config
	cfg.PINSalt = hash.NewSalt()
	cfg.PINHash = hash.HashPin(newPin, cfg.PINSalt)
	return s.store.SaveConfig(ctx, cfg)
}

// RemovePin transitions Protected→Unprotected.
func (s *Service) RemovePin(ctx context.Context, currentPin string) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if !snap.Config.HasPin() {
		return nil
	}
	if err := s.authorize(snap, currentPin); err != nil {
		return err
	}
	cfg := snap.Config
	cfg.PINHash = ""
	cfg.PINSalt = ""
	return s.store.SaveConfig(ctx, cfg)
}

// SetCategoryEnabled toggles one category's switch.
func (s *Service) SetCategoryEnabled(ctx context.Context, categoryID string, enabled bool, pin string) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := s.authorize(snap, pin); err != nil {
		return err
	}
	return s.store.SetCategoryEnabled(ctx, categoryID, enabled)
}

// AddWhitelist inserts or refreshes a whitelist entry.
func (s *Service) AddWhitelist(ctx context.Context, item model.WhitelistItem, pin string) error {
	if item.YoutubeID == "" {
		return errs.Invalid("missing_field")
	}
	if !model.ValidContentType(item.Type) {
		return errs.Invalid("invalid_field")
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := s.authorize(snap, pin); err != nil {
		return err
	}
	return s.store.AddWhitelist(ctx, item)
}

// RemoveWhitelist deletes a whitelist entry.
func (s *Service) RemoveWhitelist(ctx context.Context, youtubeID string, typ model.ContentType, pin string) error {
	if youtubeID == "" {
		return errs.Invalid("missing_field")
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := s.authorize(snap, pin); err != nil {
		return err
	}
	return s.store.RemoveWhitelist(ctx, youtubeID, typ)
}

// AddKeyword inserts a blocked keyword.
func (s *Service) AddKeyword(ctx context.Context, keyword, pin string) error {
	if keyword == "" {
		return errs.Invalid("missing_field")
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := s.authorize(snap, pin); err != nil {
		return err
	}
	return s.store.AddKeyword(ctx, keyword)
}

// RemoveKeyword deletes a blocked keyword.
func (s *Service) RemoveKeyword(ctx context.Context, keyword, pin string) error {
	if keyword == "" {
		return errs.Invalid("missing_field")
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := s.authorize(snap, pin); err != nil {
		return err
	}
	return s.store.RemoveKeyword(ctx, keyword)
}
