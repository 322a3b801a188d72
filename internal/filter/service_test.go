package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryStore())
}

func TestService_DefaultsSeededOnFirstLoad(t *testing.T) {
	svc := newTestService(t)
	view, err := svc.ClientView(context.Background())
	require.NoError(t, err)

	assert.True(t, view.Enabled)
	assert.False(t, view.DefaultDeny)
	assert.False(t, view.HasPin)
	assert.Len(t, view.Categories, len(DefaultCategories))
	assert.NotEmpty(t, view.AllowedCategories)
}

func TestService_PinLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// Unprotected → Protected: setup needs no prior PIN
	require.NoError(t, svc.SetupPin(ctx, "2468"))

	ok, err := svc.VerifyPin(ctx, "2468")
	require.NoError(t, err)
	assert.True(t, ok, "correct PIN must verify")

	ok, err = svc.VerifyPin(ctx, "1357")
	require.NoError(t, err)
	assert.False(t, ok, "wrong PIN must not verify")

	view, err := svc.ClientView(ctx)
	require.NoError(t, err)
	assert.True(t, view.HasPin)

	// Second setup is refused while protected
	err = svc.SetupPin(ctx, "9999")
	ae, isKind := errs.AsKind(err)
	require.True(t, isKind)
	assert.Equal(t, errs.KindConfig, ae.Kind)

	// Protected → Protected: update requires the current PIN
	err = svc.UpdatePin(ctx, "wrong", "1111")
	require.Error(t, err)
	require.NoError(t, svc.UpdatePin(ctx, "2468", "1111"))
	ok, _ = svc.VerifyPin(ctx, "1111")
	assert.True(t, ok)

	// Protected → Unprotected: remove requires the current PIN
	require.Error(t, svc.RemovePin(ctx, "2468"))
	require.NoError(t, svc.RemovePin(ctx, "1111"))

	view, err = svc.ClientView(ctx)
	require.NoError(t, err)
	assert.False(t, view.HasPin, "hasPin must be false after removal")
}

func TestService_MutationsRequirePinWhenProtected(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, svc.SetupPin(ctx, "2468"))

	deny := true
	mutations := map[string]func(pin string) error{
		"config patch": func(pin string) error {
			return svc.UpdateConfig(ctx, ConfigPatch{DefaultDeny: &deny}, pin)
		},
		"category toggle": func(pin string) error {
			return svc.SetCategoryEnabled(ctx, "cartoon", false, pin)
		},
		"whitelist add": func(pin string) error {
			return svc.AddWhitelist(ctx, model.WhitelistItem{YoutubeID: "v1", Type: model.ContentVideo}, pin)
		},
		"whitelist remove": func(pin string) error {
			return svc.RemoveWhitelist(ctx, "v1", model.ContentVideo, pin)
		},
		"keyword add": func(pin string) error {
			return svc.AddKeyword(ctx, "bad", pin)
		},
		"keyword remove": func(pin string) error {
			return svc.RemoveKeyword(ctx, "bad", pin)
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			err := mutate("")
			ae, ok := errs.AsKind(err)
			require.True(t, ok, "missing PIN must yield a classified error")
			assert.Equal(t, errs.KindConfig, ae.Kind)
			assert.Equal(t, "pin_required", ae.Key)

			err = mutate("0000")
			ae, ok = errs.AsKind(err)
			require.True(t, ok)
			assert.Equal(t, "pin_incorrect", ae.Key)

			assert.NoError(t, mutate("2468"))
		})
	}

	// Failed mutations must not have changed state: defaultDeny was set
	// only by the successful call above.
	view, err := svc.ClientView(ctx)
	require.NoError(t, err)
	assert.True(t, view.DefaultDeny)
}

func TestService_FailedPinLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, svc.SetupPin(ctx, "2468"))

	deny := true
	_ = svc.UpdateConfig(ctx, ConfigPatch{DefaultDeny: &deny}, "wrong")

	view, err := svc.ClientView(ctx)
	require.NoError(t, err)
	assert.False(t, view.DefaultDeny, "rejected mutation must not change state")
}

func TestService_KeywordsDedupCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.AddKeyword(ctx, "Scary", ""))
	require.NoError(t, svc.AddKeyword(ctx, "scary", ""))
	require.NoError(t, svc.AddKeyword(ctx, " SCARY ", ""))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"scary"}, snap.Keywords)
}

func TestService_WhitelistUniquePerIDAndType(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.AddWhitelist(ctx, model.WhitelistItem{YoutubeID: "x", Type: model.ContentVideo, Title: "a"}, ""))
	require.NoError(t, svc.AddWhitelist(ctx, model.WhitelistItem{YoutubeID: "x", Type: model.ContentVideo, Title: "b"}, ""))
	require.NoError(t, svc.AddWhitelist(ctx, model.WhitelistItem{YoutubeID: "x", Type: model.ContentChannel}, ""))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Whitelist, 2, "same id with different types are distinct entries")

	require.NoError(t, svc.RemoveWhitelist(ctx, "x", model.ContentVideo, ""))
	snap, _ = svc.Snapshot(ctx)
	assert.False(t, snap.Whitelisted("x", model.ContentVideo))
	assert.True(t, snap.Whitelisted("x", model.ContentChannel))
}

func TestService_InvalidWhitelistType(t *testing.T) {
	svc := newTestService(t)
	err := svc.AddWhitelist(context.Background(), model.WhitelistItem{YoutubeID: "x", Type: "movie"}, "")
	ae, ok := errs.AsKind(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindValidation, ae.Kind)
}

func TestService_UnknownCategory(t *testing.T) {
	svc := newTestService(t)
	err := svc.SetCategoryEnabled(context.Background(), "no-such-category", true, "")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
