package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"street-bites/pkg/domain"
	"street-bites/storefront-cli/internal/kv"
)

func open(t *testing.T, path string) *Session {
	t.Helper()
	store, err := kv.Open(path)
	require.NoError(t, err)
	return New(store)
}

func TestSession_CartRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := open(t, path)

	cart := s.Cart()
	assert.Zero(t, cart.Count())

	pct := 20.0
	cart.Add(domain.MenuItem{ID: "s4", Name: "Nashville Burger", Price: 16})
	cart.Add(domain.MenuItem{ID: "s4", Name: "Nashville Burger", Price: 16})
	cart.ApplyOffer(domain.SpecialOffer{ID: "o1", Active: true, ItemIDs: []string{"s4"}, DiscountPercentage: &pct})
	require.NoError(t, s.SaveCart(cart))

	restored := open(t, path).Cart()
	assert.Equal(t, 2, restored.Count())
	require.NotNil(t, restored.Offer)
	assert.Equal(t, "o1", restored.Offer.ID)
	assert.Equal(t, 25.6, restored.Total())

	restored.RemoveOffer()
	require.NoError(t, s.SaveCart(restored))
	assert.Nil(t, open(t, path).Cart().Offer)
}

func TestSession_DeviceIDIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first, err := open(t, path).DeviceID()
	require.NoError(t, err)
	require.Len(t, first, 36)

	second, err := open(t, path).DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSession_AdminCookie(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := open(t, path)

	assert.Empty(t, s.AdminCookie())
	require.NoError(t, s.SetAdminCookie("tok"))
	assert.Equal(t, "tok", open(t, path).AdminCookie())

	require.NoError(t, s.SetAdminCookie(""))
	assert.Empty(t, open(t, path).AdminCookie())
}

func TestSession_UserName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, open(t, path).SetUserName("Ana"))
	assert.Equal(t, "Ana", open(t, path).UserName())
}
