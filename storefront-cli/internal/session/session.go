// Package session keeps a customer's cart, chosen offer and device id
// between runs of the client.
package session

import (
	"github.com/google/uuid"

	"street-bites/pkg/domain"
	"street-bites/pkg/pricing"
	"street-bites/storefront-cli/internal/kv"
)

type Session struct {
	kv *kv.Store
}

func New(store *kv.Store) *Session {
	return &Session{kv: store}
}

// Cart rebuilds the cart from its stored lines and offer. Unreadable state
// yields an empty cart.
func (s *Session) Cart() pricing.Cart {
	var cart pricing.Cart
	if _, err := s.kv.Get(kv.KeyCart, &cart.Lines); err != nil {
		cart.Lines = nil
	}
	var offer domain.SpecialOffer
	if ok, err := s.kv.Get(kv.KeyOffer, &offer); ok && err == nil {
		cart.Offer = &offer
	}
	return cart
}

func (s *Session) SaveCart(cart pricing.Cart) error {
	if err := s.kv.Set(kv.KeyCart, cart.Lines); err != nil {
		return err
	}
	if cart.Offer == nil {
		return s.kv.Delete(kv.KeyOffer)
	}
	return s.kv.Set(kv.KeyOffer, cart.Offer)
}

// DeviceID returns this client's notification scope, creating it on first
// use. It identifies a device, not a person, and is trivially spoofable.
func (s *Session) DeviceID() (string, error) {
	var id string
	if ok, err := s.kv.Get(kv.KeyDeviceID, &id); ok && err == nil && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	return id, s.kv.Set(kv.KeyDeviceID, id)
}

func (s *Session) UserName() string {
	var name string
	s.kv.Get(kv.KeyUserName, &name)
	return name
}

func (s *Session) SetUserName(name string) error {
	return s.kv.Set(kv.KeyUserName, name)
}

func (s *Session) AdminCookie() string {
	var token string
	s.kv.Get(kv.KeyAdminCookie, &token)
	return token
}

func (s *Session) SetAdminCookie(token string) error {
	if token == "" {
		return s.kv.Delete(kv.KeyAdminCookie)
	}
	return s.kv.Set(kv.KeyAdminCookie, token)
}
