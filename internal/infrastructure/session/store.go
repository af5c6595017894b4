package session

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"partshub-backend/internal/domain"
)

// Store keeps carts and flash messages in memory, keyed by session id.
// Carts expire with the session TTL; every mutation refreshes the entry.
// Flash values are one-read: PopFlash returns and clears them.
type Store struct {
	carts   *gocache.Cache
	flashes *gocache.Cache
	mu      sync.Mutex
}

func NewStore(sessionTTL, cleanupInterval time.Duration) *Store {
	return &Store{
		carts:   gocache.New(sessionTTL, cleanupInterval),
		flashes: gocache.New(sessionTTL, cleanupInterval),
	}
}

func (s *Store) Get(sessionID string) (*domain.Cart, bool) {
	v, ok := s.carts.Get(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*domain.Cart), true
}

func (s *Store) Put(cart *domain.Cart) {
	s.carts.SetDefault(cart.SessionID, cart)
}

func (s *Store) Delete(sessionID string) {
	s.carts.Delete(sessionID)
}

func (s *Store) Flash(sessionID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := map[string]string{}
	if v, ok := s.flashes.Get(sessionID); ok {
		msgs = v.(map[string]string)
	}
	msgs[key] = value
	s.flashes.SetDefault(sessionID, msgs)
}

// PopFlash returns all pending flash messages for the session and removes
// them, so each is read at most once.
func (s *Store) PopFlash(sessionID string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.flashes.Get(sessionID)
	if !ok {
		return nil
	}
	s.flashes.Delete(sessionID)
	return v.(map[string]string)
}

var _ domain.CartStore = (*Store)(nil)
