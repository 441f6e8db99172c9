package session

import (
	"sync"

	"klaso-client/internal/logger"
	"klaso-client/internal/model"
	"klaso-client/pkg/errors"

	"github.com/rs/zerolog"
)

// Holder keeps at most one authenticated identity. The zero state is anonymous.
type Holder struct {
	mu         sync.RWMutex
	user       *model.User
	credential string
	claims     Claims
	log        zerolog.Logger
}

func NewHolder() *Holder {
	return &Holder{
		log: logger.For("session"),
	}
}

// Authenticate moves the holder to the authenticated state, replacing any previous identity.
func (h *Holder) Authenticate(user model.User, credential string) {
	claims, _ := ParseCredential(credential)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.user = &user
	h.credential = credential
	h.claims = claims

	h.log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Time("expires_at", claims.ExpiresAt).
		Msg("Session authenticated")
}

// Clear moves the holder back to anonymous. Clearing an anonymous holder is a no-op.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.user == nil && h.credential == "" {
		return
	}
	h.user = nil
	h.credential = ""
	h.claims = Claims{}
	h.log.Info().Msg("Session cleared")
}

// Invalidate is called when the backend rejects the credential.
func (h *Holder) Invalidate() {
	h.log.Warn().Msg("Credential rejected by backend")
	h.Clear()
}

func (h *Holder) Current() (model.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.user == nil {
		return model.User{}, false
	}
	return *h.user, true
}

// Require returns the current identity or ErrNotAuthenticated.
func (h *Holder) Require() (model.User, error) {
	user, ok := h.Current()
	if !ok {
		return model.User{}, errors.ErrNotAuthenticated
	}
	return user, nil
}

func (h *Holder) IsAuthenticated() bool {
	_, ok := h.Current()
	return ok
}

func (h *Holder) Credential() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.credential
}

func (h *Holder) Claims() Claims {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.claims
}
