// Package session owns the credential and the profile derived from it. It is
// the only writer of the persisted token; other components read the session
// and ask it to log in, log out or refresh.
package session

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/api"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/models"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/storage"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

// ProfileSource fetches the profile for a credential.
type ProfileSource interface {
	Profile(ctx context.Context, token string) (models.Profile, error)
}

// Session must be used from the loop only.
type Session struct {
	loop  *loop.Loop
	api   ProfileSource
	store storage.Store
	clock clockwork.Clock
	log   logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	token   string
	profile models.Profile
	loaded  bool
	// epoch changes with every credential change so that a profile fetched
	// for an older credential is never applied.
	epoch uint64

	subs []func()
}

func New(l *loop.Loop, src ProfileSource, store storage.Store, clock clockwork.Clock, log logging.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		loop:   l,
		api:    src,
		store:  store,
		clock:  clock,
		log:    log.With("component", "session"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Restore loads the persisted credential. An expired JWT is discarded and
// removed from storage; a token that is not a JWT is kept as is.
func (s *Session) Restore(ctx context.Context) error {
	b, err := s.store.Get(ctx, storage.KeyToken)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}

	token := string(b)
	if s.expired(token) {
		s.log.Info(ctx, "stored credential expired, discarding")
		return s.store.Delete(ctx, storage.KeyToken)
	}

	s.set(token)
	s.RefreshProfile()
	return nil
}

func (s *Session) expired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !s.clock.Now().Before(claims.ExpiresAt.Time)
}

// Login establishes token as the credential and persists it.
func (s *Session) Login(token string) {
	if err := s.store.Set(s.ctx, storage.KeyToken, []byte(token)); err != nil {
		s.log.Error(s.ctx, "persist credential", "err", err)
	}
	s.set(token)
	s.RefreshProfile()
}

// Logout destroys the credential and the profile.
func (s *Session) Logout() {
	if err := s.store.Delete(s.ctx, storage.KeyToken); err != nil {
		s.log.Error(s.ctx, "remove credential", "err", err)
	}
	s.set("")
}

func (s *Session) set(token string) {
	s.token = token
	s.profile = models.Profile{}
	s.loaded = false
	s.epoch++
	s.notify()
}

// RefreshProfile re-fetches the profile. A rejected credential logs out;
// other failures keep the current profile.
func (s *Session) RefreshProfile() {
	if s.token == "" {
		return
	}
	epoch, token := s.epoch, s.token
	loop.Go(s.loop, s.ctx, func(ctx context.Context) (models.Profile, error) {
		return s.api.Profile(ctx, token)
	}, func(p models.Profile, err error) {
		if epoch != s.epoch {
			s.log.Debug(s.ctx, "dropping profile for previous credential")
			return
		}
		if errors.Is(err, api.ErrUnauthorized) {
			s.log.Warn(s.ctx, "credential rejected, logging out", "err", err)
			s.Logout()
			return
		}
		if err != nil {
			s.log.Warn(s.ctx, "refresh profile", "err", err)
			return
		}
		s.profile = p
		s.loaded = true
		s.notify()
	})
}

// MarkVerified sets the verified flag ahead of the next refresh, which
// remains authoritative.
func (s *Session) MarkVerified() {
	if s.token == "" {
		return
	}
	s.profile.IsVerified = true
	s.notify()
}

func (s *Session) Credential() string {
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.token != ""
}

// Profile is empty whenever there is no credential.
func (s *Session) Profile() models.Profile {
	return s.profile
}

// Loaded reports whether the profile has been fetched for the current credential.
func (s *Session) Loaded() bool {
	return s.loaded
}

// Subscribe registers fn to run on the loop after every session change.
func (s *Session) Subscribe(fn func()) {
	s.subs = append(s.subs, fn)
}

func (s *Session) notify() {
	for _, fn := range s.subs {
		fn()
	}
}

// Close drops any in-flight profile fetch.
func (s *Session) Close() {
	s.cancel()
}
