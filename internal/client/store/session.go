package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/tokens"
	"github.com/dmitrijs2005/storefront/internal/common"
)

// ResumeSession restores the session from the persisted token. It is meant to
// run once at startup. Without a token the session becomes Ready and
// anonymous; with a token that the backend rejects (or that has visibly
// expired under PolicyLogout) the session is cleared as by Logout.
func (s *Store) ResumeSession(ctx context.Context) error {
	const op = "resume"

	s.begin()
	defer s.end()

	pair, err := s.tokens.Load(ctx)
	if errors.Is(err, tokens.ErrNoTokens) {
		s.log.Debug(ctx, "no persisted session")
		return nil
	}
	if err != nil {
		s.log.Warn(ctx, "cannot read persisted tokens", "err", err)
		return s.sessionFailed(op, err)
	}

	if s.policy == client.PolicyLogout && s.tokenExpired(pair.AccessToken) {
		s.log.Info(ctx, "persisted access token expired")
		s.dropSession(ctx)
		return &ActionError{Op: op, Kind: KindAuthentication, Message: "session expired", Err: client.ErrUnauthorized}
	}

	s.mu.Lock()
	s.token = pair.AccessToken
	s.dirty |= dirtySession
	epoch := s.epoch
	s.unlock()

	user, err := s.api.Profile(ctx)
	if err != nil {
		s.log.Warn(ctx, "session resume failed", "err", err)
		s.dropSession(ctx)
		return s.sessionFailed(op, err)
	}

	// the probe may have refreshed the pair under PolicyRefresh
	token := pair.AccessToken
	if cur, err := s.tokens.Load(ctx); err == nil {
		token = cur.AccessToken
	}

	if !s.authenticated(ctx, epoch, token, user) {
		return superseded(op)
	}
	return nil
}

// Login authenticates, persists the token pair and loads the profile. If the
// profile cannot be loaded the previously persisted tokens are put back and
// the session is left as it was.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	const op = "login"
	if err := validateCredentials(creds); err != nil {
		return invalid(op, err)
	}

	epoch := s.begin()
	defer s.end()

	pair, user, err := s.login(ctx, creds)
	if err != nil {
		return s.sessionFailed(op, err)
	}

	if !s.authenticated(ctx, epoch, pair.AccessToken, user) {
		return superseded(op)
	}
	return nil
}

func (s *Store) login(ctx context.Context, creds models.Credentials) (models.Tokens, models.User, error) {
	prev, prevErr := s.tokens.Load(ctx)

	var (
		pair models.Tokens
		err  error
	)
	if creds.UsesEmail() {
		pair, err = s.api.LoginEmail(ctx, creds.Email, creds.Password)
	} else {
		pair, err = s.api.Login(ctx, creds.Username, creds.Password)
	}
	if err != nil {
		return models.Tokens{}, models.User{}, err
	}
	if pair.AccessToken == "" {
		return models.Tokens{}, models.User{}, fmt.Errorf("%w: empty access token", client.ErrUnauthorized)
	}

	if err := s.tokens.Save(ctx, pair); err != nil {
		return models.Tokens{}, models.User{}, fmt.Errorf("persist tokens: %w", err)
	}

	user, err := s.api.Profile(client.WithoutSessionHooks(ctx))
	if err != nil {
		var restoreErr error
		if prevErr == nil {
			restoreErr = s.tokens.Save(ctx, prev)
		} else {
			restoreErr = s.tokens.Clear(ctx)
		}
		if restoreErr != nil {
			s.log.Error(ctx, "cannot restore previous tokens", "err", restoreErr)
		}
		return models.Tokens{}, models.User{}, err
	}

	return pair, user, nil
}

// Register creates the account and signs in with the same credentials. Any
// failure is reported as one registration error and leaves no token behind.
func (s *Store) Register(ctx context.Context, u models.UserCreate) error {
	const op = "register"
	if err := validateNewUser(u); err != nil {
		return invalid(op, err)
	}

	epoch := s.begin()
	defer s.end()

	if _, err := s.api.Register(ctx, u); err != nil {
		return s.sessionFailed(op, registrationError(err))
	}

	pair, user, err := s.login(ctx, models.Credentials{Username: u.Username, Password: u.Password})
	if err != nil {
		return s.sessionFailed(op, registrationError(err))
	}

	if !s.authenticated(ctx, epoch, pair.AccessToken, user) {
		return superseded(op)
	}
	return nil
}

// Logout forgets the session locally. The backend is not contacted.
func (s *Store) Logout(ctx context.Context) error {
	err := s.tokens.Clear(ctx)

	s.mu.Lock()
	s.clearSessionLocked()
	s.sessErr = ""
	s.started = true
	s.dirty |= dirtySession
	s.unlock()

	if err != nil {
		s.log.Error(ctx, "cannot clear persisted tokens", "err", err)
		return Classify("logout", fmt.Errorf("clear tokens: %w", err))
	}
	s.log.Info(ctx, "logged out")
	return nil
}

// UpdateProfile sends the changed fields and replaces the current user with
// the record the backend returns.
func (s *Store) UpdateProfile(ctx context.Context, upd models.UserUpdate) error {
	const op = "update_profile"
	if err := validateProfileUpdate(upd); err != nil {
		return invalid(op, err)
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return invalid(op, common.ErrorNotAuthenticated)
	}
	epoch := s.epoch
	s.beginLocked()
	s.unlock()
	defer s.end()

	user, err := s.api.UpdateProfile(ctx, upd)
	if err != nil {
		return s.sessionFailed(op, err)
	}

	s.mu.Lock()
	if s.epoch == epoch && s.user != nil && s.user.ID == user.ID {
		s.user = &user
		s.sessErr = ""
		s.dirty |= dirtySession
	}
	s.unlock()
	return nil
}

// Refresh exchanges the persisted refresh token for a new pair. Concurrent
// callers share one request. It implements client.SessionHooks.
func (s *Store) Refresh(ctx context.Context) bool {
	v, _, _ := s.refreshes.Do("refresh", func() (any, error) {
		cur, err := s.tokens.Load(ctx)
		if err != nil || cur.RefreshToken == "" {
			s.log.Debug(ctx, "nothing to refresh with")
			return false, common.ErrorNoRefreshToken
		}

		pair, err := s.api.Refresh(ctx, cur.RefreshToken)
		if err != nil || pair.AccessToken == "" {
			s.log.Warn(ctx, "token refresh failed", "err", err)
			return false, err
		}
		if pair.RefreshToken == "" {
			pair.RefreshToken = cur.RefreshToken
		}
		if err := s.tokens.Save(ctx, pair); err != nil {
			s.log.Error(ctx, "cannot persist refreshed tokens", "err", err)
			return false, err
		}

		s.mu.Lock()
		if s.token != "" {
			s.token = pair.AccessToken
			s.dirty |= dirtySession
		}
		s.unlock()
		s.log.Debug(ctx, "tokens refreshed")
		return true, nil
	})
	ok, _ := v.(bool)
	return ok
}

// Expire ends a session the backend no longer accepts. It implements
// client.SessionHooks.
func (s *Store) Expire(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Error(ctx, "cannot clear persisted tokens", "err", err)
	}

	s.mu.Lock()
	had := s.token != "" || s.user != nil
	s.clearSessionLocked()
	if had {
		s.sessErr = "session expired"
		s.dirty |= dirtySession | dirtyExpired
	}
	s.unlock()

	if had {
		s.log.Info(ctx, "session expired")
	}
}

// authenticated installs user and fetches the cart when the identity changed.
// A result from an older epoch (the session was logged out or expired while
// the action ran) is dropped together with the tokens it persisted, and false
// is returned.
func (s *Store) authenticated(ctx context.Context, epoch uint64, token string, user models.User) bool {
	s.mu.Lock()
	if s.epoch != epoch {
		s.unlock()
		s.log.Info(ctx, "sign-in result dropped, session changed", "user_id", user.ID)
		s.forget(ctx, token)
		return false
	}
	prev := s.user
	s.token = token
	s.user = &user
	s.sessErr = ""
	s.dirty |= dirtySession

	fetch := prev == nil || prev.ID != user.ID
	if fetch {
		if s.cart != nil || s.cartErr != "" {
			s.dirty |= dirtyCart
		}
		s.cart = nil
		s.cartErr = ""
		s.epoch++
	}
	s.unlock()

	s.log.Info(ctx, "signed in", "user_id", user.ID, "username", user.Username)

	if fetch {
		if err := s.FetchCart(ctx); err != nil {
			s.log.Warn(ctx, "cart fetch after sign-in failed", "err", err)
		}
	}
	return true
}

// forget clears the persisted pair if it is still the one holding token.
func (s *Store) forget(ctx context.Context, token string) {
	cur, err := s.tokens.Load(ctx)
	if err != nil || cur.AccessToken != token {
		return
	}
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Error(ctx, "cannot clear persisted tokens", "err", err)
	}
}

func superseded(op string) error {
	return &ActionError{Op: op, Kind: KindAuthentication, Message: "signed out before sign-in completed", Err: common.ErrorSessionChanged}
}

func (s *Store) dropSession(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Error(ctx, "cannot clear persisted tokens", "err", err)
	}
	s.mu.Lock()
	s.clearSessionLocked()
	s.unlock()
}

// sessionFailed records a failed session action and returns its error.
func (s *Store) sessionFailed(op string, err error) error {
	ae := Classify(op, err)
	s.mu.Lock()
	s.sessErr = ae.Error()
	s.dirty |= dirtySession
	s.unlock()
	return ae
}

func registrationError(err error) error {
	return &ActionError{Op: "register", Kind: kindOf(err), Message: "registration failed: " + messageOf(err), Err: err}
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// The signature is not checked; tokens that do not parse count as live.
func (s *Store) tokenExpired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}
