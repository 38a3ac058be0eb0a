package slice

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"taskflow/internal/service"
	"taskflow/internal/storage"
)

// UserState is a snapshot of the user slice.
type UserState struct {
	User          *service.User `json:"user" yaml:"user"`
	Authenticated bool          `json:"authenticated" yaml:"authenticated"`
	Loading       bool          `json:"loading" yaml:"loading"`
	Error         string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Users tracks the signed-in user. The profile is cached in local storage
// under storage.KeyUser.
type Users struct {
	kv     storage.KV
	svc    service.Service
	logger zerolog.Logger

	mu    sync.Mutex
	state UserState
}

// NewUsers creates the user slice. svc may be nil when only the cached
// session is needed.
func NewUsers(kv storage.KV, svc service.Service, logger zerolog.Logger) *Users {
	return &Users{
		kv:     kv,
		svc:    svc,
		logger: logger.With().Str("slice", "user").Logger(),
		state:  UserState{Loading: true},
	}
}

// State returns a copy of the current state.
func (u *Users) State() UserState {
	u.mu.Lock()
	defer u.mu.Unlock()
	st := u.state
	if st.User != nil {
		cp := *st.User
		st.User = &cp
	}
	return st
}

// CheckAuth loads the cached session. A missing session is not an error.
func (u *Users) CheckAuth(ctx context.Context) error {
	u.setLoading()

	var cached service.User
	found, err := storage.GetJSON(ctx, u.kv, storage.KeyUser, &cached)

	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Loading = false
	if err != nil {
		u.state.Error = err.Error()
		u.state.Authenticated = false
		u.logger.Error().
			Err(err).
			Msg("failed to read cached session")
		return err
	}
	if found {
		u.state.User = &cached
	} else {
		u.state.User = nil
	}
	u.state.Authenticated = found
	return nil
}

// SignIn caches the user's profile and marks the session authenticated.
func (u *Users) SignIn(ctx context.Context, user service.User) error {
	if err := storage.SetJSON(ctx, u.kv, storage.KeyUser, user); err != nil {
		u.SetError(err.Error())
		return err
	}
	u.SetUser(&user)
	u.logger.Info().
		Str("user_id", string(user.ID)).
		Msg("signed in")
	return nil
}

// Logout removes the cached session.
func (u *Users) Logout(ctx context.Context) error {
	if err := u.kv.Delete(ctx, storage.KeyUser); err != nil {
		u.logger.Error().
			Err(err).
			Msg("failed to remove cached session")
		return err
	}
	u.ClearUser()
	u.logger.Info().Msg("logged out")
	return nil
}

// UpdateProfile updates the remote user record and merges the response into
// the cached session.
func (u *Users) UpdateProfile(ctx context.Context, user service.User) (service.User, error) {
	if u.svc == nil {
		return service.User{}, service.ErrUnsupported
	}

	updated, err := u.svc.UpdateUser(ctx, user)
	if err != nil {
		u.SetError(err.Error())
		u.logger.Error().
			Err(err).
			Msg("failed to update profile")
		return service.User{}, err
	}

	var cached service.User
	found, err := storage.GetJSON(ctx, u.kv, storage.KeyUser, &cached)
	if err != nil {
		return service.User{}, err
	}
	if found {
		if err := storage.SetJSON(ctx, u.kv, storage.KeyUser, cached.Merge(updated)); err != nil {
			return service.User{}, fmt.Errorf("cache profile: %w", err)
		}
	}

	u.mu.Lock()
	u.state.User = &updated
	u.mu.Unlock()
	return updated, nil
}

// SetUser replaces the in-memory user. A nil user signs out.
func (u *Users) SetUser(user *service.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if user != nil {
		cp := *user
		user = &cp
	}
	u.state.User = user
	u.state.Authenticated = user != nil
	u.state.Loading = false
}

// ClearUser forgets the in-memory user and any error.
func (u *Users) ClearUser() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.User = nil
	u.state.Authenticated = false
	u.state.Error = ""
}

// SetError records an error message.
func (u *Users) SetError(msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Error = msg
}

func (u *Users) setLoading() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Loading = true
}
