package slice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"taskflow/internal/service"
	"taskflow/internal/slice"
	"taskflow/internal/storage"
	"taskflow/internal/testutil"
)

func TestUsers_InitialStateLoading(t *testing.T) {
	u := slice.NewUsers(storage.NewMemory(), nil, zerolog.Nop())
	st := u.State()
	if !st.Loading || st.Authenticated || st.User != nil {
		t.Errorf("unexpected initial state %+v", st)
	}
}

func TestUsers_CheckAuthWithoutSession(t *testing.T) {
	u := slice.NewUsers(storage.NewMemory(), nil, zerolog.Nop())
	if err := u.CheckAuth(context.Background()); err != nil {
		t.Fatalf("CheckAuth: %v", err)
	}
	st := u.State()
	if st.Loading || st.Authenticated || st.User != nil {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestUsers_SignInCheckAuthLogout(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	u := slice.NewUsers(kv, nil, zerolog.Nop())
	if err := u.SignIn(ctx, service.User{ID: "7", Name: "Ada"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	// A fresh slice sees the cached session
	fresh := slice.NewUsers(kv, nil, zerolog.Nop())
	if err := fresh.CheckAuth(ctx); err != nil {
		t.Fatalf("CheckAuth: %v", err)
	}
	st := fresh.State()
	if !st.Authenticated || st.User == nil || st.User.Name != "Ada" {
		t.Fatalf("expected cached user, got %+v", st)
	}

	if err := fresh.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if st := fresh.State(); st.Authenticated || st.User != nil {
		t.Errorf("expected signed out, got %+v", st)
	}
	if _, err := kv.Get(ctx, storage.KeyUser); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected session removed, got %v", err)
	}
}

func TestUsers_CheckAuthCorruptSession(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	kv.Set(ctx, storage.KeyUser, []byte("{"))

	u := slice.NewUsers(kv, nil, zerolog.Nop())
	if err := u.CheckAuth(ctx); err == nil {
		t.Fatal("expected error")
	}
	st := u.State()
	if st.Authenticated || st.Error == "" || st.Loading {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestUsers_UpdateProfileMergesCachedSession(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	svc := testutil.NewFakeService()

	u := slice.NewUsers(kv, svc, zerolog.Nop())
	u.SignIn(ctx, service.User{ID: "100", Name: "Test User", AvatarURL: "me.png"})

	updated, err := u.UpdateProfile(ctx, service.User{ID: "100", Name: "Renamed"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("expected remote name updated, got %+v", updated)
	}

	var cached service.User
	if _, err := storage.GetJSON(ctx, kv, storage.KeyUser, &cached); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if cached.Name != "Renamed" || cached.AvatarURL != "me.png" || cached.Email != "test@example.com" {
		t.Errorf("unexpected cached session %+v", cached)
	}
	if st := u.State(); st.User == nil || st.User.Name != "Renamed" {
		t.Errorf("unexpected state user %+v", st.User)
	}
}

func TestUsers_UpdateProfileRejected(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.UpdateUserErr = errors.New("token expired or revoked")

	u := slice.NewUsers(storage.NewMemory(), svc, zerolog.Nop())
	if _, err := u.UpdateProfile(context.Background(), service.User{Name: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if u.State().Error != "token expired or revoked" {
		t.Errorf("expected error recorded, got %q", u.State().Error)
	}
}

func TestUsers_UpdateProfileWithoutService(t *testing.T) {
	u := slice.NewUsers(storage.NewMemory(), nil, zerolog.Nop())
	_, err := u.UpdateProfile(context.Background(), service.User{Name: "x"})
	if !errors.Is(err, service.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
