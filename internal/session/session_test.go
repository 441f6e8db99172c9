package session

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"klaso-client/internal/model"
	"klaso-client/pkg/errors"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

type fakeAuth struct {
	credential string
	loginErr   error
	user       model.User
	profileErr error
	profiles   []string
}

func (f *fakeAuth) Login(context.Context, model.LoginRequest) (string, error) {
	return f.credential, f.loginErr
}

func (f *fakeAuth) Profile(_ context.Context, credential string) (model.User, error) {
	f.profiles = append(f.profiles, credential)
	return f.user, f.profileErr
}

func (f *fakeAuth) Register(_ context.Context, req model.RegisterRequest) (model.User, error) {
	return model.User{ID: "new", Email: req.Email}, nil
}

func (f *fakeAuth) ForgotPassword(context.Context, model.ForgotPasswordRequest) error { return nil }

func (f *fakeAuth) ResetPassword(context.Context, model.ResetPasswordRequest) error { return nil }

func TestHolderLifecycle(t *testing.T) {
	h := NewHolder()

	_, err := h.Require()
	assert.ErrorIs(t, err, errors.ErrNotAuthenticated)
	assert.False(t, h.IsAuthenticated())
	h.Clear()

	h.Authenticate(model.User{ID: "u1"}, "opaque")
	user, err := h.Require()
	require.NoError(t, err)
	assert.Equal(t, model.ID("u1"), user.ID)
	assert.Equal(t, "opaque", h.Credential())
	assert.True(t, h.Claims().ExpiresAt.IsZero())

	h.Authenticate(model.User{ID: "u2"}, "other")
	user, _ = h.Current()
	assert.Equal(t, model.ID("u2"), user.ID)

	h.Invalidate()
	assert.False(t, h.IsAuthenticated())
	assert.Empty(t, h.Credential())
}

func TestParseCredential(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	claims, ok := ParseCredential(signed(t, jwt.MapClaims{"sub": "prof@klaso.test", "exp": exp.Unix()}))
	require.True(t, ok)
	assert.Equal(t, "prof@klaso.test", claims.Subject)
	assert.Equal(t, "prof@klaso.test", claims.Email)
	assert.Equal(t, exp, claims.ExpiresAt)

	claims, ok = ParseCredential(signed(t, jwt.MapClaims{"sub": "42", "email": "x@klaso.test"}))
	require.True(t, ok)
	assert.Equal(t, "x@klaso.test", claims.Email)
	assert.True(t, claims.ExpiresAt.IsZero())

	_, ok = ParseCredential("not-a-jwt")
	assert.False(t, ok)
	_, ok = ParseCredential("")
	assert.False(t, ok)
}

func TestLogin(t *testing.T) {
	token := signed(t, jwt.MapClaims{"sub": "ada@klaso.test"})
	api := &fakeAuth{credential: token, user: model.User{ID: "u1", FirstName: "Ada"}}
	svc := NewService(api, NewHolder())

	user, err := svc.Login(context.Background(), "ada@klaso.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ada@klaso.test", user.Email)
	assert.Equal(t, []string{token}, api.profiles)
	assert.Equal(t, token, svc.Holder().Credential())

	svc.Logout()
	assert.False(t, svc.Holder().IsAuthenticated())
}

func TestLoginFailureKeepsHolder(t *testing.T) {
	holder := NewHolder()
	holder.Authenticate(model.User{ID: "previous"}, "old")

	svc := NewService(&fakeAuth{loginErr: errors.NewRemoteError("POST /auth/login", 401, "Bad credentials", nil)}, holder)
	_, err := svc.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.Equal(t, 401, errors.RemoteStatus(err))

	user, _ := holder.Current()
	assert.Equal(t, model.ID("previous"), user.ID)

	svc = NewService(&fakeAuth{credential: "tok", profileErr: stderrors.New("profile down")}, holder)
	_, err = svc.Login(context.Background(), "a@b.c", "secret")
	require.Error(t, err)
	assert.Equal(t, "old", holder.Credential())
}

func TestRestore(t *testing.T) {
	holder := NewHolder()
	api := &fakeAuth{user: model.User{ID: "u1", Email: "ada@klaso.test"}}
	svc := NewService(api, holder)

	user, err := svc.Restore(context.Background(), "stored")
	require.NoError(t, err)
	assert.Equal(t, model.ID("u1"), user.ID)
	assert.Equal(t, "stored", holder.Credential())

	api.profileErr = errors.NewRemoteError("GET /auth/me", 401, "expired", nil)
	_, err = svc.Restore(context.Background(), "stale")
	require.Error(t, err)
	assert.False(t, holder.IsAuthenticated())
}
