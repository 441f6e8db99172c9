package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"klaso-client/internal/model"
	"klaso-client/pkg/errors"
)

// AuthClient is the authentication collaborator. Its calls never carry the
// session credential implicitly.
type AuthClient struct {
	client *Client
}

func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

// Login returns the bearer credential issued for the given account.
func (a *AuthClient) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	var raw json.RawMessage
	err := a.client.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   req,
		out:    &raw,
		mode:   anonymous,
	})
	if err != nil {
		return "", err
	}

	token, err := tokenOf(raw)
	if err != nil {
		return "", errors.NewRemoteError("POST /auth/login", 0, "", err)
	}
	return token, nil
}

// tokenOf accepts both a bare string and an object carrying a token field.
func tokenOf(raw json.RawMessage) (string, error) {
	var token string
	if err := json.Unmarshal(raw, &token); err == nil {
		if strings.TrimSpace(token) == "" {
			return "", errors.ErrEmptyData
		}
		return token, nil
	}

	var wrapped struct {
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrMalformedEnvelope, err)
	}
	if wrapped.Token != "" {
		return wrapped.Token, nil
	}
	if wrapped.AccessToken != "" {
		return wrapped.AccessToken, nil
	}
	return "", errors.ErrEmptyData
}

func (a *AuthClient) Profile(ctx context.Context, credential string) (model.User, error) {
	var user model.User
	err := a.client.do(ctx, call{
		method:     http.MethodGet,
		path:       "/auth/me",
		out:        &user,
		mode:       explicit,
		credential: credential,
	})
	return user, err
}

func (a *AuthClient) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	var user model.User
	err := a.client.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   req,
		out:    &user,
		mode:   anonymous,
	})
	return user, err
}

func (a *AuthClient) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) error {
	return a.client.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/forgot-password",
		body:   req,
		mode:   anonymous,
	})
}

func (a *AuthClient) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	return a.client.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/reset-password",
		body:   req,
		mode:   anonymous,
	})
}
