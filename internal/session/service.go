package session

import (
	"context"
	"fmt"

	"klaso-client/internal/logger"
	"klaso-client/internal/model"

	"github.com/rs/zerolog"
)

// AuthAPI is the authentication collaborator.
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (string, error)
	Profile(ctx context.Context, credential string) (model.User, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error
}

type Service struct {
	api    AuthAPI
	holder *Holder
	log    zerolog.Logger
}

func NewService(api AuthAPI, holder *Holder) *Service {
	return &Service{
		api:    api,
		holder: holder,
		log:    logger.For("session"),
	}
}

func (s *Service) Holder() *Holder {
	return s.holder
}

// Login exchanges credentials for a bearer credential, then resolves the
// identity behind it. The holder is only touched once both calls succeed.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, error) {
	credential, err := s.api.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("Login failed")
		return model.User{}, err
	}

	user, err := s.resolve(ctx, credential)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to load profile: %w", err)
	}

	s.holder.Authenticate(user, credential)
	return user, nil
}

// Restore re-establishes a session from a previously stored credential.
// A rejected credential leaves the holder anonymous.
func (s *Service) Restore(ctx context.Context, credential string) (model.User, error) {
	user, err := s.resolve(ctx, credential)
	if err != nil {
		s.log.Warn().Err(err).Msg("Stored credential rejected")
		s.holder.Clear()
		return model.User{}, err
	}

	s.holder.Authenticate(user, credential)
	return user, nil
}

func (s *Service) Logout() {
	s.holder.Clear()
}

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	return s.api.Register(ctx, req)
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	return s.api.ForgotPassword(ctx, model.ForgotPasswordRequest{Email: email})
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.api.ResetPassword(ctx, model.ResetPasswordRequest{Token: token, NewPassword: newPassword})
}

func (s *Service) resolve(ctx context.Context, credential string) (model.User, error) {
	user, err := s.api.Profile(ctx, credential)
	if err != nil {
		return model.User{}, err
	}

	if user.Email == "" {
		if claims, ok := ParseCredential(credential); ok {
			user.Email = claims.Email
		}
	}
	return user, nil
}
