// Package services contains the application services of the rent console.
// This file defines the authentication flows: login, logout, two-step
// registration and password reset.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/validation"
)

// RegistrationForm is the first registration step. AcceptTerms must be true.
type RegistrationForm struct {
	Username     string `label:"Username" validate:"required"`
	Email        string `label:"Email" validate:"required,email"`
	MobileNumber string `label:"Mobile number" validate:"required"`
	AcceptTerms  bool
}

// FinishRegistrationForm completes registration with the OTP sent to the user.
type FinishRegistrationForm struct {
	Username        string `label:"Username" validate:"required"`
	OTP             string `label:"OTP" validate:"required"`
	Password        string `label:"Password" validate:"required"`
	ConfirmPassword string `label:"Password confirmation" validate:"eqfield=Password"`
}

// ResetPasswordForm sets a new password with the OTP from forgot-password.
type ResetPasswordForm struct {
	Username        string `label:"Username" validate:"required"`
	OTP             string `label:"OTP" validate:"required"`
	NewPassword     string `label:"New password" validate:"required"`
	ConfirmPassword string `label:"Password confirmation" validate:"eqfield=NewPassword"`
}

// AuthService defines authentication operations for the console.
//
// Every method validates its input first and makes no request when
// validation fails.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (models.Session, error)
	Logout(ctx context.Context) error
	StartRegistration(ctx context.Context, f RegistrationForm) error
	FinishRegistration(ctx context.Context, f FinishRegistrationForm) error
	ForgotPassword(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, f ResetPasswordForm) error
}

// authService is the concrete AuthService backed by the API client and the
// session service.
type authService struct {
	client   api.Client
	sessions SessionService
	logger   logging.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(client api.Client, sessions SessionService, logger logging.Logger) AuthService {
	return &authService{client: client, sessions: sessions, logger: logger}
}

// Login authenticates and starts a persisted session.
func (a *authService) Login(ctx context.Context, username string, password []byte) (models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Session{}, validation.New("username", "Username required")
	}
	if len(password) == 0 {
		return models.Session{}, validation.New("password", "Password required")
	}

	res, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return models.Session{}, fmt.Errorf("login error: %w", err)
	}
	if res.Username == "" {
		res.Username = username
	}

	sess, err := a.sessions.Start(ctx, res)
	if err != nil {
		return models.Session{}, fmt.Errorf("session saving error: %w", err)
	}

	a.logger.Info(ctx, "logged in", "username", sess.Username, "role", sess.Role)
	return sess, nil
}

// Logout ends the session.
func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.End(ctx)
}

func (a *authService) StartRegistration(ctx context.Context, f RegistrationForm) error {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.MobileNumber = strings.TrimSpace(f.MobileNumber)

	if err := validation.ValidateStruct(f); err != nil {
		return err
	}
	if !f.AcceptTerms {
		return validation.New("acceptTerms", "You must accept the Terms & Conditions")
	}

	return a.client.StartRegistration(ctx, models.RegistrationStart{
		Username:     f.Username,
		Email:        f.Email,
		MobileNumber: f.MobileNumber,
	})
}

func (a *authService) FinishRegistration(ctx context.Context, f FinishRegistrationForm) error {
	f.Username = strings.TrimSpace(f.Username)
	f.OTP = strings.TrimSpace(f.OTP)

	if err := validation.ValidateStruct(f); err != nil {
		return err
	}

	return a.client.FinishRegistration(ctx, models.RegistrationFinish{
		Username: f.Username,
		OTP:      f.OTP,
		Password: f.Password,
	})
}

func (a *authService) ForgotPassword(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return validation.New("username", "Username required")
	}
	return a.client.ForgotPassword(ctx, username)
}

func (a *authService) ResetPassword(ctx context.Context, f ResetPasswordForm) error {
	f.Username = strings.TrimSpace(f.Username)
	f.OTP = strings.TrimSpace(f.OTP)

	if err := validation.ValidateStruct(f); err != nil {
		return err
	}

	return a.client.ResetPassword(ctx, f.Username, f.OTP, f.NewPassword)
}
