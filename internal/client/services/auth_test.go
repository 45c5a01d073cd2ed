package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(fc *fakeClient) (AuthService, *memSessionRepo) {
	repo := &memSessionRepo{}
	sessions := NewSessionService(repo, fc, logging.Discard(), 15*time.Minute)
	return NewAuthService(fc, sessions, logging.Discard()), repo
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var ve *validation.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Message
}

func TestAuth_Login_ValidatesBeforeRequest(t *testing.T) {
	fc := &fakeClient{}
	a, _ := newTestAuth(fc)

	_, err := a.Login(context.Background(), "  ", []byte("pw"))
	assert.Equal(t, "Username required", validationMessage(t, err))

	_, err = a.Login(context.Background(), "alice", nil)
	assert.Equal(t, "Password required", validationMessage(t, err))

	assert.Empty(t, fc.Calls())
}

func TestAuth_Login_StartsSession(t *testing.T) {
	fc := &fakeClient{loginRes: models.LoginResult{Role: "ADMIN", Token: "tok"}}
	a, repo := newTestAuth(fc)

	sess, err := a.Login(context.Background(), " admin ", []byte("secret"))
	require.NoError(t, err)

	assert.Equal(t, "admin", sess.Username)
	assert.Equal(t, models.RoleAdmin, sess.Role)
	assert.Equal(t, "tok", fc.token)
	require.NotNil(t, repo.stored)

	require.NoError(t, a.Logout(context.Background()))
	assert.Nil(t, repo.stored)
	assert.Empty(t, fc.token)
}

func TestAuth_Login_WrapsClientError(t *testing.T) {
	fc := &fakeClient{loginErr: &api.HTTPError{Status: 401, Message: "Bad credentials", FromBackend: true}}
	a, repo := newTestAuth(fc)

	_, err := a.Login(context.Background(), "alice", []byte("nope"))
	require.Error(t, err)
	assert.Equal(t, "Bad credentials", api.UserMessage(err))
	assert.Nil(t, repo.stored)
}

func TestAuth_StartRegistration(t *testing.T) {
	fc := &fakeClient{}
	a, _ := newTestAuth(fc)

	form := RegistrationForm{Username: "alice", Email: "alice@example.com", MobileNumber: "9999999999"}
	err := a.StartRegistration(context.Background(), form)
	assert.Equal(t, "You must accept the Terms & Conditions", validationMessage(t, err))

	form.Email = "not-an-email"
	form.AcceptTerms = true
	err = a.StartRegistration(context.Background(), form)
	assert.Equal(t, "Enter a valid email address", validationMessage(t, err))
	assert.Empty(t, fc.Calls())

	form.Email = " alice@example.com "
	require.NoError(t, a.StartRegistration(context.Background(), form))
	require.Len(t, fc.registration, 1)
	assert.Equal(t, models.RegistrationStart{Username: "alice", Email: "alice@example.com", MobileNumber: "9999999999"}, fc.registration[0])
}

func TestAuth_FinishRegistration_PasswordsMustMatch(t *testing.T) {
	fc := &fakeClient{}
	a, _ := newTestAuth(fc)

	form := FinishRegistrationForm{Username: "alice", OTP: "123456", Password: "a", ConfirmPassword: "b"}
	err := a.FinishRegistration(context.Background(), form)
	assert.Equal(t, "Password confirmation does not match", validationMessage(t, err))
	assert.Empty(t, fc.Calls())

	form.ConfirmPassword = "a"
	require.NoError(t, a.FinishRegistration(context.Background(), form))
	assert.Equal(t, []string{"registration/finish"}, fc.Calls())
}

func TestAuth_ForgotAndResetPassword(t *testing.T) {
	fc := &fakeClient{}
	a, _ := newTestAuth(fc)

	err := a.ForgotPassword(context.Background(), "")
	assert.True(t, errors.As(err, new(*validation.ValidationError)))

	require.NoError(t, a.ForgotPassword(context.Background(), "alice"))

	err = a.ResetPassword(context.Background(), ResetPasswordForm{Username: "alice", NewPassword: "x", ConfirmPassword: "x"})
	assert.Equal(t, "OTP required", validationMessage(t, err))

	require.NoError(t, a.ResetPassword(context.Background(), ResetPasswordForm{
		Username: "alice", OTP: "1", NewPassword: "x", ConfirmPassword: "x",
	}))
	assert.Equal(t, []string{"forgot-password", "reset-password"}, fc.Calls())
}
