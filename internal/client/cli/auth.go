package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) askSecret(prompt string) ([]byte, error) {
	return getSecret(a.reader, prompt, a.out)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// login prompts for credentials, starts the session and opens the home view.
func (a *App) login(ctx context.Context, _ []string) error {
	if sess, ok := a.sessions.Current(); ok {
		return usagef("Already logged in as %s. Log out first.", sess.Username)
	}

	username, err := a.ask("Enter username")
	if err != nil {
		return err
	}
	password, err := a.askSecret("Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	a.resetViews()
	a.watcher.Start()
	a.println(fmt.Sprintf("Welcome, %s!", sess.Username))
	return a.home(ctx, nil)
}

// logout ends the session and forgets every loaded view.
func (a *App) logout(ctx context.Context, _ []string) error {
	a.watcher.Stop()
	a.resetViews()
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) whoami(_ context.Context, _ []string) error {
	sess, ok := a.sessions.Current()
	if !ok {
		return services.ErrNoSession
	}
	a.println(fmt.Sprintf("%s (%s), last active %s", sess.Username, sess.Role, sess.LastActivity.Format("2006-01-02 15:04:05")))
	if !sess.ExpiresAt.IsZero() {
		a.println("Token expires", sess.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// home opens the landing view of the logged-in role.
func (a *App) home(ctx context.Context, _ []string) error {
	sess, ok := a.sessions.Current()
	if !ok {
		return services.ErrNoSession
	}
	return a.Exec(ctx, services.HomeFor(sess.Role), nil)
}

func (a *App) register(ctx context.Context, _ []string) error {
	var f services.RegistrationForm
	var err error

	if f.Username, err = a.ask("Choose a username"); err != nil {
		return err
	}
	if f.Email, err = a.ask("Email"); err != nil {
		return err
	}
	if f.MobileNumber, err = a.ask("Mobile number"); err != nil {
		return err
	}
	f.AcceptTerms = a.confirm("Do you accept the Terms & Conditions?")

	if err := a.auth.StartRegistration(ctx, f); err != nil {
		return err
	}
	a.println("An OTP was sent to your email. Finish with 'register-otp'.")
	return nil
}

func (a *App) finishRegistration(ctx context.Context, _ []string) error {
	var f services.FinishRegistrationForm
	var err error

	if f.Username, err = a.ask("Username"); err != nil {
		return err
	}
	if f.OTP, err = a.ask("OTP"); err != nil {
		return err
	}
	if f.Password, f.ConfirmPassword, err = a.askNewPassword(); err != nil {
		return err
	}

	if err := a.auth.FinishRegistration(ctx, f); err != nil {
		return err
	}
	a.println("Registration complete. You can log in now.")
	return nil
}

func (a *App) forgotPassword(ctx context.Context, _ []string) error {
	username, err := a.ask("Username")
	if err != nil {
		return err
	}
	if err := a.auth.ForgotPassword(ctx, username); err != nil {
		return err
	}
	a.println("If the account exists, an OTP was sent. Continue with 'reset'.")
	return nil
}

func (a *App) resetPassword(ctx context.Context, _ []string) error {
	var f services.ResetPasswordForm
	var err error

	if f.Username, err = a.ask("Username"); err != nil {
		return err
	}
	if f.OTP, err = a.ask("OTP"); err != nil {
		return err
	}
	if f.NewPassword, f.ConfirmPassword, err = a.askNewPassword(); err != nil {
		return err
	}

	if err := a.auth.ResetPassword(ctx, f); err != nil {
		return err
	}
	a.println("Password updated. You can log in now.")
	return nil
}

func (a *App) askNewPassword() (string, string, error) {
	pw, err := a.askSecret("New password")
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)

	again, err := a.askSecret("Repeat password")
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(again)

	return string(pw), string(again), nil
}
