package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophershop/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a display name, an email and a password and creates
// the account with a "user" profile. It does not sign in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.SignUp(ctx, name, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created, you can login now.")
	return nil
}

// Login prompts for credentials and signs in. The stored session and the
// user's favorites survive restarts until Logout.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.SignIn(ctx, email, string(password)); err != nil {
		return err
	}

	sess, _ := a.session.Session()
	who := sess.Name
	if who == "" {
		who = sess.Email
	}
	successColor.Fprintf(a.out, "Welcome, %s!\n", who)
	return nil
}

// ResetPassword asks the identity provider to mail a reset link.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.session.SendPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password reset email sent.")
	return nil
}

// Logout forgets the session and favorites. The cart is kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
