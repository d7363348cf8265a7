package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/common"
)

// getSimpleText, getOptionalText and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getOptionalText = GetOptionalText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

// Register prompts for the registration form and creates an account. The
// backend logs the new user in right away.
//
// The password byte slices are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter username", &reg.Username},
		{"Enter email", &reg.Email},
		{"Enter first name", &reg.FirstName},
		{"Enter last name", &reg.LastName},
		{"Enter phone number (optional)", &reg.PhoneNumber},
		{"Enter cedula (optional)", &reg.Cedula},
		{"Enter oficio (optional)", &reg.Oficio},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		fmt.Fprintln(a.out, "Passwords do not match")
		return errPasswordMismatch
	}
	reg.Password1, reg.Password2 = string(password), string(confirm)

	if !a.session.Register(ctx, reg) {
		return a.reportFailure("Registration")
	}

	if u := a.session.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "Welcome, %s!\n", u.FullName())
	}
	return nil
}

// Login prompts the user for credentials and authenticates. On failure the
// previous state is kept and the cause is printed.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if !a.session.Login(ctx, models.Credentials{Username: username, Password: string(password)}) {
		return a.reportFailure("Login")
	}

	if u := a.session.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "Logged in as %s\n", u.Username)
	}
	return nil
}

// Logout ends the session. It always succeeds locally.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
