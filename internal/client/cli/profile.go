package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sanes/internal/client/models"
)

// Profile prints the current user as cached by the session.
func (a *App) Profile(ctx context.Context) error {
	u := a.session.CurrentUser()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	w := newTable(a.out)
	fmt.Fprintf(w, "ID\t%d\n", u.ID)
	fmt.Fprintf(w, "Username\t%s\n", u.Username)
	fmt.Fprintf(w, "Name\t%s\n", u.FullName())
	fmt.Fprintf(w, "Email\t%s\n", u.Email)
	fmt.Fprintf(w, "Phone\t%s\n", u.PhoneNumber)
	fmt.Fprintf(w, "Cedula\t%s\n", u.Cedula)
	fmt.Fprintf(w, "Oficio\t%s\n", u.Oficio)
	fmt.Fprintf(w, "Reputacion\t%.1f\n", u.Reputacion)
	return w.Flush()
}

// UpdateProfile asks for each editable field and sends only the ones the
// user filled in.
func (a *App) UpdateProfile(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	var patch models.ProfilePatch
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"Email", &patch.Email},
		{"First name", &patch.FirstName},
		{"Last name", &patch.LastName},
		{"Phone number", &patch.PhoneNumber},
		{"Cedula", &patch.Cedula},
		{"Oficio", &patch.Oficio},
	}
	for _, f := range fields {
		v, err := getOptionalText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if patch.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	if !a.session.UpdateUser(ctx, patch) {
		return a.reportFailure("Profile update")
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}
