package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dmitrijs2005/sanes/internal/client/client"
	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/stretchr/testify/require"
)

// stubInputs feeds answers to getSimpleText in order and passwords to
// getPassword in order.
func stubInputs(t *testing.T, answers []string, passwords ...[]byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			t.Fatalf("unexpected prompt %q", prompt)
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			t.Fatalf("unexpected password prompt")
		}
		p := passwords[0]
		passwords = passwords[1:]
		return p, nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func TestLogin_Success(t *testing.T) {
	sess := &fakeSession{loginOK: true}
	a, out := newTestApp(sess, nil)
	pw := []byte("secret")
	stubInputs(t, []string{"bob"}, pw)

	require.NoError(t, a.Login(context.Background()))
	require.Equal(t, models.Credentials{Username: "bob", Password: "secret"}, sess.gotCreds)
	require.Contains(t, out.String(), "Logged in as bob")
	// пароль затирается после использования
	require.Equal(t, make([]byte, len(pw)), pw)
}

func TestLogin_FailureShowsCause(t *testing.T) {
	cause := &client.APIError{StatusCode: 400, Message: "Credenciales inválidas"}
	sess := &fakeSession{lastErr: cause}
	a, out := newTestApp(sess, nil)
	stubInputs(t, []string{"bob"}, []byte("wrong"))

	err := a.Login(context.Background())
	require.ErrorIs(t, err, cause)
	require.Contains(t, out.String(), "Credenciales inválidas")
	require.Nil(t, sess.user)
}

func TestLogin_InputError(t *testing.T) {
	a, _ := newTestApp(&fakeSession{loginOK: true}, nil)
	stubInputs(t, []string{"bob"})
	// stubInputs restores the original on cleanup
	getPassword = func(string, io.Writer) ([]byte, error) { return nil, errors.New("no tty") }

	require.EqualError(t, a.Login(context.Background()), "no tty")
}

func TestRegister_Success(t *testing.T) {
	sess := &fakeSession{registerOK: true}
	a, out := newTestApp(sess, nil)
	stubInputs(t,
		[]string{"alice", "alice@example.org", "Alice", "Lopez", "", "V-123", ""},
		[]byte("pw-1"), []byte("pw-1"),
	)

	require.NoError(t, a.Register(context.Background()))
	require.Equal(t, models.Registration{
		Username:  "alice",
		Email:     "alice@example.org",
		Password1: "pw-1",
		Password2: "pw-1",
		FirstName: "Alice",
		LastName:  "Lopez",
		Cedula:    "V-123",
	}, sess.gotReg)
	require.Contains(t, out.String(), "Welcome, Alice Lopez!")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	sess := &fakeSession{registerOK: true}
	a, out := newTestApp(sess, nil)
	stubInputs(t,
		[]string{"alice", "a@b.c", "A", "L", "", "", ""},
		[]byte("one"), []byte("two"),
	)

	require.ErrorIs(t, a.Register(context.Background()), errPasswordMismatch)
	require.Contains(t, out.String(), "Passwords do not match")
	require.Empty(t, sess.gotReg.Username, "nothing must reach the session")
}

func TestRegister_Failure(t *testing.T) {
	sess := &fakeSession{}
	a, out := newTestApp(sess, nil)
	stubInputs(t,
		[]string{"alice", "a@b.c", "A", "L", "", "", ""},
		[]byte("pw"), []byte("pw"),
	)

	require.Error(t, a.Register(context.Background()))
	require.Contains(t, out.String(), "Registration failed")
}

func TestLogout(t *testing.T) {
	sess := &fakeSession{user: &models.User{ID: 1}}
	a, out := newTestApp(sess, nil)

	require.NoError(t, a.Logout(context.Background()))
	require.NoError(t, a.Logout(context.Background()))
	require.Equal(t, 2, sess.logoutHit)
	require.Nil(t, sess.user)
	require.Contains(t, out.String(), "Logged out")
}

func TestProfile(t *testing.T) {
	a, out := newTestApp(&fakeSession{}, nil)
	require.NoError(t, a.Profile(context.Background()))
	require.Contains(t, out.String(), "Not logged in")

	a, out = newTestApp(&fakeSession{user: &models.User{ID: 9, Username: "bob", Email: "b@x.io", Reputacion: 4.5}}, nil)
	require.NoError(t, a.Profile(context.Background()))
	require.Contains(t, out.String(), "b@x.io")
	require.Contains(t, out.String(), "4.5")
}

func TestUpdateProfile(t *testing.T) {
	stubOptional := func(t *testing.T, answers map[string]string) {
		t.Helper()
		orig := getOptionalText
		getOptionalText = func(_ *bufio.Reader, prompt string, _ io.Writer) (*string, error) {
			v, ok := answers[prompt]
			if !ok {
				return nil, nil
			}
			return &v, nil
		}
		t.Cleanup(func() { getOptionalText = orig })
	}

	t.Run("sends only filled fields", func(t *testing.T) {
		sess := &fakeSession{user: &models.User{ID: 1}, updateOK: true}
		a, out := newTestApp(sess, nil)
		stubOptional(t, map[string]string{"Phone number": "555", "Oficio": "panadero"})

		require.NoError(t, a.UpdateProfile(context.Background()))
		require.NotNil(t, sess.gotPatch)
		require.Equal(t, "555", *sess.gotPatch.PhoneNumber)
		require.Equal(t, "panadero", *sess.gotPatch.Oficio)
		require.Nil(t, sess.gotPatch.Email)
		require.Contains(t, out.String(), "Profile updated")
	})

	t.Run("nothing entered", func(t *testing.T) {
		sess := &fakeSession{user: &models.User{ID: 1}, updateOK: true}
		a, out := newTestApp(sess, nil)
		stubOptional(t, nil)

		require.NoError(t, a.UpdateProfile(context.Background()))
		require.Nil(t, sess.gotPatch)
		require.Contains(t, out.String(), "Nothing to update")
	})

	t.Run("server refuses", func(t *testing.T) {
		sess := &fakeSession{user: &models.User{ID: 1}, lastErr: client.ErrUnavailable}
		a, out := newTestApp(sess, nil)
		stubOptional(t, map[string]string{"Email": "x@y.z"})

		require.ErrorIs(t, a.UpdateProfile(context.Background()), client.ErrUnavailable)
		require.Contains(t, out.String(), "Profile update failed")
	})
}
