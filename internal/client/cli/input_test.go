package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Name?\n> " {
		t.Fatalf("prompt %q", out.String())
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEmptyEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetOptionalText(t *testing.T) {
	var out bytes.Buffer

	got, err := GetOptionalText(rdr("\n"), "Email", &out)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Contains(t, out.String(), "Email (empty to keep)")

	got, err = GetOptionalText(rdr("  new@mail.io \n"), "Email", &out)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "new@mail.io", *got)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("a\nb\n\n\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nb"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGetMultiline_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\r\nb"), "Enter text", &out)
	require.NoError(t, err)
	require.Equal(t, "a\nb", got)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	var out bytes.Buffer
	pw, err := GetPassword("Enter password", &out)
	require.NoError(t, err)
	require.Equal(t, []byte("s3cret"), pw)
	require.Equal(t, "Enter password: \n", out.String())
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword("Enter password", &out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		pos     int
		want    int64
		wantErr string
	}{
		{"ok", []string{"12"}, 0, 12, ""},
		{"second arg", []string{"san", "7"}, 1, 7, ""},
		{"missing", nil, 0, 0, "missing san id"},
		{"not a number", []string{"x"}, 0, 0, `invalid san id "x"`},
		{"zero", []string{"0"}, 0, 0, `invalid san id "0"`},
		{"negative", []string{"-3"}, 0, 0, `invalid san id "-3"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseID(tc.args, tc.pos, "san id")
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
