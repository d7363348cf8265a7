package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake token store
 *************/

type fakeTokens struct {
	mu       sync.Mutex
	token    string
	tokenErr error
	cleared  int
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.tokenErr
}

func (f *fakeTokens) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	f.token = ""
	return nil
}

func (f *fakeTokens) clearedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, r http.Handler, tokens TokenStore, opts ...Option) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/", time.Second, tokens, opts...)
	require.NoError(t, err)
	return c
}

var sampleUser = map[string]any{
	"id":           7,
	"username":     "ana",
	"email":        "ana@example.com",
	"first_name":   "Ana",
	"last_name":    "Pérez",
	"is_active":    true,
	"is_staff":     false,
	"is_superuser": false,
	"reputacion":   4.5,
}

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := NewHTTPClient("://bad", 0, nil)
	require.Error(t, err)

	_, err = NewHTTPClient("ftp://host", 0, nil)
	require.ErrorContains(t, err, "scheme")

	_, err = NewHTTPClient("http://", 0, nil)
	require.ErrorContains(t, err, "missing host")

	c, err := NewHTTPClient("http://127.0.0.1:8000/", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", c.baseURL)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestLogin_Success_NoAuthHeader(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login/", func(w http.ResponseWriter, req *http.Request) {
		assert.Empty(t, req.Header.Get("Authorization"), "login must not carry a token")
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		_, err := uuid.Parse(req.Header.Get("X-Request-ID"))
		assert.NoError(t, err)

		var creds models.Credentials
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&creds))
		assert.Equal(t, models.Credentials{Username: "ana", Password: "secreto"}, creds)

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"token": "tok1", "user": sampleUser},
		})
	})

	c := newTestClient(t, r, &fakeTokens{token: "stale"})

	res, err := c.Login(context.Background(), models.Credentials{Username: "ana", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, "tok1", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, 4.5, res.User.Reputacion)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantMsg string
		wantErr error
	}{
		{
			name:    "envelope success false",
			status:  http.StatusOK,
			body:    map[string]any{"success": false, "message": "Credenciales inválidas"},
			wantMsg: "Credenciales inválidas",
		},
		{
			name:    "400 with message",
			status:  http.StatusBadRequest,
			body:    map[string]any{"success": false, "message": "Usuario inactivo", "errors": map[string]any{"username": []string{"x"}}},
			wantMsg: "Usuario inactivo",
		},
		{
			name:    "400 without message gets default",
			status:  http.StatusBadRequest,
			body:    map[string]any{"non_field_errors": []string{"bad"}},
			wantMsg: "Error en el login",
		},
		{
			name:    "token missing",
			status:  http.StatusOK,
			body:    map[string]any{"success": true, "data": map[string]any{"user": sampleUser}},
			wantMsg: "respuesta de autenticación incompleta",
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    map[string]any{},
			wantErr: ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Post("/api/auth/login/", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			c := newTestClient(t, r, nil)

			res, err := c.Login(context.Background(), models.Credentials{Username: "ana", Password: "x"})
			require.Error(t, err)
			assert.Nil(t, res)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestRegister_FieldErrorsKept(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/register/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"username": []string{"ya existe"}})
	})
	c := newTestClient(t, r, nil)

	_, err := c.Register(context.Background(), models.Registration{Username: "ana"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Error en el registro", apiErr.Message)
	assert.JSONEq(t, `{"username":["ya existe"]}`, string(apiErr.Errors))
}

func TestAuthenticatedCall_AddsTokenHeader(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/user/profile/", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Token tok1", req.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, sampleUser)
	})
	c := newTestClient(t, r, &fakeTokens{token: "tok1"})

	u, err := c.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
}

func TestAuthenticatedCall_NoTokenNoHeader(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/user/profile/", func(w http.ResponseWriter, req *http.Request) {
		_, present := req.Header["Authorization"]
		assert.False(t, present)
		writeJSON(w, http.StatusOK, sampleUser)
	})
	c := newTestClient(t, r, &fakeTokens{})

	_, err := c.FetchProfile(context.Background())
	require.NoError(t, err)
}

func TestTokenStoreError_IsReturned(t *testing.T) {
	r := chi.NewRouter()
	c := newTestClient(t, r, &fakeTokens{tokenErr: errors.New("disk")})

	_, err := c.FetchProfile(context.Background())
	require.ErrorContains(t, err, "read session token")
}

func TestUnauthorized_ClearsStore(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/sanes/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token inválido."})
	})
	tokens := &fakeTokens{token: "tok1"}
	c := newTestClient(t, r, tokens)

	_, err := c.ListSanes(context.Background(), models.Filters{})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, tokens.clearedCount())
}

func TestForbidden_DoesNotClearStore(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/sanes/1/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"detail": "no"})
	})
	tokens := &fakeTokens{token: "tok1"}
	c := newTestClient(t, r, tokens)

	_, err := c.GetSan(context.Background(), 1)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, tokens.clearedCount())
}

func TestTransportFailure_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url, time.Second, nil)
	require.NoError(t, err)

	_, err = c.FetchProfile(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTimeout_IsUnavailable(t *testing.T) {
	block := make(chan struct{})
	r := chi.NewRouter()
	r.Get("/api/user/profile/", func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-block:
		case <-req.Context().Done():
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	c, err := NewHTTPClient(srv.URL, 50*time.Millisecond, nil)
	require.NoError(t, err)

	_, err = c.FetchProfile(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestUpdateProfile_ReturnsConfirmedObject(t *testing.T) {
	r := chi.NewRouter()
	r.Patch("/api/user/profile/", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		assert.JSONEq(t, `{"first_name":"Ana María"}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "first_name": "Ana María"})
	})
	c := newTestClient(t, r, &fakeTokens{token: "tok1"})

	name := "Ana María"
	raw, err := c.UpdateProfile(context.Background(), models.ProfilePatch{FirstName: &name})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"first_name":"Ana María"}`, string(raw))
}

func TestUpdateProfile_NonObjectRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Patch("/api/user/profile/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []int{1})
	})
	c := newTestClient(t, r, &fakeTokens{token: "tok1"})

	_, err := c.UpdateProfile(context.Background(), models.ProfilePatch{})
	require.Error(t, err)
}

func TestLogout(t *testing.T) {
	var called bool
	r := chi.NewRouter()
	r.Post("/api/auth/logout/", func(w http.ResponseWriter, req *http.Request) {
		called = true
		assert.Equal(t, "Token tok1", req.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, r, &fakeTokens{token: "tok1"})

	require.NoError(t, c.Logout(context.Background()))
	assert.True(t, called)
}

func TestRateLimit_WaitHonorsContext(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/user/profile/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, sampleUser)
	})
	c := newTestClient(t, r, nil, WithRateLimit(0.001, 1))

	_, err := c.FetchProfile(context.Background())
	require.NoError(t, err)

	// the bucket is empty now and refills far beyond the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.FetchProfile(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestWithRateLimit_DisabledForNonPositive(t *testing.T) {
	c, err := NewHTTPClient("http://localhost", 0, nil, WithRateLimit(0, 5))
	require.NoError(t, err)
	assert.Nil(t, c.limiter)
}

func TestDecodeList_ArrayAndPage(t *testing.T) {
	items, err := decodeList[models.Ticket]([]byte(`[{"id":1,"numero":5}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Numero)

	items, err = decodeList[models.Ticket]([]byte(`{"count":1,"results":[{"id":2}]}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)

	items, err = decodeList[models.Ticket]([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = decodeList[models.Ticket]([]byte(`[{"id":"x"}]`))
	require.Error(t, err)
}

func TestParseAPIError(t *testing.T) {
	e := parseAPIError(404, []byte(`{"detail":"No encontrado."}`))
	assert.Equal(t, "No encontrado.", e.Message)
	assert.Nil(t, e.Errors)

	e = parseAPIError(400, []byte(`not json`))
	assert.Equal(t, 400, e.StatusCode)
	assert.Empty(t, e.Message)
	assert.Equal(t, "api error (status 400)", e.Error())

	e = parseAPIError(400, []byte(`{"error":"Número no disponible"}`))
	assert.Equal(t, "api error (status 400): Número no disponible", e.Error())
}
