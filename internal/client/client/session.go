package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/sanes/internal/client/models"
)

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	res, err := c.authenticate(ctx, "/api/auth/login/", creds)
	if err != nil {
		return nil, withDefaultMessage(err, "Error en el login")
	}
	return res, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	res, err := c.authenticate(ctx, "/api/auth/register/", reg)
	if err != nil {
		return nil, withDefaultMessage(err, "Error en el registro")
	}
	return res, nil
}

// authenticate posts body to an auth endpoint and unwraps the
// {success, data: {token, user}} envelope.
func (c *HTTPClient) authenticate(ctx context.Context, path string, body any) (*models.AuthResult, error) {
	var env models.Response[models.AuthResult]
	if err := c.call(ctx, request{method: http.MethodPost, path: path, body: body}, &env); err != nil {
		return nil, err
	}

	if !env.Success || env.Data == nil {
		return nil, &APIError{StatusCode: http.StatusOK, Message: env.Message, Errors: env.Errors}
	}
	if env.Data.Token == "" || env.Data.User == nil {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "respuesta de autenticación incompleta"}
	}
	return env.Data, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.call(ctx, request{method: http.MethodPost, path: "/api/auth/logout/", auth: true}, nil)
	return withDefaultMessage(err, "Error en el logout")
}

func (c *HTTPClient) FetchProfile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, request{method: http.MethodGet, path: "/api/user/profile/", auth: true}, &u); err != nil {
		return nil, withDefaultMessage(err, "Error al obtener perfil del usuario")
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (json.RawMessage, error) {
	raw, err := c.do(ctx, request{method: http.MethodPatch, path: "/api/user/profile/", body: patch, auth: true})
	if err != nil {
		return nil, withDefaultMessage(err, "Error al actualizar perfil")
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("decode response: expected a user object")
	}
	return json.RawMessage(raw), nil
}
