package models

import "encoding/json"

// Response is the uniform envelope used by the API layer:
// {success, data?, message?, errors?}.
type Response[T any] struct {
	Success bool            `json:"success"`
	Data    *T              `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

// Page is a paginated list as returned by list endpoints.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}
