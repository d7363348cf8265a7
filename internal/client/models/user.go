// Package models defines client-side data models used by the SANes client.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is the server-owned identity record. The client never changes ID.
type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Cedula      string     `json:"cedula,omitempty"`
	Oficio      string     `json:"oficio,omitempty"`
	FotoPerfil  string     `json:"foto_perfil,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	DateJoined  *time.Time `json:"date_joined,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	Reputacion  float64    `json:"reputacion"`
}

// FullName returns "First Last", falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.DateJoined != nil {
		t := *u.DateJoined
		c.DateJoined = &t
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// MergeUser overlays the fields present in confirmed (a JSON object returned by
// the server) onto base. Fields absent from confirmed keep their base value,
// present ones win. The ID of base is kept whatever confirmed says.
func MergeUser(base *User, confirmed json.RawMessage) (*User, error) {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(confirmed, &patch); err != nil {
		return nil, fmt.Errorf("decode confirmed fields: %w", err)
	}

	raw, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encode base user: %w", err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, fmt.Errorf("decode base user: %w", err)
	}

	for k, v := range patch {
		merged[k] = v
	}

	raw, err = json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged user: %w", err)
	}
	out := &User{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode merged user: %w", err)
	}
	out.ID = base.ID
	return out, nil
}
