// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Admin CRUD errors. These are operator-facing: commands print the message
// and exit non-zero without touching the session.
var (
	ErrAccessDenied     = errors.New("access denied: admin role required")
	ErrProtectedAccount = errors.New("the admin account cannot be deleted")
)

// ValidationError is a 400 from the auth service, carrying whatever message
// it included (duplicate username, unknown role, weak password).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "invalid request"
	}
	return e.Message
}

// CreateUserRequest is the payload for creating an operator account.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// UpdateUserRequest carries a partial update; nil fields are left untouched
// by the service.
type UpdateUserRequest struct {
	Role        *string `json:"role,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Password    *string `json:"password,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

// UsersClient performs admin account management against
// <base>/core/auth/users. Requires an authenticated admin session.
type UsersClient struct {
	api *APIClient
	cfg *Config
}

func NewUsersClient(api *APIClient, cfg *Config) *UsersClient {
	return &UsersClient{api: api, cfg: cfg}
}

// ListUsers returns all operator accounts.
func (u *UsersClient) ListUsers(ctx context.Context) ([]UserRecord, error) {
	var users []UserRecord
	if err := u.api.Do(ctx, http.MethodGet, "/core/auth/users", nil, u.cfg.DefaultTimeout(), &users); err != nil {
		return nil, mapUsersError(err)
	}
	return users, nil
}

// CreateUser provisions a new account.
func (u *UsersClient) CreateUser(ctx context.Context, req CreateUserRequest) error {
	if req.Username == "" || req.Password == "" {
		return &ValidationError{Message: "username and password are required"}
	}
	if err := u.api.Do(ctx, http.MethodPost, "/core/auth/users", req, u.cfg.DefaultTimeout(), nil); err != nil {
		return mapUsersError(err)
	}
	return nil
}

// UpdateUser applies a partial update to username's account.
func (u *UsersClient) UpdateUser(ctx context.Context, username string, req UpdateUserRequest) error {
	if err := u.api.Do(ctx, http.MethodPut, "/core/auth/users/"+username, req, u.cfg.DefaultTimeout(), nil); err != nil {
		return mapUsersError(err)
	}
	return nil
}

// DeleteUser removes an account. The primary admin account is refused
// client-side; the service enforces it too.
func (u *UsersClient) DeleteUser(ctx context.Context, username string) error {
	if username == "admin" {
		return ErrProtectedAccount
	}
	if err := u.api.Do(ctx, http.MethodDelete, "/core/auth/users/"+username, nil, u.cfg.DefaultTimeout(), nil); err != nil {
		return mapUsersError(err)
	}
	return nil
}

// mapUsersError lifts raw API errors into the CRUD taxonomy: 403 means the
// session lacks the admin role, 400 is a validation problem worth showing
// verbatim, anything else passes through.
func mapUsersError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("auth service unreachable: %w", err)
	}
	switch apiErr.Status {
	case http.StatusForbidden:
		return ErrAccessDenied
	case http.StatusBadRequest:
		return &ValidationError{Message: apiErr.Message}
	default:
		return err
	}
}
