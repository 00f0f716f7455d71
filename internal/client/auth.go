package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-formatter/internal/types"
)

// Login exchanges credentials for a bearer token via POST /auth/login.
func (c *Client) Login(ctx context.Context, creds types.Credentials) (*types.LoginResponse, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	var out types.LoginResponse
	if err := c.postJSON(ctx, c.endpoint(nil, "auth", "login"), creds, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &RequestError{Method: http.MethodPost, Path: "/auth/login", Message: "response carried no access_token"}
	}
	return &out, nil
}

// Register creates an account via POST /auth/register.
func (c *Client) Register(ctx context.Context, creds types.Credentials) (*types.RegisterResponse, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	var out types.RegisterResponse
	if err := c.postJSON(ctx, c.endpoint(nil, "auth", "register"), creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
