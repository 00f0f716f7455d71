package types

import (
	"github.com/go-playground/validator/v10"
)

// Credentials is the request body for both login and registration.
type Credentials struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// RegisterResponse is the body returned by POST /auth/register.
type RegisterResponse struct {
	Message string `json:"message,omitempty"`
}

// Validate validates the Credentials using the validator.
func (c *Credentials) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}
