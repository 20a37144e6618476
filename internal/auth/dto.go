package auth

import (
	"fmt"
	"strings"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (d *LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return ValidationError{Field: "email"}
	}
	if d.Password == "" {
		return ValidationError{Field: "password"}
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d *RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Field: "refresh_token"}
	}
	return nil
}
