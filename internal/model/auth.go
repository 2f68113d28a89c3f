package model

import (
	"fmt"
	"strings"
)

type SignInInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (in *SignInInput) Validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(in.Password) < 8 || len(in.Password) > 72 {
		return fmt.Errorf("%w: password must be between 8 and 72 characters", ErrInvalidInput)
	}
	return nil
}
