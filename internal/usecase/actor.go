package usecase

import (
	"fmt"
	"strings"
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) requireUser() error {
	if strings.TrimSpace(a.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	return nil
}

func (a Actor) requireAdmin() error {
	if err := a.requireUser(); err != nil {
		return err
	}
	if !a.Admin {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}
