package store

import (
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/common"
)

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}

func validateCredentials(c models.Credentials) error {
	switch {
	case c.Username == "" && c.Email == "":
		return common.ErrorMissingIdentity
	case c.UsesEmail() && !validEmail(c.Email):
		return common.ErrorInvalidEmail
	case c.Password == "":
		return common.ErrorEmptyPassword
	}
	return nil
}

func validateNewUser(u models.UserCreate) error {
	switch {
	case strings.TrimSpace(u.Username) == "":
		return common.ErrorMissingIdentity
	case !validEmail(u.Email):
		return common.ErrorInvalidEmail
	case u.Password == "":
		return common.ErrorEmptyPassword
	}
	return nil
}

func validateProfileUpdate(u models.UserUpdate) error {
	if u.Email != nil && !validEmail(*u.Email) {
		return common.ErrorInvalidEmail
	}
	if u.Username != nil && strings.TrimSpace(*u.Username) == "" {
		return common.ErrorMissingIdentity
	}
	if u.Password != nil && *u.Password == "" {
		return common.ErrorEmptyPassword
	}
	return nil
}
