package services

import (
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/common"
)

func currentUser(s SessionReader) *models.User {
	if s == nil {
		return nil
	}
	return s.Snapshot().Session.User
}

func requireUser(s SessionReader) error {
	if currentUser(s) == nil {
		return common.ErrorNotAuthenticated
	}
	return nil
}

func requireAdmin(s SessionReader) error {
	u := currentUser(s)
	if u == nil {
		return common.ErrorNotAuthenticated
	}
	if !u.IsAdmin {
		return common.ErrorAdminOnly
	}
	return nil
}

func requireID(id int64) error {
	if id <= 0 {
		return common.ErrorInvalidID
	}
	return nil
}
