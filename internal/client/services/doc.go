// Package services contains the storefront client's application services
// outside the session store: the catalog with its local cache, orders,
// favorites and the admin operations.
//
// Every method returns errors classified with store.Classify, so callers see
// the same *store.ActionError taxonomy as for store actions.
package services

import "github.com/dmitrijs2005/storefront/internal/client/store"

// SessionReader exposes the current session. *store.Store implements it.
type SessionReader interface {
	Snapshot() store.Snapshot
}
