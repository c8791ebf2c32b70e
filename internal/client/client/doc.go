// Package client contains the client-side transport of the storefront.
//
// # Overview
//
// The package provides:
//  1. API contracts (see Client and its parts AuthAPI, CartAPI, OrdersAPI,
//     CatalogAPI, FavoritesAPI) describing the REST backend.
//  2. A concrete HTTP implementation (see HTTPClient) that injects the
//     persisted bearer token, tags every request with an X-Request-ID,
//     applies the configured 401 policy and maps failures to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations),
//     opening the SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses become *APIError values carrying the status code and the
// backend's detail message. They unwrap to sentinels that callers match with
// errors.Is: ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict, ErrBadRequest,
// ErrServer. Network failures wrap ErrUnavailable.
//
// # 401 Policy
//
// Under PolicyLogout a 401 on an authenticated request calls
// SessionHooks.Expire. Under PolicyRefresh the client first calls
// SessionHooks.Refresh and retries once with the new token; a second 401 or a
// failed refresh ends in Expire. Login, register and refresh requests never
// trigger the hooks.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; each request is additionally bound
// by the configured timeout.
package client
