// Package client contains client-side building blocks for the SANes backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see SessionAPI, CatalogAPI and
//     Client) for the authentication, profile and catalog endpoints.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that attaches the
//     stored session token as "Authorization: Token <t>", tags each request
//     with an X-Request-ID, paces outgoing calls with a token bucket and maps
//     HTTP failures to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized. Failures reported by the server
// itself come back as *APIError and carry the server message and field errors.
//
// A 401 from any endpoint clears the persisted session through the TokenStore
// before ErrUnauthorized is returned.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation on top of the per-request timeout.
//
// See Also
//
//   - Interfaces: SessionAPI, CatalogAPI, Client, TokenStore
//   - HTTP impl:  HTTPClient
//   - DB helpers: InitDatabase, RunMigrations
//   - Errors:     ErrUnavailable, ErrUnauthorized, APIError
package client
