// Package api is the client's boundary to the storefront backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering
//     session, cart, wishlist and chat operations.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the
//     bearer token from a token source, unwraps the common
//     {success, error, data} response envelope, and maps failures onto a
//     structured taxonomy.
//  3. The auth-invalidation hooks (SetAuthHooks) through which a rejected
//     credential detected on any request fans out to the session layer.
//
// # Error Handling
//
// Failures are values of *Error carrying a Kind and a Retryable flag set by
// the transport. Match them with errors.Is against the kind sentinels
// (ErrAuthentication, ErrAuthorization, ErrTransient, ErrValidation,
// ErrApplication) or inspect via errors.As. Callers must never classify by
// message text.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package api
