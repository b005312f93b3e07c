// Package cli provides the interactive GophMart storefront client.
//
// It wires configuration, local session storage, the HTTP API client and an
// interactive REPL. Typical flow: restore a persisted session, prompt for
// credentials when there is none, and execute user commands against the
// locally mirrored cart, wishlist and chat state.
//
// Key features:
//   - Register / OTP verification / Login / Logout
//   - Cart: list, add, change quantity, remove, clear
//   - Wishlist: list, add, remove
//   - Chat: conversation list, unread counter, mark as read
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
