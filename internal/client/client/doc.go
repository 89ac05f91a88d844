// Package client contains the remote-facing building blocks of the
// storefront client.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts for the document store (Documents) and
//     the identity provider (Auth).
//  2. HTTPClient, a REST implementation of both. It attaches the signed-in
//     user's identity token as a bearer token, tags every request with an
//     X-Request-Id, applies a per-request timeout and turns non-2xx answers
//     into *TransportError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite state file and applies the embedded goose migrations.
//  4. ParseIDToken, which reads the claims of an identity token without
//     verifying its signature.
//
// # Error Handling
//
// Every failed request is a *TransportError. It matches common.ErrUnavailable
// (network failure), common.ErrNotFound (404) and common.ErrUnauthorized
// (401/403) through errors.Is. The provider's error code is kept in
// TransportError.Message.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
