// Package cli provides the interactive GopherShop storefront client.
//
// It wires configuration, the local state database, the remote document
// store client and the storefront stores, then runs a REPL over them.
// The persisted session, favorites and cart are restored on start.
//
// Key features:
//   - Register / Login / Logout / password reset
//   - Browse, search and filter products; favorites
//   - Cart editing bounded by product stock; checkout
//   - Order history
//   - Admin back-office: orders, products, sales stats
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
