// Package services holds the client-side state owners and workflows of the
// storefront: the session and favorites store, the cart store, the checkout
// saga, and the catalog, order and admin services that read and write the
// remote collections.
//
// Stores are explicit objects built once at start-up and passed to their
// consumers. Each guards its state with a mutex and never holds it across a
// network call. Persisted snapshots are written through a persist.Writer, so
// the in-memory state is authoritative and the durable copy follows.
package services
