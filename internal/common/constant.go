package common

// Collection names of the remote document store.
const (
	CollectionUsers    = "users"
	CollectionProducts = "products"
	CollectionOrders   = "orders"
)

// Keys of the persisted local key-value store.
const (
	KeySession         = "user"
	KeyCart            = "cart"
	keyFavoritesPrefix = "favorites_"
)

// FavoritesKey returns the persisted key of uid's favorite set.
func FavoritesKey(uid string) string {
	return keyFavoritesPrefix + uid
}

// RequestIDHeaderName carries a per-request correlation id on outbound calls.
const RequestIDHeaderName = "X-Request-Id"
