// Package gateway is the typed client for the managed data backend: list,
// get and update per entity type, continuation-token pagination, and a live
// snapshot feed per entity. The backend owns all persistence and filtering;
// this package only shapes requests and responses.
package gateway

// Entity names as they appear in the gateway's REST paths.
const (
	EntityOrders        = "orders"
	EntityOrderItems    = "order-items"
	EntityProducts      = "products"
	EntityStoreProducts = "store-products"
)

// AuthMode selects the authorization context for a call. Reads run under the
// shared API key; privileged staff mutations send the staff bearer token.
type AuthMode int

const (
	AuthAPIKey AuthMode = iota
	AuthStaff
)

// Filter is an equality filter: field name to exact value.
type Filter map[string]string

type ListOptions struct {
	Filter    Filter
	Limit     int
	NextToken string
	Auth      AuthMode
}

// Page is one page of a list response. A non-empty NextToken signals that
// more pages exist.
type Page[T any] struct {
	Items     []T
	NextToken string
}

// Snapshot is one emission of the live feed: the full current record set and
// whether the feed has caught up with the backing store.
type Snapshot[T any] struct {
	Items  []T
	Synced bool
}

// Feed is a live subscription to one entity type. It must be closed to stop
// delivery; the snapshot channel closes afterwards.
type Feed[T any] interface {
	Snapshots() <-chan Snapshot[T]
	Close() error
}
