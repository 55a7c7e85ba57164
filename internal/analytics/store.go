package analytics

import "context"

// Store defines the interface for persisting analytics events.
type Store interface {
	SavePrefixesComputed(ctx context.Context, event *PrefixesComputedEvent) error
}
