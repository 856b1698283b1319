// Package zonestore abstracts CRUD over DNS address records in a zone.
package zonestore

import "context"

// TypeA is the only record type this tool manages.
const TypeA = "A"

// Record is a single zone record as stored by the provider.
type Record struct {
	ID      int64
	Name    string // record name within the zone, "" for the apex
	Type    string
	Content string
	TTL     int
}

// Store is the provider-independent view of a zone's records. Implementations
// wrap a concrete provider API; callers never touch the provider client
// directly.
type Store interface {
	// ListRecords returns all records in the zone.
	ListRecords(ctx context.Context, zone string) ([]Record, error)

	// CreateRecord creates an A record. name may be empty for the apex.
	CreateRecord(ctx context.Context, zone, name, content string, ttl int) (Record, error)

	// UpdateRecord replaces the content and TTL of an existing record.
	UpdateRecord(ctx context.Context, zone string, id int64, content string, ttl int) (Record, error)

	// DeleteRecord removes a record from the zone.
	DeleteRecord(ctx context.Context, zone string, id int64) error
}
