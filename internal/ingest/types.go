package ingest

import "context"

// RawRecord is one upstream record before normalization. Upstream schemas are
// heterogeneous, so nothing about its keys or value types is assumed here;
// the normalizer resolves canonical fields through synonym tables.
type RawRecord = map[string]any

// Retriever fetches the raw bytes behind a candidate dataset location.
// Implementations report failure through the error; the loader treats any
// non-nil error and any unparseable body identically.
type Retriever interface {
	Retrieve(ctx context.Context, location string) ([]byte, error)
}
