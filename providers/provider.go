package providers

import (
	"context"
	"net"
)

// Field names a normalized attribute a provider can extract from its own
// records.
type Field string

const (
	FieldCountry     Field = "country"
	FieldSubdivision Field = "subdivision"
)

// Record is an opaque, backend-native lookup result. Its concrete shape is
// owned by the provider which produced it; callers either hand it back to
// StringValue or serialize it verbatim.
type Record interface{}

// Provider is a read-only handle to one geolocation database, opened once
// and kept for the process lifetime.
type Provider interface {
	Name() string

	// Get resolves ip into a backend record. (nil, nil) means the database
	// holds no entry for this address.
	Get(ctx context.Context, ip net.IP) (Record, error)

	// StringValue extracts a normalized field from a record produced by Get.
	// ok is false when the record is nil or does not carry the field.
	StringValue(record Record, field Field) (value string, ok bool)

	Close() error
}
