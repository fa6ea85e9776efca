package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
	"github.com/rs/zerolog"
)

// NameMaxmind identifies the MaxMind backend in logs and stats.
const NameMaxmind = "maxmind"

type maxmindProvider struct {
	db  *maxminddb.Reader
	log zerolog.Logger
}

// NewMaxmind opens a MaxMind database file. The handle is mmap-backed and
// safe for concurrent lookups without extra locking.
func NewMaxmind(path string, log zerolog.Logger) (Provider, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open maxmind database: %w", err)
	}

	log.Debug().Str("path", path).Msg("maxmind database is opened")

	return &maxmindProvider{
		db:  db,
		log: log,
	}, nil
}

func (m *maxmindProvider) Name() string {
	return NameMaxmind
}

// Get decodes the record into a generic map instead of a typed struct: the
// record travels to clients verbatim, so no field may be discarded here.
func (m *maxmindProvider) Get(_ context.Context, ip net.IP) (Record, error) {
	record := map[string]interface{}{}

	if err := m.db.Lookup(ip, &record); err != nil {
		return nil, fmt.Errorf("cannot look up ip address: %w", err)
	}

	if len(record) == 0 {
		return nil, nil
	}

	return record, nil
}

func (m *maxmindProvider) StringValue(record Record, field Field) (string, bool) {
	doc, ok := record.(map[string]interface{})
	if !ok {
		return "", false
	}

	switch field {
	case FieldCountry:
		return nestedString(doc, "country", "iso_code")
	case FieldSubdivision:
		return firstSubdivisionCode(doc)
	}

	return "", false
}

func (m *maxmindProvider) Close() error {
	return m.db.Close()
}

func nestedString(doc map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys[:len(keys)-1] {
		next, ok := doc[key].(map[string]interface{})
		if !ok {
			return "", false
		}

		doc = next
	}

	value, ok := doc[keys[len(keys)-1]].(string)

	return value, ok && value != ""
}

func firstSubdivisionCode(doc map[string]interface{}) (string, bool) {
	subdivisions, ok := doc["subdivisions"].([]interface{})
	if !ok || len(subdivisions) == 0 {
		return "", false
	}

	first, ok := subdivisions[0].(map[string]interface{})
	if !ok {
		return "", false
	}

	return nestedString(first, "iso_code")
}
