package providers

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	ip2location "github.com/ip2location/ip2location-go/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/geolocus/geolocus/config"
	"github.com/geolocus/geolocus/csvdb"
)

// NameIP2Location identifies the IP2Location backend in logs and stats.
const NameIP2Location = "ip2location"

type ip2locationProvider struct {
	db           *ip2location.DB
	subdivisions *csvdb.SubdivisionTable
	dbLock       sync.Mutex
	log          zerolog.Logger
}

// NewIP2Location opens an IP2Location BIN database and, when configured,
// the sidecar CSV which maps its region names to ISO 3166-2 subdivision
// codes. Either file failing to load fails the whole construction.
func NewIP2Location(fs afero.Fs, conf config.IP2Location, log zerolog.Logger) (Provider, error) {
	db, err := ip2location.OpenDB(conf.DBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open ip2location database: %w", err)
	}

	var subdivisions *csvdb.SubdivisionTable

	if conf.SubdivisionCSVPath != "" {
		subdivisions, err = csvdb.LoadSubdivisions(fs, conf.SubdivisionCSVPath, log)
		if err != nil {
			db.Close()

			return nil, fmt.Errorf("cannot load subdivision table: %w", err)
		}
	}

	log.Debug().Str("path", conf.DBPath).Msg("ip2location database is opened")

	return &ip2locationProvider{
		db:           db,
		subdivisions: subdivisions,
		log:          log,
	}, nil
}

func (p *ip2locationProvider) Name() string {
	return NameIP2Location
}

// Get is serialized with a mutex: the underlying handle seeks around a
// shared file descriptor.
func (p *ip2locationProvider) Get(_ context.Context, ip net.IP) (Record, error) {
	p.dbLock.Lock()
	record, err := p.db.Get_all(ip.String())
	p.dbLock.Unlock()

	if err != nil {
		return nil, fmt.Errorf("cannot look up ip address: %w", err)
	}

	if _, ok := fieldValue(record.Country_short); !ok {
		return nil, nil
	}

	return record, nil
}

func (p *ip2locationProvider) StringValue(record Record, field Field) (string, bool) {
	rec, ok := record.(ip2location.IP2Locationrecord)
	if !ok {
		return "", false
	}

	switch field {
	case FieldCountry:
		return fieldValue(rec.Country_short)
	case FieldSubdivision:
		return p.subdivisionCode(rec)
	}

	return "", false
}

// subdivisionCode resolves only through the sidecar table. The raw region
// name is a spelling, not a code, so without the table the field stays
// absent.
func (p *ip2locationProvider) subdivisionCode(rec ip2location.IP2Locationrecord) (string, bool) {
	country, ok := fieldValue(rec.Country_short)
	if !ok {
		return "", false
	}

	region, ok := fieldValue(rec.Region)
	if !ok {
		return "", false
	}

	return p.subdivisions.Lookup(country, region)
}

func (p *ip2locationProvider) Close() error {
	p.db.Close()

	return nil
}

// fieldValue filters the placeholder strings the ip2location library
// reports for unknown addresses and unsupported database columns.
func fieldValue(value string) (string, bool) {
	lowered := strings.ToLower(value)

	switch {
	case value == "" || value == "-":
		return "", false
	case strings.Contains(lowered, "unavailable"):
		return "", false
	case strings.Contains(lowered, "invalid"):
		return "", false
	case strings.Contains(lowered, "missing"):
		return "", false
	}

	return value, true
}
