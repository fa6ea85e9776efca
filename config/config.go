package config

import (
	"regexp"

	"github.com/rs/zerolog"

	hjson "github.com/hjson/hjson-go"
)

// Backend identifies which geolocation database implementation serves the
// lookups. Exactly one backend is active for the process lifetime.
type Backend int

const (
	BackendNone Backend = iota
	BackendMaxmind
	BackendIP2Location
)

func (b Backend) String() string {
	switch b {
	case BackendMaxmind:
		return "maxmind"
	case BackendIP2Location:
		return "ip2location"
	}

	return "none"
}

// Outputs toggles every field a lookup response may carry.
type Outputs struct {
	Country     bool
	Subdivision bool
	IP          bool
	IPVersion   bool
	Data        bool
}

// WantsGeolocation reports whether any enabled output requires a database
// record. When it is false, lookups never touch the backend at all.
func (o Outputs) WantsGeolocation() bool {
	return o.Country || o.Subdivision || o.Data
}

// Cors carries the raw, not yet sanitized CORS settings. Origins is the
// allowlist as configured; Pattern is an uncompiled case-insensitive
// expression. Regex, when set, is used instead of Pattern.
type Cors struct {
	Origins []string
	Pattern string
	Regex   *regexp.Regexp
}

// Maxmind configures the MaxMind database backend.
type Maxmind struct {
	DBPath string
}

// IP2Location configures the IP2Location database backend. The optional
// sidecar CSV maps region names to ISO 3166-2 subdivision codes.
type IP2Location struct {
	DBPath             string
	SubdivisionCSVPath string
}

// Config is the effective service configuration: the defaults with an
// untrusted user document overlaid field by field.
//
// Headers values may be nil: a nil value removes the header of that name
// from responses instead of setting it.
type Config struct {
	LogLevel     int
	Port         int
	Outputs      Outputs
	PrettyOutput bool
	Headers      map[string]*string
	Paths        []string
	Cors         Cors
	Backend      Backend
	Maxmind      Maxmind
	IP2Location  IP2Location
}

// Default returns the configuration the service runs with when no document
// is given or the document is rejected wholesale.
func Default() Config {
	return Config{
		LogLevel: 2,
		Port:     8080,
		Outputs: Outputs{
			Country:     true,
			Subdivision: true,
			IP:          true,
			IPVersion:   true,
		},
		Headers: map[string]*string{},
		Paths:   []string{defaultPath},
	}
}

// Parse decodes an untrusted configuration document and overlays it onto the
// defaults. A document which cannot be decoded at all yields the pristine
// defaults; malformed individual fields are dealt with by Overlay.
func Parse(data []byte, log zerolog.Logger) Config {
	doc := map[string]interface{}{}

	if err := hjson.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Msg("cannot parse configuration document, using defaults")

		return Default()
	}

	return Overlay(Default(), doc)
}
