package providers

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/geolocus/geolocus/config"
)

// NewFromConfig constructs the provider the configuration selects. It fails
// fast: a backend whose files cannot be opened is a construction error, not
// something to discover on the first lookup.
func NewFromConfig(conf config.Config, log zerolog.Logger) (Provider, error) {
	switch conf.Backend {
	case config.BackendMaxmind:
		return NewMaxmind(conf.Maxmind.DBPath, log)
	case config.BackendIP2Location:
		return NewIP2Location(afero.NewOsFs(), conf.IP2Location, log)
	}

	return nil, ErrNoBackend
}
