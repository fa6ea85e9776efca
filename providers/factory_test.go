package providers_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/geolocus/geolocus/config"
	"github.com/geolocus/geolocus/providers"
)

func TestNewFromConfigNoBackend(t *testing.T) {
	_, err := providers.NewFromConfig(config.Default(), zerolog.Nop())

	assert.ErrorIs(t, err, providers.ErrNoBackend)
}

func TestNewFromConfigMaxmindFailsFast(t *testing.T) {
	conf := config.Default()
	conf.Backend = config.BackendMaxmind
	conf.Maxmind.DBPath = "/definitely/not/here.mmdb"

	_, err := providers.NewFromConfig(conf, zerolog.Nop())

	assert.Error(t, err)
}

func TestNewFromConfigIP2LocationFailsFast(t *testing.T) {
	conf := config.Default()
	conf.Backend = config.BackendIP2Location
	conf.IP2Location.DBPath = "/definitely/not/here.bin"

	_, err := providers.NewFromConfig(conf, zerolog.Nop())

	assert.Error(t, err)
}
